package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/Puneet28j/Ecommerce-Frontend-sub000/internal/collection"
	"github.com/Puneet28j/Ecommerce-Frontend-sub000/internal/config"
	"github.com/Puneet28j/Ecommerce-Frontend-sub000/internal/domain"
	"github.com/Puneet28j/Ecommerce-Frontend-sub000/internal/gateway"
	"github.com/Puneet28j/Ecommerce-Frontend-sub000/internal/pricing"
)

// Lists every order visible to BACKEND_TOKEN, page by page.
// Usage: list-orders [status]
func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	client := gateway.NewClient(cfg.Backend.BaseURL, gateway.StaticToken(cfg.Backend.Token), cfg.Backend.Timeout, logger)
	orders := collection.NewSynchronizer("admin-orders",
		gateway.Fetcher[domain.Order](client, domain.ResourceAdminOrders),
		func(o domain.Order) string { return o.ID },
		cfg.Session.PageLimit, logger)

	if len(os.Args) > 1 {
		orders.SetFilter(collection.Filter{Status: os.Args[1]})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	for orders.State().HasMore {
		if _, err := orders.LoadNextPage(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to fetch orders: %v\n", err)
			os.Exit(1)
		}
	}

	st := orders.State()
	fmt.Printf("📋 %d orders (%d pages)\n", len(st.Items), st.CurrentPage)
	for i, o := range st.Items {
		fmt.Printf("Order #%d:\n", i+1)
		fmt.Printf("  ID: %s\n", o.ID)
		fmt.Printf("  Status: %s\n", o.Status)
		fmt.Printf("  Items: %d\n", len(o.Items))
		fmt.Printf("  Total: %s\n", pricing.Round2(o.Total))
		if o.CouponCode != "" {
			fmt.Printf("  Coupon: %s\n", o.CouponCode)
		}
		if !o.CreatedAt.IsZero() {
			fmt.Printf("  Created: %s\n", o.CreatedAt.Format(time.RFC3339))
		}
	}
}
