package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/Puneet28j/Ecommerce-Frontend-sub000/internal/config"
	"github.com/Puneet28j/Ecommerce-Frontend-sub000/internal/coupon"
	"github.com/Puneet28j/Ecommerce-Frontend-sub000/internal/gateway"
	"github.com/Puneet28j/Ecommerce-Frontend-sub000/internal/pricing"
	"github.com/Puneet28j/Ecommerce-Frontend-sub000/pkg/errors"
)

// Asks the backend what a coupon code is worth.
// Usage: check-coupon CODE
func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: check-coupon CODE")
		os.Exit(2)
	}

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

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	code := coupon.Normalize(os.Args[1])
	amount, err := client.ValidateCoupon(ctx, code)
	switch {
	case err == nil:
		fmt.Printf("✅ %s is valid: discount %s\n", code, pricing.Round2(amount))
	case errors.IsInvalidCoupon(err):
		fmt.Printf("❌ %s is not valid: %v\n", code, err)
		os.Exit(1)
	default:
		fmt.Fprintf(os.Stderr, "Could not check coupon: %v\n", err)
		os.Exit(1)
	}
}
