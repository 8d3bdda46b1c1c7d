package tests

import (
	"context"
	"errors"
	"testing"

	"fueldash/internal/service"
)

func TestPricing_Breakdown(t *testing.T) {
	ctx := context.Background()

	fuelPriceRepo := NewMockFuelPriceRepository()
	fuelPriceRepo.SetPrice("driver-1", "diesel", 200)

	svc := service.NewPricingService(fuelPriceRepo, nil, 200)

	// 100 litres at 200 cents, 10 km at 500 cents/km, flat 200 fee.
	got, err := svc.Quote(ctx, "driver-1", "diesel", 100, 500, 10)
	if err != nil {
		t.Fatalf("Quote failed: %v", err)
	}
	if got.FuelCostCents != 20000 {
		t.Errorf("fuel cost: expected 20000, got %d", got.FuelCostCents)
	}
	if got.DeliveryFeeCents != 5000 {
		t.Errorf("delivery fee: expected 5000, got %d", got.DeliveryFeeCents)
	}
	if got.ServiceFeeCents != 200 {
		t.Errorf("service fee: expected 200, got %d", got.ServiceFeeCents)
	}
	if got.TotalCents != 25200 {
		t.Errorf("total: expected 25200, got %d", got.TotalCents)
	}
}

func TestPricing_RoundsHalfUpPerComponent(t *testing.T) {
	ctx := context.Background()

	fuelPriceRepo := NewMockFuelPriceRepository()
	fuelPriceRepo.SetPrice("driver-1", "diesel", 333)

	svc := service.NewPricingService(fuelPriceRepo, nil, 0)

	// 0.5 litres at 333 -> 166.5 -> 167. 1.5 km at 101 -> 151.5 -> 152.
	got, err := svc.Quote(ctx, "driver-1", "diesel", 0.5, 101, 1.5)
	if err != nil {
		t.Fatalf("Quote failed: %v", err)
	}
	if got.FuelCostCents != 167 {
		t.Errorf("expected 167, got %d", got.FuelCostCents)
	}
	if got.DeliveryFeeCents != 152 {
		t.Errorf("expected 152, got %d", got.DeliveryFeeCents)
	}
	if got.TotalCents != 319 {
		t.Errorf("expected 319, got %d", got.TotalCents)
	}
}

func TestPricing_IsDeterministic(t *testing.T) {
	ctx := context.Background()

	fuelPriceRepo := NewMockFuelPriceRepository()
	fuelPriceRepo.SetPrice("driver-1", "diesel", 275)

	svc := service.NewPricingService(fuelPriceRepo, nil, 1500)

	first, err := svc.Quote(ctx, "driver-1", "diesel", 33.3, 450, 7.77)
	if err != nil {
		t.Fatalf("Quote failed: %v", err)
	}
	for i := 0; i < 100; i++ {
		again, err := svc.Quote(ctx, "driver-1", "diesel", 33.3, 450, 7.77)
		if err != nil {
			t.Fatalf("Quote failed: %v", err)
		}
		if again != first {
			t.Fatalf("pricing must be deterministic: %+v vs %+v", again, first)
		}
	}
}

func TestPricing_MissingFuelPriceIsZeroNotError(t *testing.T) {
	ctx := context.Background()

	svc := service.NewPricingService(NewMockFuelPriceRepository(), nil, 1000)

	got, err := svc.Quote(ctx, "driver-1", "diesel", 100, 500, 2)
	if err != nil {
		t.Fatalf("missing fuel price must not fail the quote: %v", err)
	}
	if got.FuelCostCents != 0 {
		t.Errorf("expected zero fuel cost, got %d", got.FuelCostCents)
	}
	if got.TotalCents != got.DeliveryFeeCents+got.ServiceFeeCents {
		t.Errorf("total must still add up: %+v", got)
	}
}

func TestPricing_RepositoryErrorSurfaces(t *testing.T) {
	ctx := context.Background()

	fuelPriceRepo := NewMockFuelPriceRepository()
	fuelPriceRepo.GetError = ErrMockTimeout

	svc := service.NewPricingService(fuelPriceRepo, nil, 1000)

	if _, err := svc.Quote(ctx, "driver-1", "diesel", 100, 500, 2); !errors.Is(err, ErrMockTimeout) {
		t.Errorf("expected repository error to surface, got %v", err)
	}
}
