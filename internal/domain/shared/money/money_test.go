package money_test

import (
	"errors"
	"testing"

	"homestay/internal/domain/shared/money"
)

func TestAddRejectsCurrencyMismatch(t *testing.T) {
	usd := money.USDCents(100)
	eur := money.Money{Amount: 100, Currency: "EUR"}
	if _, err := usd.Add(eur); !errors.Is(err, money.ErrCurrencyMismatch) {
		t.Fatalf("expected ErrCurrencyMismatch, got %v", err)
	}
}

func TestMultiply(t *testing.T) {
	total := money.USDCents(10000).Multiply(3)
	if total.Amount != 30000 || total.Currency != money.USD {
		t.Fatalf("got %+v", total)
	}
}

func TestFeePortionRounding(t *testing.T) {
	cases := []struct {
		amount int64
		bps    int64
		want   int64
	}{
		{30000, 500, 1500}, // 5% of $300.00
		{10, 500, 1},       // 0.5 rounds up to 1
		{9, 500, 0},        // 0.45 rounds down
		{-30000, 500, -1500},
		{-10, 500, -1}, // half rounds away from zero
		{30000, 0, 0},
	}
	for _, tc := range cases {
		got := money.USDCents(tc.amount).FeePortion(tc.bps)
		if got.Amount != tc.want {
			t.Fatalf("FeePortion(%d, %d bps) = %d, want %d", tc.amount, tc.bps, got.Amount, tc.want)
		}
	}
}

func TestIsZero(t *testing.T) {
	if !money.USDCents(0).IsZero() {
		t.Fatal("zero cents must be zero")
	}
	if money.USDCents(1).IsZero() {
		t.Fatal("one cent is not zero")
	}
}
