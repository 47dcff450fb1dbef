package payments

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"homestay/internal/domain/shared/money"
)

// Simulator approves every charge. Used when no Stripe key is configured so
// the service stays bookable in local development.
type Simulator struct {
	FeeBps int64
	Logger *slog.Logger
}

func (s Simulator) Charge(ctx context.Context, amount money.Money, sourceToken, destinationAccount string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	ref := "sim_" + uuid.NewString()
	if s.Logger != nil {
		s.Logger.Info("simulated charge",
			"charge_ref", ref,
			"amount_cents", amount.Amount,
			"fee_cents", amount.FeePortion(s.FeeBps).Amount,
			"destination", destinationAccount,
		)
	}
	return ref, nil
}
