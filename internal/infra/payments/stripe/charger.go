package stripe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"

	"homestay/internal/domain/shared/money"
)

var ErrChargeDeclined = errors.New("stripe: charge did not succeed")

// Charger creates destination charges: the tenant's source is charged, the
// platform fee is withheld, and the remainder settles on the host's
// connected account.
type Charger struct {
	api    *client.API
	feeBps int64
	logger *slog.Logger
}

func NewCharger(secretKey string, feeBps int64, logger *slog.Logger) (*Charger, error) {
	if strings.TrimSpace(secretKey) == "" {
		return nil, errors.New("stripe: secret key is required")
	}
	api := &client.API{}
	api.Init(secretKey, nil)
	return &Charger{api: api, feeBps: feeBps, logger: logger}, nil
}

func (c *Charger) Charge(ctx context.Context, amount money.Money, sourceToken, destinationAccount string) (string, error) {
	if destinationAccount == "" {
		return "", errors.New("stripe: destination account is required")
	}
	fee := amount.FeePortion(c.feeBps)
	params := &stripe.ChargeParams{
		Amount:               stripe.Int64(amount.Amount),
		Currency:             stripe.String(strings.ToLower(amount.Currency)),
		ApplicationFeeAmount: stripe.Int64(fee.Amount),
	}
	params.Context = ctx
	if err := params.SetSource(sourceToken); err != nil {
		return "", fmt.Errorf("stripe: invalid source: %w", err)
	}
	params.SetStripeAccount(destinationAccount)

	ch, err := c.api.Charges.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe: create charge: %w", err)
	}
	if ch.Status != stripe.ChargeStatusSucceeded {
		return "", fmt.Errorf("%w: status %s", ErrChargeDeclined, ch.Status)
	}
	if c.logger != nil {
		c.logger.Info("charge created",
			"charge_id", ch.ID,
			"amount_cents", amount.Amount,
			"fee_cents", fee.Amount,
			"destination", destinationAccount,
		)
	}
	return ch.ID, nil
}
