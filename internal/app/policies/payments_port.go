package policies

import (
	"context"

	"homestay/internal/domain/shared/money"
)

// PaymentsPort charges the tenant's payment source and routes the proceeds to
// the host's connected account, withholding the platform fee. It returns a
// provider reference for the created charge. A failed charge is terminal;
// implementations must not retry.
type PaymentsPort interface {
	Charge(ctx context.Context, amount money.Money, sourceToken, destinationAccount string) (chargeRef string, err error)
}
