package payment

import (
	"context"
	"errors"
)

// ErrGatewayDisabled is returned when charging is attempted without a
// configured Square account.
var ErrGatewayDisabled = errors.New("square: payments are not configured")

// DisabledGateway rejects every charge. It stands in for the Square
// adapter when no access token is configured so the rest of the billing
// module keeps working.
type DisabledGateway struct{}

// NewDisabledGateway creates a gateway that declines all charges
func NewDisabledGateway() *DisabledGateway {
	return &DisabledGateway{}
}

// CreatePayment always fails with ErrGatewayDisabled
func (g *DisabledGateway) CreatePayment(_ context.Context, _ *ChargeRequest) (*ChargeResult, error) {
	return nil, ErrGatewayDisabled
}
