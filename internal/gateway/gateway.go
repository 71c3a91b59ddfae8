package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrGatewayUnavailable wraps transport-level failures talking to the
// payment gateway.
var ErrGatewayUnavailable = errors.New("payment gateway unavailable")

// ErrInitRejected is returned when the gateway refuses to open a session.
var ErrInitRejected = errors.New("payment session rejected by gateway")

// InitRequest carries everything the gateway needs to open a payment
// session.
type InitRequest struct {
	TransactionID string
	Amount        float64
	Currency      string
	ProductName   string
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
}

// InitResponse is the opened session.
type InitResponse struct {
	RedirectURL string
	SessionKey  string
}

// ValidationResult is the gateway's authoritative record for a transaction.
type ValidationResult struct {
	Status        string
	TransactionID string
	Amount        float64
	Raw           json.RawMessage
}

// Paid reports whether the gateway settled the transaction.
func (v *ValidationResult) Paid() bool {
	return v.Status == "VALID" || v.Status == "VALIDATED"
}

// Client is a payment gateway session client.
type Client interface {
	// Init opens a hosted payment session and returns the redirect URL.
	Init(ctx context.Context, req InitRequest) (*InitResponse, error)

	// Validate fetches the authoritative transaction record by validation
	// id, as delivered in the gateway's IPN callback.
	Validate(ctx context.Context, valID string) (*ValidationResult, error)
}

// unavailable tags err as a gateway transport failure.
func unavailable(err error) error {
	return fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
}
