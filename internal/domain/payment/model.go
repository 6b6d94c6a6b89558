package payment

import "context"

// Proof is what the gateway hands back after checkout.
type Proof struct {
	OrderID   string
	PaymentID string
	Signature string
}

// Verifier reports whether a gateway payment is genuine. Signature
// mechanics stay behind this interface.
type Verifier interface {
	VerifyPayment(ctx context.Context, proof Proof) (bool, error)
}
