package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"

	domainpayment "github.com/riskibarqy/esports-arena/internal/domain/payment"
	"github.com/riskibarqy/esports-arena/internal/platform/logging"
)

// SignatureVerifier checks the gateway checkout signature:
// hex(HMAC-SHA256(secret, order_id + "|" + payment_id)).
type SignatureVerifier struct {
	secret []byte
	logger *logging.Logger
}

func NewSignatureVerifier(secret string, logger *logging.Logger) (*SignatureVerifier, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, errors.New("payment webhook secret is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &SignatureVerifier{secret: []byte(secret), logger: logger.Named("payment")}, nil
}

func (v *SignatureVerifier) VerifyPayment(ctx context.Context, proof domainpayment.Proof) (bool, error) {
	orderID := strings.TrimSpace(proof.OrderID)
	paymentID := strings.TrimSpace(proof.PaymentID)
	if orderID == "" || paymentID == "" || strings.TrimSpace(proof.Signature) == "" {
		return false, nil
	}

	got, err := hex.DecodeString(strings.TrimSpace(proof.Signature))
	if err != nil {
		v.logger.WarnContext(ctx, "payment signature is not hex", "order_id", orderID)
		return false, nil
	}
	if !hmac.Equal(got, v.sign(orderID, paymentID)) {
		v.logger.WarnContext(ctx, "payment signature mismatch", "order_id", orderID, "payment_id", paymentID)
		return false, nil
	}
	return true, nil
}

// Sign returns the hex signature the gateway would attach to the pair.
func (v *SignatureVerifier) Sign(orderID, paymentID string) string {
	return hex.EncodeToString(v.sign(orderID, paymentID))
}

func (v *SignatureVerifier) sign(orderID, paymentID string) []byte {
	mac := hmac.New(sha256.New, v.secret)
	_, _ = mac.Write([]byte(orderID + "|" + paymentID))
	return mac.Sum(nil)
}
