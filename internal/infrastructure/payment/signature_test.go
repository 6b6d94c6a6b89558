package payment

import (
	"strings"
	"testing"

	domainpayment "github.com/riskibarqy/esports-arena/internal/domain/payment"
	"github.com/riskibarqy/esports-arena/internal/platform/logging"
	"github.com/stretchr/testify/require"
)

func TestSignatureVerifier(t *testing.T) {
	t.Parallel()

	v, err := NewSignatureVerifier("gateway-secret", logging.NewNop())
	require.NoError(t, err)
	good := v.Sign("order_1", "pay_1")

	cases := []struct {
		name  string
		proof domainpayment.Proof
		want  bool
	}{
		{"valid", domainpayment.Proof{OrderID: "order_1", PaymentID: "pay_1", Signature: good}, true},
		{"uppercase hex", domainpayment.Proof{OrderID: "order_1", PaymentID: "pay_1", Signature: strings.ToUpper(good)}, true},
		{"swapped ids", domainpayment.Proof{OrderID: "pay_1", PaymentID: "order_1", Signature: good}, false},
		{"other order", domainpayment.Proof{OrderID: "order_2", PaymentID: "pay_1", Signature: good}, false},
		{"not hex", domainpayment.Proof{OrderID: "order_1", PaymentID: "pay_1", Signature: "zz"}, false},
		{"missing signature", domainpayment.Proof{OrderID: "order_1", PaymentID: "pay_1"}, false},
		{"missing order", domainpayment.Proof{PaymentID: "pay_1", Signature: good}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ok, err := v.VerifyPayment(t.Context(), tc.proof)
			require.NoError(t, err)
			require.Equal(t, tc.want, ok)
		})
	}
}

func TestNewSignatureVerifier_RequiresSecret(t *testing.T) {
	t.Parallel()

	_, err := NewSignatureVerifier("", nil)
	require.Error(t, err)
}
