package jwtauth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/riskibarqy/esports-arena/internal/domain/user"
	"github.com/riskibarqy/esports-arena/internal/platform/logging"
	"github.com/riskibarqy/esports-arena/internal/usecase"
)

type Config struct {
	Secret string
	Issuer string
	// Leeway tolerates clock skew between the issuer and this service.
	Leeway time.Duration
}

type claims struct {
	jwt.RegisteredClaims
	Email string   `json:"email,omitempty"`
	Roles []string `json:"roles,omitempty"`
}

// Verifier checks HS256 bearer tokens minted by the account service and
// turns them into principals.
type Verifier struct {
	secret []byte
	parser *jwt.Parser
	logger *logging.Logger
}

func NewVerifier(cfg Config, logger *logging.Logger) (*Verifier, error) {
	secret := strings.TrimSpace(cfg.Secret)
	if secret == "" {
		return nil, errors.New("jwt secret is required")
	}
	if logger == nil {
		logger = logging.Default()
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(cfg.Leeway),
	}
	if issuer := strings.TrimSpace(cfg.Issuer); issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}

	return &Verifier{
		secret: []byte(secret),
		parser: jwt.NewParser(opts...),
		logger: logger.Named("jwtauth"),
	}, nil
}

func (v *Verifier) VerifyAccessToken(ctx context.Context, token string) (user.Principal, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return user.Principal{}, fmt.Errorf("%w: token is required", usecase.ErrUnauthorized)
	}

	var c claims
	_, err := v.parser.ParseWithClaims(token, &c, func(*jwt.Token) (any, error) {
		return v.secret, nil
	})
	if err != nil {
		v.logger.DebugContext(ctx, "reject access token", "error", err)
		return user.Principal{}, fmt.Errorf("%w: %s", usecase.ErrUnauthorized, reason(err))
	}

	subject := strings.TrimSpace(c.Subject)
	if subject == "" {
		return user.Principal{}, fmt.Errorf("%w: token has no subject", usecase.ErrUnauthorized)
	}

	return user.Principal{
		UserID: subject,
		Email:  c.Email,
		Roles:  c.Roles,
	}, nil
}

func reason(err error) string {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return "token expired"
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return "invalid signature"
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return "invalid issuer"
	case errors.Is(err, jwt.ErrTokenMalformed):
		return "malformed token"
	default:
		return "invalid token"
	}
}
