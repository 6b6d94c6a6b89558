package id

import (
	"fmt"

	"github.com/google/uuid"
)

// Generator creates opaque IDs suitable for external references.
type Generator interface {
	NewID() (string, error)
}

// UUIDGenerator issues time-ordered UUIDv7 strings so ledger rows sort by
// creation when compared lexically.
type UUIDGenerator struct {
	prefix string
}

func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

// NewPrefixedGenerator returns ids shaped like "<prefix>_<uuid>".
func NewPrefixedGenerator(prefix string) *UUIDGenerator {
	return &UUIDGenerator{prefix: prefix}
}

func (g *UUIDGenerator) NewID() (string, error) {
	v, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate uuid v7: %w", err)
	}
	if g.prefix == "" {
		return v.String(), nil
	}

	return g.prefix + "_" + v.String(), nil
}
