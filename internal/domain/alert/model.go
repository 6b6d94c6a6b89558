package alert

import (
	"context"
	"time"
)

type Severity string

const (
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

type Kind string

const (
	KindJoinRollbackFailed Kind = "join_rollback_failed"
	KindPayoutCreditFailed Kind = "payout_credit_failed"
	KindLedgerDrift        Kind = "ledger_drift"
)

// Alert is an operator-facing signal for a state that needs manual repair.
type Alert struct {
	Kind       Kind
	Severity   Severity
	Message    string
	Attributes map[string]string
	OccurredAt time.Time
}

type Notifier interface {
	Notify(ctx context.Context, a Alert) error
}
