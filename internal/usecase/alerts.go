package usecase

import (
	"context"

	"github.com/riskibarqy/esports-arena/internal/domain/alert"
	"github.com/riskibarqy/esports-arena/internal/platform/logging"
)

func raiseAlert(ctx context.Context, logger *logging.Logger, notifier alert.Notifier, a alert.Alert) {
	logger.ErrorContext(ctx, a.Message, "alert", true, "kind", a.Kind, "severity", a.Severity)
	if notifier == nil {
		return
	}
	if err := notifier.Notify(ctx, a); err != nil {
		logger.ErrorContext(ctx, "deliver alert failed", "kind", a.Kind, "error", err)
	}
}
