package alertsink

import (
	"context"

	"github.com/riskibarqy/esports-arena/internal/domain/alert"
	"github.com/riskibarqy/esports-arena/internal/platform/logging"
)

// LogNotifier writes alerts to the structured log. It never fails.
type LogNotifier struct {
	logger *logging.Logger
}

func NewLogNotifier(logger *logging.Logger) *LogNotifier {
	if logger == nil {
		logger = logging.Default()
	}
	return &LogNotifier{logger: logger.Named("alert")}
}

func (n *LogNotifier) Notify(ctx context.Context, a alert.Alert) error {
	args := make([]any, 0, 6+2*len(a.Attributes))
	args = append(args, "kind", string(a.Kind), "severity", string(a.Severity), "occurred_at", a.OccurredAt)
	for _, key := range sortedKeys(a.Attributes) {
		args = append(args, "attr_"+key, a.Attributes[key])
	}

	if a.Severity == alert.SeverityCritical {
		n.logger.ErrorContext(ctx, a.Message, args...)
		return nil
	}
	n.logger.WarnContext(ctx, a.Message, args...)
	return nil
}
