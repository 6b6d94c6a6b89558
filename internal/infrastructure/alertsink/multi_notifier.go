package alertsink

import (
	"context"
	"slices"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/esports-arena/internal/domain/alert"
)

// MultiNotifier fans an alert out to every sink. A failing sink does not
// stop delivery to the others.
type MultiNotifier struct {
	sinks []alert.Notifier
}

func NewMultiNotifier(sinks ...alert.Notifier) *MultiNotifier {
	filtered := make([]alert.Notifier, 0, len(sinks))
	for _, sink := range sinks {
		if sink != nil {
			filtered = append(filtered, sink)
		}
	}
	return &MultiNotifier{sinks: filtered}
}

func (m *MultiNotifier) Notify(ctx context.Context, a alert.Alert) error {
	var errs error
	for _, sink := range m.sinks {
		if err := sink.Notify(ctx, a); err != nil {
			errs = crerr.CombineErrors(errs, err)
		}
	}
	return errs
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
