package alertsink

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/esports-arena/internal/domain/alert"
	"github.com/riskibarqy/esports-arena/internal/platform/logging"
	"github.com/riskibarqy/esports-arena/internal/platform/resilience"
	"github.com/valyala/bytebufferpool"
	"github.com/valyala/fasthttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var errWebhookTransient = crerr.New("alert webhook transient failure")

type WebhookConfig struct {
	URL            string
	Token          string
	Timeout        time.Duration
	CircuitBreaker resilience.CircuitBreakerConfig
}

// WebhookNotifier posts alerts as JSON to an operator endpoint (chat
// incoming webhook, pager bridge).
type WebhookNotifier struct {
	client  *fasthttp.Client
	url     string
	token   string
	timeout time.Duration
	breaker *resilience.CircuitBreaker
	logger  *logging.Logger
}

func NewWebhookNotifier(cfg WebhookConfig, logger *logging.Logger) (*WebhookNotifier, error) {
	target, err := validateWebhookURL(cfg.URL)
	if err != nil {
		return nil, crerr.Wrap(err, "invalid ALERT_WEBHOOK_URL")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if logger == nil {
		logger = logging.Default()
	}
	logger = logger.Named("alert_webhook")

	breaker := resilience.NewCircuitBreaker(cfg.CircuitBreaker)
	breaker.OnStateChange(func(from, to resilience.CircuitState) {
		logger.Warn("alert webhook circuit state changed", "from", string(from), "to", string(to))
	})

	return &WebhookNotifier{
		client: &fasthttp.Client{
			Name:         "esports-arena-alerts",
			ReadTimeout:  timeout,
			WriteTimeout: timeout,
		},
		url:     target,
		token:   strings.TrimSpace(cfg.Token),
		timeout: timeout,
		breaker: breaker,
		logger:  logger,
	}, nil
}

type webhookPayload struct {
	Kind       string            `json:"kind"`
	Severity   string            `json:"severity"`
	Message    string            `json:"message"`
	Text       string            `json:"text"`
	Attributes map[string]string `json:"attributes,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
}

func (n *WebhookNotifier) Notify(ctx context.Context, a alert.Alert) error {
	body, err := sonic.Marshal(webhookPayload{
		Kind:       string(a.Kind),
		Severity:   string(a.Severity),
		Message:    a.Message,
		Text:       summaryLine(a),
		Attributes: a.Attributes,
		OccurredAt: a.OccurredAt.UTC(),
	})
	if err != nil {
		return crerr.Wrap(err, "marshal alert payload")
	}

	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.SetAttributes(
			attribute.String("alert.kind", string(a.Kind)),
			attribute.String("alert.webhook_url", n.url),
		)
	}

	if err := n.breaker.Allow(); err != nil {
		n.logger.WarnContext(ctx, "alert webhook circuit open, alert dropped", "kind", string(a.Kind), "state", string(n.breaker.State()))
		return fmt.Errorf("alert webhook is temporarily unavailable: %w", err)
	}

	err = n.post(ctx, body)
	n.recordCircuitResult(err)
	if err != nil {
		return err
	}
	n.logger.InfoContext(ctx, "alert delivered", "kind", string(a.Kind))
	return nil
}

// Only transport faults, 408, 429 and 5xx count against the breaker.
func (n *WebhookNotifier) recordCircuitResult(err error) {
	if err != nil && stderrors.Is(err, errWebhookTransient) {
		n.breaker.RecordFailure()
		return
	}
	n.breaker.RecordSuccess()
}

func (n *WebhookNotifier) post(ctx context.Context, body []byte) error {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(n.url)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	if n.token != "" {
		req.Header.Set("Authorization", "Bearer "+n.token)
	}
	req.SetBody(body)

	deadline := time.Now().Add(n.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := n.client.DoDeadline(req, resp, deadline); err != nil {
		return fmt.Errorf("%w: post alert url=%s: %v", errWebhookTransient, n.url, err)
	}

	status := resp.StatusCode()
	if status/100 == 2 {
		return nil
	}
	raw := strings.TrimSpace(truncateForLog(string(resp.Body()), 1024))
	if isRetryableStatus(status) {
		return fmt.Errorf("%w: post alert status=%d body=%s", errWebhookTransient, status, raw)
	}
	return crerr.Newf("post alert status=%d body=%s", status, raw)
}

// summaryLine renders a one-line human summary for chat-style receivers.
func summaryLine(a alert.Alert) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	_, _ = buf.WriteString("[")
	_, _ = buf.WriteString(strings.ToUpper(string(a.Severity)))
	_, _ = buf.WriteString("] ")
	_, _ = buf.WriteString(string(a.Kind))
	_, _ = buf.WriteString(": ")
	_, _ = buf.WriteString(a.Message)
	for _, key := range sortedKeys(a.Attributes) {
		_ = buf.WriteByte(' ')
		_, _ = buf.WriteString(key)
		_ = buf.WriteByte('=')
		_, _ = buf.WriteString(a.Attributes[key])
	}
	return buf.String()
}

func validateWebhookURL(raw string) (string, error) {
	candidate := strings.TrimSpace(raw)
	if candidate == "" {
		return "", crerr.New("value is empty")
	}
	parsed, err := url.Parse(candidate)
	if err != nil {
		return "", crerr.Wrapf(err, "parse %q", candidate)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", crerr.Newf("%q uses unsupported scheme=%q; expected http or https", candidate, parsed.Scheme)
	}
	if strings.TrimSpace(parsed.Host) == "" {
		return "", crerr.Newf("%q has empty host", candidate)
	}
	return candidate, nil
}

func isRetryableStatus(statusCode int) bool {
	return statusCode == http.StatusRequestTimeout ||
		statusCode == http.StatusTooManyRequests ||
		statusCode >= http.StatusInternalServerError
}

func truncateForLog(value string, max int) string {
	if max <= 0 || len(value) <= max {
		return value
	}
	return value[:max] + "...(truncated)"
}
