package auditqueue

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/bytebufferpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/dlawede/fantasy-roster/internal/platform/id"
	"github.com/dlawede/fantasy-roster/internal/platform/logging"
	"github.com/dlawede/fantasy-roster/internal/platform/resilience"
)

const defaultTopic = "fantasy-roster-audit"

var errAuditQueueTransient = crerr.New("audit queue transient failure")

type PublisherConfig struct {
	BaseURL        string
	Token          string
	Topic          string
	Timeout        time.Duration
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Publisher ships roster audit events to an HTTP message queue. Delivery is
// fire and forget: failures are logged and counted against the circuit
// breaker but never surfaced to the roster write path.
type Publisher struct {
	client         *http.Client
	baseURL        string
	token          string
	topic          string
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	ids            id.Generator
	now            func() time.Time
}

func NewPublisher(cfg PublisherConfig, logger *logging.Logger) *Publisher {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = logging.Default()
	}
	topic := strings.TrimSpace(cfg.Topic)
	if topic == "" {
		topic = defaultTopic
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Publisher{
		client: &http.Client{
			Timeout: timeout,
		},
		baseURL:        strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		token:          strings.TrimSpace(cfg.Token),
		topic:          topic,
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
		ids:            id.NewRandomGenerator(),
		now:            time.Now,
	}
}

type auditEvent struct {
	EventID    string         `json:"event_id"`
	UserID     string         `json:"user_id"`
	Action     string         `json:"action"`
	Details    map[string]any `json:"details,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

func (p *Publisher) RecordAction(ctx context.Context, userID, action string, details map[string]any) {
	eventID, err := p.ids.NewID()
	if err != nil {
		p.logger.WarnContext(ctx, "audit event dropped", "user_id", userID, "action", action, "error", err)
		return
	}

	if err := p.publish(ctx, auditEvent{
		EventID:    eventID,
		UserID:     userID,
		Action:     action,
		Details:    details,
		OccurredAt: p.now().UTC(),
	}); err != nil {
		p.logger.WarnContext(ctx, "audit event dropped", "user_id", userID, "action", action, "error", err)
	}
}

func (p *Publisher) publish(ctx context.Context, event auditEvent) error {
	if p.circuitEnabled {
		if err := p.breaker.Allow(); err != nil {
			return fmt.Errorf("audit queue is temporarily unavailable: %w", err)
		}
	}

	baseURL, err := validateHTTPBaseURL(p.baseURL)
	if err != nil {
		return crerr.Wrap(err, "invalid AUDIT_QUEUE_BASE_URL")
	}
	publishURL := baseURL + "/v1/topics/" + url.PathEscape(p.topic) + "/events"

	body, err := sonic.Marshal(event)
	if err != nil {
		return crerr.Wrap(err, "marshal audit event")
	}
	preview := buildEventPreview(body)

	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.SetAttributes(
			attribute.String("auditqueue.publish_url", publishURL),
			attribute.String("auditqueue.topic", p.topic),
			attribute.String("auditqueue.event_preview", preview),
		)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, publishURL, bytes.NewReader(body))
	if err != nil {
		return crerr.Wrap(err, "create audit queue request")
	}
	if p.token != "" {
		req.Header.Set("Authorization", "Bearer "+p.token)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		callErr := fmt.Errorf("%w: publish audit event topic=%s: %v", errAuditQueueTransient, p.topic, err)
		p.recordCircuitResult(callErr)
		return callErr
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode/100 != 2 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if isRetryableStatus(resp.StatusCode) {
			callErr := fmt.Errorf("%w: publish audit event status=%d topic=%s body=%s",
				errAuditQueueTransient, resp.StatusCode, p.topic, strings.TrimSpace(string(raw)))
			p.recordCircuitResult(callErr)
			return callErr
		}
		callErr := fmt.Errorf("publish audit event status=%d topic=%s body=%s",
			resp.StatusCode, p.topic, strings.TrimSpace(string(raw)))
		p.recordCircuitResult(callErr)
		return callErr
	}

	p.logger.DebugContext(ctx, "audit event published", "topic", p.topic, "event_preview", preview)
	p.recordCircuitResult(nil)
	return nil
}

func (p *Publisher) recordCircuitResult(err error) {
	if !p.circuitEnabled {
		return
	}
	if err != nil && stderrors.Is(err, errAuditQueueTransient) {
		p.breaker.RecordFailure()
		return
	}
	p.breaker.RecordSuccess()
}

func isRetryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

func validateHTTPBaseURL(raw string) (string, error) {
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

	return strings.TrimRight(candidate, "/"), nil
}

func buildEventPreview(body []byte) string {
	const limit = 1024

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	if len(body) > limit {
		_, _ = buf.Write(body[:limit])
		_, _ = buf.WriteString("...")
	} else {
		_, _ = buf.Write(body)
	}
	return buf.String()
}
