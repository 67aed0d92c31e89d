package statsfeed

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/sourcegraph/conc/pool"
	"github.com/valyala/fasthttp"

	"github.com/dlawede/fantasy-roster/internal/domain/player"
	"github.com/dlawede/fantasy-roster/internal/platform/logging"
	"github.com/dlawede/fantasy-roster/internal/platform/resilience"
	"github.com/dlawede/fantasy-roster/internal/usecase"
)

const (
	defaultTimeout  = 15 * time.Second
	maxResponseSize = 6 << 20
)

var errStatsFeedTransient = crerr.New("stats feed transient failure")

type ClientConfig struct {
	BaseURL        string
	Token          string
	Season         int
	Timeout        time.Duration
	MaxRetries     int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client pulls the player list and the season stat sheet from the upstream
// stats feed and merges them into one catalog. It implements player.Source.
type Client struct {
	httpClient     *fasthttp.Client
	baseURL        string
	token          string
	season         int
	timeout        time.Duration
	maxRetries     int
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         resilience.SingleFlight
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient: &fasthttp.Client{
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
			MaxResponseBodySize: maxResponseSize,
		},
		baseURL:        strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		token:          strings.TrimSpace(cfg.Token),
		season:         cfg.Season,
		timeout:        timeout,
		maxRetries:     cfg.MaxRetries,
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
	}
}

type playerRow struct {
	Name     string  `json:"name"`
	Team     string  `json:"team"`
	Position string  `json:"position"`
	Cost     float64 `json:"cost"`
}

type playersEnvelope struct {
	Players []playerRow `json:"players"`
}

type statRow struct {
	Player  string `json:"player"`
	Goals   int    `json:"goals"`
	Assists int    `json:"assists"`
	Saves   int    `json:"saves"`
}

type statsEnvelope struct {
	Stats []statRow `json:"stats"`
}

// LoadAllPlayers fetches the player sheet and the season stat sheet
// concurrently and joins stats onto players by name. Players without a stat
// row keep zeroed stats; stat rows without a player row are dropped.
func (c *Client) LoadAllPlayers(ctx context.Context) ([]player.Player, error) {
	var (
		playersPayload playersEnvelope
		statsPayload   statsEnvelope
	)

	p := pool.New().WithContext(ctx).WithCancelOnError()
	p.Go(func(ctx context.Context) error {
		if err := c.doJSON(ctx, "/v1/players", &playersPayload); err != nil {
			return fmt.Errorf("fetch players season=%d: %w", c.season, err)
		}
		return nil
	})
	p.Go(func(ctx context.Context) error {
		if err := c.doJSON(ctx, "/v1/season-stats", &statsPayload); err != nil {
			return fmt.Errorf("fetch season stats season=%d: %w", c.season, err)
		}
		return nil
	})
	if err := p.Wait(); err != nil {
		return nil, err
	}

	statsByPlayer := make(map[string]player.SeasonStats, len(statsPayload.Stats))
	for _, row := range statsPayload.Stats {
		name := strings.TrimSpace(row.Player)
		if name == "" {
			continue
		}
		statsByPlayer[name] = player.SeasonStats{
			Goals:   row.Goals,
			Assists: row.Assists,
			Saves:   row.Saves,
		}
	}

	out := make([]player.Player, 0, len(playersPayload.Players))
	for _, row := range playersPayload.Players {
		name := strings.TrimSpace(row.Name)
		out = append(out, player.Player{
			Name:     name,
			Team:     strings.TrimSpace(row.Team),
			Season:   c.season,
			Position: player.Position(strings.ToUpper(strings.TrimSpace(row.Position))),
			Cost:     row.Cost,
			Stats:    statsByPlayer[name],
		})
	}

	return out, nil
}

func (c *Client) doJSON(ctx context.Context, path string, target any) error {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "stats feed circuit breaker rejected request", "state", c.breaker.State())
			return fmt.Errorf("%w: stats feed is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	values := url.Values{}
	values.Set("season", strconv.Itoa(c.season))
	fullURL := c.baseURL + path + "?" + values.Encode()

	out, err, _ := c.flight.Do(fullURL, func() (any, error) {
		raw, reqErr := c.executeRequest(ctx, fullURL)
		if c.circuitEnabled {
			if reqErr != nil && isStatsFeedCircuitFailure(reqErr) {
				c.breaker.RecordFailure()
			} else {
				c.breaker.RecordSuccess()
			}
		}
		return raw, reqErr
	})
	if err != nil {
		return err
	}

	raw, ok := out.([]byte)
	if !ok {
		return fmt.Errorf("unexpected response payload type %T", out)
	}

	if err := sonic.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode stats feed payload: %w", err)
	}
	return nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		raw, status, err := c.sendOnce(fullURL)
		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %v", errStatsFeedTransient, err)
		} else if status >= 200 && status < 300 {
			return raw, nil
		} else if isRetryableStatus(status) {
			lastErr = fmt.Errorf("%w: feed status=%d body=%s", errStatsFeedTransient, status, abbreviateBody(raw))
		} else {
			return nil, fmt.Errorf("feed status=%d body=%s", status, abbreviateBody(raw))
		}

		if attempt == c.maxRetries {
			break
		}
		backoff := time.Duration(attempt+1) * time.Second
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("stats feed request failed")
	}
	c.logger.WarnContext(ctx, "stats feed request failed", "url", fullURL, "error", lastErr)
	return nil, lastErr
}

func (c *Client) sendOnce(fullURL string) ([]byte, int, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(fullURL)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("accept", "application/json")
	if c.token != "" {
		req.Header.Set("authorization", "Bearer "+c.token)
	}

	if err := c.httpClient.DoTimeout(req, resp, c.timeout); err != nil {
		return nil, 0, err
	}

	raw := append([]byte(nil), resp.Body()...)
	return raw, resp.StatusCode(), nil
}

func isStatsFeedCircuitFailure(err error) bool {
	return stderrors.Is(err, errStatsFeedTransient)
}

func isRetryableStatus(status int) bool {
	return status == fasthttp.StatusTooManyRequests || status >= 500
}

func abbreviateBody(raw []byte) string {
	const limit = 512
	if len(raw) <= limit {
		return string(raw)
	}
	return string(raw[:limit]) + "..."
}
