package sourcehttp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sony/gobreaker"

	"github.com/Azhovan/tether"
	"github.com/Azhovan/tether/internal/format"
	"github.com/Azhovan/tether/internal/noop"
)

// maxDocumentSize bounds a downloaded document.
const maxDocumentSize = 10 << 20

// Options configures the HTTP loader.
type Options struct {
	// Format restricts the loader to one format. Empty accepts every
	// supported extension.
	Format string

	// Timeout bounds one request, retries included. Default: 10s.
	Timeout time.Duration

	// Retries is the number of retries after a failed request. Default: 0.
	Retries int

	// TripAfter opens a host's circuit after this many consecutive failures
	// against that host. Default: 5.
	TripAfter uint32

	// OpenTimeout is how long an open circuit rejects requests. Default: 30s.
	OpenTimeout time.Duration

	// Transport replaces http.DefaultTransport.
	Transport http.RoundTripper

	// Logger receives load failures and circuit transitions. Default: discard.
	Logger *slog.Logger
}

type httpLoader struct {
	opts   Options
	client *http.Client
	log    *slog.Logger

	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker
}

// New creates a loader for http and https locations.
func New(opts Options) tether.Loader {
	if opts.Timeout == 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.TripAfter == 0 {
		opts.TripAfter = 5
	}
	if opts.OpenTimeout == 0 {
		opts.OpenTimeout = 30 * time.Second
	}
	if opts.Transport == nil {
		opts.Transport = http.DefaultTransport
	}
	logger := opts.Logger
	if logger == nil {
		logger = noop.Logger()
	}

	rc := retryablehttp.NewClient()
	rc.HTTPClient = &http.Client{Transport: opts.Transport}
	rc.RetryMax = opts.Retries
	rc.RetryWaitMin = 100 * time.Millisecond
	rc.RetryWaitMax = 2 * time.Second
	rc.Logger = logger
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler

	client := rc.StandardClient()
	client.Timeout = opts.Timeout

	return &httpLoader{
		opts:     opts,
		client:   client,
		log:      logger,
		breakers: make(map[string]*gobreaker.CircuitBreaker),
	}
}

// breaker returns the circuit guarding host. Hosts trip independently.
func (h *httpLoader) breaker(host string) *gobreaker.CircuitBreaker {
	h.mu.Lock()
	defer h.mu.Unlock()

	if cb, ok := h.breakers[host]; ok {
		return cb
	}
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "tether-sourcehttp/" + host,
		Timeout: h.opts.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= h.opts.TripAfter
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			h.log.Warn("circuit state changed",
				slog.String("host", host),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		},
	})
	h.breakers[host] = cb
	return cb
}

// Accept matches http and https URLs with a supported extension.
func (h *httpLoader) Accept(loc *url.URL) bool {
	if loc.Scheme != "http" && loc.Scheme != "https" {
		return false
	}
	detected := format.Detect(loc.Path)
	if detected == "" {
		return false
	}
	return h.opts.Format == "" || h.opts.Format == detected
}

// Load fetches and parses the document. Any failure yields an empty map.
func (h *httpLoader) Load(ctx context.Context, loc *url.URL) map[string]string {
	data, err := h.fetch(ctx, loc)
	if err != nil {
		return h.fail(ctx, loc, err)
	}
	if data, err = format.Decode(data, loc.Fragment); err != nil {
		return h.fail(ctx, loc, err)
	}
	values, err := format.Parse(format.Detect(loc.Path), data)
	if err != nil {
		return h.fail(ctx, loc, err)
	}
	return values
}

func (h *httpLoader) fetch(ctx context.Context, loc *url.URL) ([]byte, error) {
	target := *loc
	target.Fragment = ""

	body, err := h.breaker(loc.Host).Execute(func() (any, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
		if err != nil {
			return nil, err
		}
		resp, err := h.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("unexpected status %s", resp.Status)
		}
		data, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize+1))
		if err != nil {
			return nil, err
		}
		if len(data) > maxDocumentSize {
			return nil, errors.New("document exceeds 10MB")
		}
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return body.([]byte), nil
}

func (h *httpLoader) fail(ctx context.Context, loc *url.URL, err error) map[string]string {
	h.log.WarnContext(ctx, "can't load resource",
		slog.String("location", loc.String()),
		slog.String("error", err.Error()),
	)
	return map[string]string{}
}
