package indigo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"

	"github.com/google/uuid"

	"github.com/webdeck/homebridge-indigo/internal/infrastructure/config"
)

// Listing resource paths on the Indigo REST API.
const (
	// DeviceListingPath lists all stateful devices.
	DeviceListingPath = "/devices.json/"

	// ActionListingPath lists action groups (momentary triggers).
	ActionListingPath = "/actions.json/"
)

// MethodExecute is the pseudo-verb for firing an action group. On the wire
// it becomes a POST with the _method=execute query parameter.
const MethodExecute = "EXECUTE"

// queueCapacity bounds the number of requests waiting behind the in-flight one.
const queueCapacity = 64

// maxResponseBytes limits how much of a response body is read (4 MB).
const maxResponseBytes = 4 << 20

// Logger is the logging interface required by the client.
// Compatible with logging.Logger.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// RepairFunc transforms a raw response body before JSON parsing.
// Used to accommodate known server-side formatting bugs.
type RepairFunc func([]byte) []byte

// pendingRequest is one queued HTTP request descriptor. Requests are drained
// strictly in submission order and are never retried or reordered.
type pendingRequest struct {
	id     string // correlation ID for log lines
	ctx    context.Context
	method string
	path   string
	query  url.Values
	reply  chan requestResult
}

type requestResult struct {
	body []byte
	err  error
}

// Client issues serialized HTTP requests to the Indigo server.
//
// All requests across all accessory adapters share one ordered queue with a
// concurrency limit of one in-flight request at a time. See the package
// documentation for the rationale.
type Client struct {
	baseURL    string
	username   string
	password   string
	httpClient *http.Client

	queue chan *pendingRequest

	// Shutdown coordination
	done     chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once

	startMu sync.Mutex
	started bool

	logger   Logger
	loggerMu sync.RWMutex
}

// New creates a client for the configured Indigo server.
// Call Start() to begin draining the request queue.
func New(cfg config.IndigoConfig) *Client {
	return &Client{
		baseURL:  cfg.BaseURL(),
		username: cfg.Username,
		password: cfg.Password,
		httpClient: &http.Client{
			Timeout: cfg.GetRequestTimeout(),
			CheckRedirect: func(_ *http.Request, _ []*http.Request) error {
				return ErrRedirectRefused
			},
		},
		queue: make(chan *pendingRequest, queueCapacity),
		done:  make(chan struct{}),
	}
}

// SetLogger sets a logger for request tracing and error logging.
func (c *Client) SetLogger(logger Logger) {
	c.loggerMu.Lock()
	c.logger = logger
	c.loggerMu.Unlock()
}

// getLogger returns the current logger (may be nil).
func (c *Client) getLogger() Logger {
	c.loggerMu.RLock()
	defer c.loggerMu.RUnlock()
	return c.logger
}

// Start launches the single queue worker.
//
// Parameters:
//   - ctx: Cancelling this context stops the worker, like Close()
//
// Returns:
//   - error: If the client was already started or closed
func (c *Client) Start(ctx context.Context) error {
	c.startMu.Lock()
	defer c.startMu.Unlock()

	select {
	case <-c.done:
		return ErrClosed
	default:
	}
	if c.started {
		return fmt.Errorf("indigo: client already started")
	}
	c.started = true

	c.wg.Add(1)
	go c.worker(ctx)
	return nil
}

// Close stops the queue worker and rejects all queued requests.
// In-flight requests are allowed to finish; a write already issued to the
// server is never rolled back.
func (c *Client) Close() {
	c.stopOnce.Do(func() {
		close(c.done)
		c.wg.Wait()
		c.drainQueue()
	})
}

// QueueDepth reports the number of requests currently waiting in the queue.
func (c *Client) QueueDepth() int {
	return len(c.queue)
}

// HealthCheck verifies the client is started and accepting requests.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//
// Returns:
//   - error: nil if healthy, error describing the issue otherwise
func (c *Client) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("indigo health check: %w", ctx.Err())
	case <-c.done:
		return ErrClosed
	default:
	}

	c.startMu.Lock()
	defer c.startMu.Unlock()
	if !c.started {
		return ErrNotStarted
	}
	return nil
}

// Request enqueues one HTTP request and waits for its result.
//
// Requests are executed strictly in submission order, one at a time.
//
// Parameters:
//   - ctx: Caller context; cancelling abandons the wait (an in-flight
//     request is still completed against the server)
//   - method: HTTP verb, or MethodExecute for action groups
//   - path: Resource path relative to the configured base URL
//   - query: Optional query parameters (may be nil)
//
// Returns:
//   - []byte: Raw response body
//   - error: Transport error, refused redirect, or non-2xx status
func (c *Client) Request(ctx context.Context, method, path string, query url.Values) ([]byte, error) {
	req := &pendingRequest{
		id:     uuid.NewString(),
		ctx:    ctx,
		method: method,
		path:   path,
		query:  query,
		reply:  make(chan requestResult, 1),
	}

	c.startMu.Lock()
	started := c.started
	c.startMu.Unlock()
	if !started {
		return nil, ErrNotStarted
	}

	// Refuse new work once shutdown has begun, before racing the queue.
	select {
	case <-c.done:
		return nil, ErrClosed
	default:
	}

	select {
	case c.queue <- req:
	case <-c.done:
		return nil, ErrClosed
	case <-ctx.Done():
		return nil, fmt.Errorf("indigo: enqueue: %w", ctx.Err())
	}

	select {
	case res := <-req.reply:
		return res.body, res.err
	case <-ctx.Done():
		return nil, fmt.Errorf("indigo: awaiting response: %w", ctx.Err())
	case <-c.done:
		// Shutdown raced this request. The worker may still deliver a
		// result for an in-flight request; prefer it if already present.
		select {
		case res := <-req.reply:
			return res.body, res.err
		default:
			return nil, ErrClosed
		}
	}
}

// RequestJSON performs Request and parses the body as JSON into v.
//
// Parameters:
//   - repair: Optional pre-parse repair step for known malformed-response
//     cases (may be nil)
//
// Returns:
//   - error: Request error, or ErrMalformedResponse if the body cannot be
//     parsed even after repair
func (c *Client) RequestJSON(ctx context.Context, method, path string, query url.Values, v any, repair RepairFunc) error {
	body, err := c.Request(ctx, method, path, query)
	if err != nil {
		return err
	}
	if repair != nil {
		body = repair(body)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%w: %s %s: %w", ErrMalformedResponse, method, path, err)
	}
	return nil
}

// Execute fires an action group. The result body is discarded; callers only
// learn success or failure.
func (c *Client) Execute(ctx context.Context, path string) error {
	_, err := c.Request(ctx, MethodExecute, path, nil)
	return err
}

// ListDevices fetches a listing resource and parses its summaries,
// accommodating the stray-leading-comma server bug.
func (c *Client) ListDevices(ctx context.Context, listingPath string) ([]Summary, error) {
	var summaries []Summary
	if err := c.RequestJSON(ctx, http.MethodGet, listingPath, nil, &summaries, RepairListing); err != nil {
		return nil, err
	}
	return summaries, nil
}

// GetDevice fetches a device's detail resource, including its current
// property snapshot.
func (c *Client) GetDevice(ctx context.Context, restURL string) (*Detail, error) {
	var raw map[string]any
	if err := c.RequestJSON(ctx, http.MethodGet, restURL, nil, &raw, nil); err != nil {
		return nil, err
	}
	return detailFromRaw(raw), nil
}

// worker drains the queue one request at a time until shutdown.
func (c *Client) worker(ctx context.Context) {
	defer c.wg.Done()

	for {
		select {
		case <-c.done:
			return
		case <-ctx.Done():
			return
		case req := <-c.queue:
			req.reply <- c.execute(req)
		}
	}
}

// drainQueue rejects everything still queued after the worker has stopped.
func (c *Client) drainQueue() {
	for {
		select {
		case req := <-c.queue:
			req.reply <- requestResult{err: ErrClosed}
		default:
			return
		}
	}
}

// execute performs a single HTTP request against the Indigo server.
func (c *Client) execute(req *pendingRequest) requestResult {
	// The caller may have given up while the request sat in the queue.
	if err := req.ctx.Err(); err != nil {
		return requestResult{err: fmt.Errorf("indigo: request abandoned in queue: %w", err)}
	}

	method := req.method
	query := req.query
	if method == MethodExecute {
		method = http.MethodPost
		if query == nil {
			query = url.Values{}
		}
		query.Set("_method", "execute")
	}

	target := c.baseURL + req.path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	httpReq, err := http.NewRequestWithContext(req.ctx, method, target, nil)
	if err != nil {
		return requestResult{err: fmt.Errorf("indigo: building request: %w", err)}
	}
	if c.username != "" {
		httpReq.SetBasicAuth(c.username, c.password)
	}

	if logger := c.getLogger(); logger != nil {
		logger.Debug("indigo request",
			"request_id", req.id,
			"method", req.method,
			"path", req.path,
		)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return requestResult{err: fmt.Errorf("indigo: %s %s: %w", req.method, req.path, err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return requestResult{err: fmt.Errorf("indigo: reading response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return requestResult{err: fmt.Errorf("%w: %s %s returned %d",
			ErrUnexpectedStatus, req.method, req.path, resp.StatusCode)}
	}

	return requestResult{body: body}
}
