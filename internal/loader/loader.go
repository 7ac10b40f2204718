// Package loader fetches categorized expense totals and hands them, as a
// doughnut chart configuration, to a renderer.
//
// A Loader runs its fetch-and-render sequence at most once. The result is
// reported as an Outcome (Rendered, NoData or Failed); failures are logged and
// never propagated as panics or returned errors.
package loader

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"gastos/internal/chart"
	"gastos/internal/core"
	"gastos/internal/log"
)

const (
	DefaultTimeout = 10 * time.Second

	// maxBodyBytes caps the chart data payload.
	maxBodyBytes = 1 << 20
)

var (
	ErrUnexpectedStatus = errors.New("unexpected response status")
	ErrTrailingData     = errors.New("unexpected data after JSON body")
)

// Logger is the subset of *log.Logger the loader writes to.
type Logger interface {
	InfoContext(ctx context.Context, msg string, args ...any)
	ErrorContext(ctx context.Context, msg string, args ...any)
}

// Config wires a Loader.
type Config struct {
	// BaseURL is scheme and host of the server; the path is always core.ChartDataPath.
	BaseURL  string
	Timeout  time.Duration
	Client   *http.Client
	Renderer chart.Renderer
	Logger   Logger
}

type Loader struct {
	endpoint string
	client   *http.Client
	timeout  time.Duration
	renderer chart.Renderer
	logger   Logger

	once    sync.Once
	state   atomic.Int32
	outcome Outcome
}

// New validates cfg and returns an idle Loader.
func New(cfg Config) (*Loader, error) {
	endpoint, err := Endpoint(cfg.BaseURL)
	if err != nil {
		return nil, err
	}
	if cfg.Renderer == nil {
		return nil, errors.New("loader: renderer is required")
	}

	client := cfg.Client
	if client == nil {
		client = http.DefaultClient
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	var logger Logger = cfg.Logger
	if logger == nil {
		logger = log.Discard()
	}

	return &Loader{
		endpoint: endpoint,
		client:   client,
		timeout:  timeout,
		renderer: cfg.Renderer,
		logger:   logger,
	}, nil
}

// Endpoint joins baseURL with the fixed chart data path.
func Endpoint(baseURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return "", fmt.Errorf("loader: invalid base URL %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("loader: base URL %q must use http or https", baseURL)
	}
	if u.Host == "" {
		return "", fmt.Errorf("loader: base URL %q has no host", baseURL)
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + core.ChartDataPath
	u.RawQuery = ""
	u.Fragment = ""
	return u.String(), nil
}

// Endpoint returns the URL fetched by the loader.
func (l *Loader) Endpoint() string { return l.endpoint }

// State reports where the loader is in its lifecycle.
func (l *Loader) State() State { return State(l.state.Load()) }

// Initialize runs the fetch-and-render sequence on the first call. Later and
// concurrent calls wait for that run and return its outcome without fetching.
func (l *Loader) Initialize(ctx context.Context) Outcome {
	l.once.Do(func() {
		l.state.Store(int32(StateLoading))
		l.outcome = l.loadAndRender(ctx)
		l.state.Store(int32(l.outcome.Status.terminal()))
	})
	return l.outcome
}

func (l *Loader) loadAndRender(ctx context.Context) Outcome {
	data, err := l.fetch(ctx)
	if err != nil {
		return l.fail(ctx, err)
	}

	if data.IsEmpty() {
		l.logger.InfoContext(ctx, "No expense data, chart not drawn",
			log.FieldEndpoint, l.endpoint,
			log.FieldOutcome, StatusNoData.String())
		return Outcome{Status: StatusNoData}
	}
	if err := data.Validate(); err != nil {
		return l.fail(ctx, &LoadError{Stage: StageValidate, Err: err})
	}

	cfg := chart.NewDoughnut(data)
	if err := l.render(ctx, cfg); err != nil {
		return l.fail(ctx, &LoadError{Stage: StageRender, Err: err})
	}

	l.logger.InfoContext(ctx, "Expense chart rendered",
		log.FieldEndpoint, l.endpoint,
		log.FieldOutcome, StatusRendered.String(),
		log.FieldSegments, cfg.Segments())
	return Outcome{Status: StatusRendered, Segments: cfg.Segments()}
}

// chartResponse mirrors core.ChartData; Labels is a pointer so a missing
// field can be told apart from an empty list.
type chartResponse struct {
	Labels *[]string `json:"labels"`
	Data   []float64 `json:"data"`
}

func (l *Loader) fetch(ctx context.Context) (core.ChartData, error) {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.endpoint, nil)
	if err != nil {
		return core.ChartData{}, &LoadError{Stage: StageRequest, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return core.ChartData{}, &LoadError{Stage: StageRequest, Err: err}
	}
	defer func() {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return core.ChartData{}, &LoadError{
			Stage: StageStatus,
			Err:   fmt.Errorf("%w: %s", ErrUnexpectedStatus, resp.Status),
		}
	}

	var body chartResponse
	dec := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes))
	if err := dec.Decode(&body); err != nil {
		return core.ChartData{}, &LoadError{Stage: StageDecode, Err: err}
	}
	if _, err := dec.Token(); err != io.EOF {
		return core.ChartData{}, &LoadError{Stage: StageDecode, Err: ErrTrailingData}
	}
	if body.Labels == nil {
		return core.ChartData{}, &LoadError{Stage: StageValidate, Err: core.ErrMissingLabels}
	}
	return core.ChartData{Labels: *body.Labels, Data: body.Data}, nil
}

// render calls the renderer, turning a panic into an error.
func (l *Loader) render(ctx context.Context, cfg chart.Config) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("renderer panic: %v", r)
		}
	}()
	return l.renderer.Render(ctx, cfg)
}

func (l *Loader) fail(ctx context.Context, err error) Outcome {
	var le *LoadError
	if !errors.As(err, &le) {
		le = &LoadError{Stage: StageRequest, Err: err}
	}
	l.logger.ErrorContext(ctx, "Error loading expense chart",
		log.FieldEndpoint, l.endpoint,
		log.FieldOutcome, StatusFailed.String(),
		log.FieldStage, string(le.Stage),
		log.FieldError, le.Err.Error())
	return Outcome{Status: StatusFailed, Err: le}
}
