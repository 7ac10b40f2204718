package loader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"gastos/internal/chart"
	"gastos/internal/core"
	"gastos/internal/log"
)

// recordingRenderer captures every configuration it is asked to draw.
type recordingRenderer struct {
	mu      sync.Mutex
	configs []chart.Config
	err     error
	panics  bool
}

func (r *recordingRenderer) Render(_ context.Context, cfg chart.Config) error {
	if r.panics {
		panic("canvas gone")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.configs = append(r.configs, cfg)
	return r.err
}

func (r *recordingRenderer) calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.configs)
}

// chartServer serves body with status on core.ChartDataPath and counts hits.
func chartServer(t *testing.T, status int, body string) (*httptest.Server, *atomic.Int64) {
	t.Helper()
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != core.ChartDataPath || r.Method != http.MethodGet {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func newTestLoader(t *testing.T, baseURL string, r chart.Renderer, buf *bytes.Buffer) *Loader {
	t.Helper()
	l, err := New(Config{
		BaseURL:  baseURL,
		Timeout:  2 * time.Second,
		Renderer: r,
		Logger:   log.New(log.Config{Handler: slog.NewJSONHandler(buf, nil), Component: log.ComponentLoader}),
	})
	if err != nil {
		t.Fatalf("new loader: %v", err)
	}
	return l
}

func TestEmptyLabelsSkipsRendering(t *testing.T) {
	srv, hits := chartServer(t, http.StatusOK, `{"labels":[],"data":[]}`)
	r := &recordingRenderer{}
	var buf bytes.Buffer
	l := newTestLoader(t, srv.URL, r, &buf)

	out := l.Initialize(context.Background())

	if out.Status != StatusNoData || out.Err != nil {
		t.Fatalf("outcome = %+v", out)
	}
	if r.calls() != 0 {
		t.Fatalf("renderer called %d times", r.calls())
	}
	if hits.Load() != 1 {
		t.Fatalf("hits = %d", hits.Load())
	}
	if l.State() != StateNoData {
		t.Fatalf("state = %v", l.State())
	}
}

func TestTwoCategoriesRenderDoughnut(t *testing.T) {
	srv, _ := chartServer(t, http.StatusOK, `{"labels":["Food","Transport"],"data":[100,50]}`)
	r := &recordingRenderer{}
	var buf bytes.Buffer
	l := newTestLoader(t, srv.URL, r, &buf)

	out := l.Initialize(context.Background())

	if out.Status != StatusRendered || out.Segments != 2 {
		t.Fatalf("outcome = %+v", out)
	}
	if r.calls() != 1 {
		t.Fatalf("renderer called %d times", r.calls())
	}
	cfg := r.configs[0]
	if cfg.Type != "doughnut" {
		t.Errorf("type = %q", cfg.Type)
	}
	if !reflect.DeepEqual(cfg.Data.Labels, []string{"Food", "Transport"}) {
		t.Errorf("labels = %v", cfg.Data.Labels)
	}
	ds := cfg.Data.Datasets[0]
	if !reflect.DeepEqual(ds.Data, []float64{100, 50}) {
		t.Errorf("data = %v", ds.Data)
	}
	if !reflect.DeepEqual(ds.BackgroundColor, []string{"#3b82f6", "#10b981"}) {
		t.Errorf("colors = %v", ds.BackgroundColor)
	}
	if ds.BorderWidth != 1 {
		t.Errorf("border width = %d", ds.BorderWidth)
	}
	if cfg.Options.Plugins.Legend.Position != "bottom" {
		t.Errorf("legend = %q", cfg.Options.Plugins.Legend.Position)
	}
	if l.State() != StateRendered {
		t.Errorf("state = %v", l.State())
	}
}

func TestSeventhCategoryCyclesPalette(t *testing.T) {
	body := `{"labels":["a","b","c","d","e","f","g"],"data":[7,6,5,4,3,2,1]}`
	srv, _ := chartServer(t, http.StatusOK, body)
	r := &recordingRenderer{}
	var buf bytes.Buffer

	out := newTestLoader(t, srv.URL, r, &buf).Initialize(context.Background())

	if out.Status != StatusRendered {
		t.Fatalf("outcome = %+v", out)
	}
	colors := r.configs[0].Data.Datasets[0].BackgroundColor
	if len(colors) != 7 || colors[6] != "#3b82f6" {
		t.Fatalf("colors = %v", colors)
	}
}

func TestFailuresAreLoggedNotRendered(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		stage   Stage
		wantErr error
	}{
		{"server error", http.StatusInternalServerError, `{"error":"boom"}`, StageStatus, ErrUnexpectedStatus},
		{"not found", http.StatusNotFound, ``, StageStatus, ErrUnexpectedStatus},
		{"malformed json", http.StatusOK, `{"labels":["a"],`, StageDecode, nil},
		{"html body", http.StatusOK, `<html></html>`, StageDecode, nil},
		{"wrong types", http.StatusOK, `{"labels":"Food","data":[1]}`, StageDecode, nil},
		{"trailing garbage", http.StatusOK, `{"labels":["Food"],"data":[1]} not json`, StageDecode, ErrTrailingData},
		{"second document", http.StatusOK, `{"labels":["Food"],"data":[1]}{"labels":[]}`, StageDecode, ErrTrailingData},
		{"missing labels", http.StatusOK, `{"data":[1,2]}`, StageValidate, core.ErrMissingLabels},
		{"length mismatch", http.StatusOK, `{"labels":["a","b"],"data":[1]}`, StageValidate, core.ErrLengthMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, hits := chartServer(t, tt.status, tt.body)
			r := &recordingRenderer{}
			var buf bytes.Buffer
			l := newTestLoader(t, srv.URL, r, &buf)

			out := l.Initialize(context.Background())

			if out.Status != StatusFailed {
				t.Fatalf("status = %v", out.Status)
			}
			var le *LoadError
			if !errors.As(out.Err, &le) || le.Stage != tt.stage {
				t.Fatalf("err = %v, want stage %s", out.Err, tt.stage)
			}
			if tt.wantErr != nil && !errors.Is(out.Err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", out.Err, tt.wantErr)
			}
			if r.calls() != 0 {
				t.Fatal("renderer must not be called")
			}
			if hits.Load() != 1 {
				t.Fatalf("hits = %d", hits.Load())
			}
			logged := buf.String()
			if !strings.Contains(logged, `"level":"ERROR"`) || !strings.Contains(logged, `"stage":"`+string(tt.stage)+`"`) {
				t.Fatalf("missing diagnostic record: %s", logged)
			}
			if l.State() != StateFailed {
				t.Fatalf("state = %v", l.State())
			}
		})
	}
}

func TestConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	r := &recordingRenderer{}
	var buf bytes.Buffer
	out := newTestLoader(t, base, r, &buf).Initialize(context.Background())

	var le *LoadError
	if out.Status != StatusFailed || !errors.As(out.Err, &le) || le.Stage != StageRequest {
		t.Fatalf("outcome = %+v", out)
	}
	if r.calls() != 0 {
		t.Fatal("renderer must not be called")
	}
	if !strings.Contains(buf.String(), "Error loading expense chart") {
		t.Fatalf("missing log: %s", buf.String())
	}
}

func TestTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	l, err := New(Config{BaseURL: srv.URL, Timeout: 50 * time.Millisecond, Renderer: &recordingRenderer{}})
	if err != nil {
		t.Fatal(err)
	}
	out := l.Initialize(context.Background())
	if out.Status != StatusFailed || !errors.Is(out.Err, context.DeadlineExceeded) {
		t.Fatalf("outcome = %+v", out)
	}
}

func TestRendererFailures(t *testing.T) {
	body := `{"labels":["Food"],"data":[1]}`

	t.Run("error", func(t *testing.T) {
		srv, _ := chartServer(t, http.StatusOK, body)
		renderErr := errors.New("disk full")
		var buf bytes.Buffer
		out := newTestLoader(t, srv.URL, &recordingRenderer{err: renderErr}, &buf).Initialize(context.Background())
		if out.Status != StatusFailed || !errors.Is(out.Err, renderErr) {
			t.Fatalf("outcome = %+v", out)
		}
	})

	t.Run("panic", func(t *testing.T) {
		srv, _ := chartServer(t, http.StatusOK, body)
		var buf bytes.Buffer
		out := newTestLoader(t, srv.URL, &recordingRenderer{panics: true}, &buf).Initialize(context.Background())
		var le *LoadError
		if out.Status != StatusFailed || !errors.As(out.Err, &le) || le.Stage != StageRender {
			t.Fatalf("outcome = %+v", out)
		}
	})
}

func TestInitializeFetchesOnce(t *testing.T) {
	srv, hits := chartServer(t, http.StatusOK, `{"labels":["Food"],"data":[1]}`)
	r := &recordingRenderer{}
	var buf bytes.Buffer
	l := newTestLoader(t, srv.URL, r, &buf)

	if l.State() != StateIdle {
		t.Fatalf("state = %v", l.State())
	}

	var wg sync.WaitGroup
	outcomes := make([]Outcome, 8)
	for i := range outcomes {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			outcomes[i] = l.Initialize(context.Background())
		}(i)
	}
	wg.Wait()
	again := l.Initialize(context.Background())

	if hits.Load() != 1 {
		t.Fatalf("hits = %d, want 1", hits.Load())
	}
	if r.calls() != 1 {
		t.Fatalf("renders = %d, want 1", r.calls())
	}
	for _, o := range append(outcomes, again) {
		if o.Status != StatusRendered {
			t.Fatalf("outcome = %+v", o)
		}
	}
}

func TestNewValidation(t *testing.T) {
	r := &recordingRenderer{}
	for _, base := range []string{"", "localhost:8081", "ftp://host", "http://"} {
		if _, err := New(Config{BaseURL: base, Renderer: r}); err == nil {
			t.Errorf("expected error for %q", base)
		}
	}
	if _, err := New(Config{BaseURL: "http://localhost"}); err == nil {
		t.Error("expected error without renderer")
	}
}

func TestEndpoint(t *testing.T) {
	tests := map[string]string{
		"http://localhost:8081":       "http://localhost:8081/api/chart-data",
		"http://localhost:8081/":      "http://localhost:8081/api/chart-data",
		"https://example.com/gastos/": "https://example.com/gastos/api/chart-data",
		"http://h/?x=1#frag":          "http://h/api/chart-data",
	}
	for in, want := range tests {
		got, err := Endpoint(in)
		if err != nil {
			t.Fatalf("Endpoint(%q): %v", in, err)
		}
		if got != want {
			t.Errorf("Endpoint(%q) = %q, want %q", in, got, want)
		}
	}
}
