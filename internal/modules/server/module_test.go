package server

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"

	"momentum_bot/internal/models"
	"momentum_bot/internal/modules/server/service"
	"momentum_bot/internal/runner"
	"momentum_bot/pkg/logger"
)

type fakeCycler struct {
	res    *models.CycleResult
	err    error
	status *models.MarketStatus
	stErr  error
	last   *models.CycleResult
}

func (f *fakeCycler) Run(context.Context) (*models.CycleResult, error) { return f.res, f.err }
func (f *fakeCycler) Status(context.Context) (*models.MarketStatus, error) {
	return f.status, f.stErr
}
func (f *fakeCycler) Last() *models.CycleResult { return f.last }

func newServer(t *testing.T, cy Cycler, logDir string) (*httptest.Server, *service.State) {
	t.Helper()
	state := service.NewState()
	srv := httptest.NewServer(NewMux(Config{LogDir: logDir}, state, cy))
	t.Cleanup(srv.Close)
	return srv, state
}

func do(t *testing.T, method, url string) (int, string) {
	t.Helper()
	req, err := http.NewRequest(method, url, nil)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(b)
}

func TestPlainRoutes(t *testing.T) {
	srv, _ := newServer(t, &fakeCycler{}, t.TempDir())

	tests := []struct {
		method, path string
		code         int
		body         string
	}{
		{http.MethodGet, "/", 200, "OK bot-momentum-v6-advanced"},
		{http.MethodGet, "/robots.txt", 200, "User-agent: *\nDisallow: /"},
		{http.MethodGet, "/nope", 404, ""},
		{http.MethodGet, "/ejecutar", 405, ""},
	}
	for _, tt := range tests {
		code, body := do(t, tt.method, srv.URL+tt.path)
		if code != tt.code {
			t.Errorf("%s %s: code %d, want %d", tt.method, tt.path, code, tt.code)
		}
		if tt.body != "" && body != tt.body {
			t.Errorf("%s %s: body %q, want %q", tt.method, tt.path, body, tt.body)
		}
	}
}

func TestEjecutar(t *testing.T) {
	rsi := 25.5
	tests := []struct {
		name string
		cy   *fakeCycler
		code int
		key  string
	}{
		{"executed", &fakeCycler{res: &models.CycleResult{Status: models.CycleExecuted, RSI: &rsi, Signal: models.SideBuy}}, 200, "result"},
		{"no signal", &fakeCycler{res: &models.CycleResult{Status: models.CycleNoSignal}}, 200, "result"},
		{"skipped", &fakeCycler{res: &models.CycleResult{Status: models.CycleSkipped, Reason: "open position"}}, 200, "result"},
		{"error", &fakeCycler{res: &models.CycleResult{Status: models.CycleError, Error: "fetch failed"}}, 500, "error"},
		{"busy", &fakeCycler{err: runner.ErrCycleBusy}, 409, "error"},
		{"unexpected", &fakeCycler{err: errors.New("wat")}, 500, "error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, state := newServer(t, tt.cy, t.TempDir())
			code, body := do(t, http.MethodPost, srv.URL+"/ejecutar")
			if code != tt.code {
				t.Fatalf("code = %d, want %d (%s)", code, tt.code, body)
			}
			var m map[string]any
			if err := sonic.UnmarshalString(body, &m); err != nil {
				t.Fatalf("bad json %q: %v", body, err)
			}
			if _, ok := m[tt.key]; !ok {
				t.Fatalf("body %s lacks %q", body, tt.key)
			}
			if tt.code == 409 && state.BusyRejects() != 1 {
				t.Fatalf("busy rejects = %d", state.BusyRejects())
			}
		})
	}
}

func TestEjecutar_ResultShape(t *testing.T) {
	rsi := 71.25
	srv, _ := newServer(t, &fakeCycler{res: &models.CycleResult{
		Status: models.CycleExecuted,
		Price:  612.5,
		RSI:    &rsi,
		Signal: models.SideSell,
		Order:  &models.OrderResult{OrderID: "abc"},
	}}, t.TempDir())

	_, body := do(t, http.MethodPost, srv.URL+"/ejecutar")
	var out struct {
		Message string             `json:"message"`
		Result  models.CycleResult `json:"result"`
	}
	if err := sonic.UnmarshalString(body, &out); err != nil {
		t.Fatal(err)
	}
	if out.Result.Order == nil || out.Result.Order.OrderID != "abc" || *out.Result.RSI != 71.25 || out.Result.Signal != models.SideSell {
		t.Fatalf("result = %+v", out.Result)
	}
}

func TestStatus(t *testing.T) {
	rsi := 42.0
	srv, _ := newServer(t, &fakeCycler{status: &models.MarketStatus{Symbol: "BNBUSDT", Price: 600, RSI: &rsi, OpenPositions: []models.Position{}}}, t.TempDir())
	code, body := do(t, http.MethodGet, srv.URL+"/status")
	if code != 200 || !strings.Contains(body, `"rsi":42`) || !strings.Contains(body, `"open_positions":[]`) {
		t.Fatalf("code=%d body=%s", code, body)
	}

	srv, _ = newServer(t, &fakeCycler{stErr: errors.New("bybit down")}, t.TempDir())
	code, body = do(t, http.MethodGet, srv.URL+"/status")
	if code != 500 || !strings.Contains(body, "bybit down") {
		t.Fatalf("code=%d body=%s", code, body)
	}
}

func TestResumen(t *testing.T) {
	dir := t.TempDir()
	lines := "" +
		"2026-01-01 10:00:00,000 [INFO] Ejecutado: precio=1, RSI=20.00, señal=buy, orden=1\n" +
		"2026-01-01 10:01:00,000 [INFO] Ejecutado: precio=1, RSI=50.00, señal=no_signal, orden=None\n"
	if err := os.WriteFile(logger.DailyPath(dir, time.Now()), []byte(lines), 0o644); err != nil {
		t.Fatal(err)
	}
	srv, _ := newServer(t, &fakeCycler{}, dir)

	code, body := do(t, http.MethodGet, srv.URL+"/resumen")
	if code != 200 {
		t.Fatalf("code = %d", code)
	}
	var out struct {
		Date    string         `json:"date"`
		Summary map[string]int `json:"summary"`
	}
	if err := sonic.UnmarshalString(body, &out); err != nil {
		t.Fatal(err)
	}
	if out.Date != time.Now().Format("2006-01-02") {
		t.Fatalf("date = %s", out.Date)
	}
	if out.Summary["buy"] != 1 || out.Summary["no_signal"] != 1 || out.Summary["sell"] != 0 || out.Summary["total"] != 2 {
		t.Fatalf("summary = %v", out.Summary)
	}
}

func TestHealthz(t *testing.T) {
	srv, state := newServer(t, &fakeCycler{last: &models.CycleResult{Status: models.CycleNoSignal, FinishedAt: time.Unix(1700000000, 0)}}, t.TempDir())
	state.SetReady(true)

	_, body := do(t, http.MethodGet, srv.URL+"/healthz")
	if !strings.Contains(body, `"ready":true`) || !strings.Contains(body, `"lastStatus":"no_signal"`) || !strings.Contains(body, `"lastCycleUnix":1700000000`) {
		t.Fatalf("body = %s", body)
	}
}
