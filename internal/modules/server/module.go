package server

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
	"go.uber.org/fx"

	"momentum_bot/internal/journal"
	"momentum_bot/internal/models"
	"momentum_bot/internal/modules/config"
	"momentum_bot/internal/modules/server/service"
	"momentum_bot/internal/runner"
	"momentum_bot/pkg/logger"
)

const banner = "OK bot-momentum-v6-advanced"

type Config struct {
	Addr   string // например ":8080"
	LogDir string
}

func NewConfig(cfg *config.Config) Config {
	return Config{Addr: cfg.Service.Addr, LogDir: cfg.Service.LogDir}
}

// Cycler — то, что сервер дёргает у оркестратора.
type Cycler interface {
	Run(ctx context.Context) (*models.CycleResult, error)
	Status(ctx context.Context) (*models.MarketStatus, error)
	Last() *models.CycleResult
}

func NewMux(cfg Config, state *service.State, cy Cycler) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte(banner))
	})

	mux.HandleFunc("GET /robots.txt", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("User-agent: *\nDisallow: /"))
	})

	mux.HandleFunc("POST /ejecutar", func(w http.ResponseWriter, r *http.Request) {
		// клиент может отвалиться, ордер всё равно доводим
		ctx := context.WithoutCancel(r.Context())

		res, err := cy.Run(ctx)
		if errors.Is(err, runner.ErrCycleBusy) {
			state.CycleBusy()
			writeJSON(w, http.StatusConflict, map[string]any{"error": err.Error()})
			return
		}
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
			return
		}
		state.CycleDone()

		if res.Status == models.CycleError {
			writeJSON(w, http.StatusInternalServerError, map[string]any{"error": res.Error})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"message": "Ejecutado correctamente",
			"result":  res,
		})
	})

	mux.HandleFunc("GET /status", func(w http.ResponseWriter, r *http.Request) {
		st, err := cy.Status(r.Context())
		if err != nil {
			logger.Error("status: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, st)
	})

	mux.HandleFunc("GET /resumen", func(w http.ResponseWriter, r *http.Request) {
		day := time.Now()
		sum, err := journal.Summarize(cfg.LogDir, day)
		if err != nil {
			logger.Error("resumen: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"date":    day.Format(journal.DateLayout),
			"summary": sum,
		})
	})

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		// полезный JSON для отладки
		resp := map[string]any{
			"ready":       state.Ready(),
			"uptimeSec":   int64(state.Uptime().Seconds()),
			"cycles":      state.Cycles(),
			"busyRejects": state.BusyRejects(),
		}
		if last := cy.Last(); last != nil {
			resp["lastStatus"] = last.Status
			resp["lastCycleUnix"] = last.FinishedAt.Unix()
		}
		writeJSON(w, http.StatusOK, resp)
	})

	return mux
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	body, err := sonic.Marshal(v)
	if err != nil {
		logger.Error("encode response: %v", err)
		http.Error(w, `{"error":"encode response"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(body)
}

func RunHTTP(lc fx.Lifecycle, cfg Config, mux *http.ServeMux, state *service.State) {
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", cfg.Addr)
			if err != nil {
				return err
			}
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("http serve: %v", err)
				}
			}()
			state.SetReady(true)
			logger.Info("http listening on %s", cfg.Addr)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			state.SetReady(false)
			return srv.Shutdown(ctx)
		},
	})
}

func Module() fx.Option {
	return fx.Module("server",
		fx.Provide(
			service.NewState,
			NewConfig,
			func(o *runner.Orchestrator) Cycler { return o },
			NewMux,
		),
		fx.Invoke(RunHTTP),
	)
}
