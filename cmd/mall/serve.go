// cmd/mall/serve.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	appcfg "modaorganica/internal/infra/config"
	mallDI "modaorganica/internal/platform/di/mall"
	shared "modaorganica/internal/platform/di/shared"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the mall HTTP server",
	Long: `Starts listening immediately with /healthz only, builds the container
in the background and then switches to the full router. The shipping section
of the config file is reloaded on change.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return serve(ctx, cfg, appcfg.Path(configPath), logger, nil)
	},
}

// atomicHandler allows swapping the underlying handler at runtime safely.
type atomicHandler struct {
	v atomic.Value // stores http.Handler
}

func newAtomicHandler(initial http.Handler) *atomicHandler {
	ah := &atomicHandler{}
	if initial == nil {
		initial = http.NotFoundHandler()
	}
	ah.v.Store(initial)
	return ah
}

func (h *atomicHandler) Store(next http.Handler) {
	if next == nil {
		return
	}
	h.v.Store(next)
}

func (h *atomicHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.v.Load().(http.Handler).ServeHTTP(w, r)
}

func healthMux() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

// serve runs until ctx is done. ln may be nil (listen on cfg.Server.Port).
func serve(ctx context.Context, cfg *appcfg.Config, cfgPath string, logger *zap.Logger, ln net.Listener) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	log := logger.Named("boot")

	if ln == nil {
		var err error
		ln, err = net.Listen("tcp", ":"+cfg.Server.Port)
		if err != nil {
			return fmt.Errorf("boot: listen: %w", err)
		}
	}

	// Start listening ASAP with lightweight mux (healthz only)
	switcher := newAtomicHandler(healthMux())
	srv := &http.Server{
		Handler:      switcher,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	runCtx, stopAll := context.WithCancel(ctx)
	defer stopAll()
	g, gctx := errgroup.WithContext(runCtx)
	drained := make(chan struct{})

	g.Go(func() error {
		log.Info("listening", zap.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("boot: server: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		defer close(drained)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	// Heavy DI init; then swap handler to the full router and run the workers.
	g.Go(func() error {
		initCtx, cancel := context.WithTimeout(gctx, 2*time.Minute)
		defer cancel()

		infra, err := shared.NewInfra(initCtx, cfg, logger)
		if err != nil {
			log.Warn("shared infra init failed; serving /healthz only", zap.Error(err))
			return nil
		}
		cont, err := mallDI.NewContainer(initCtx, infra)
		if err != nil {
			_ = infra.Close()
			log.Warn("mall di init failed; serving /healthz only", zap.Error(err))
			return nil
		}
		defer func() {
			// in-flight requests may still use the stores
			<-drained
			if err := cont.Close(); err != nil {
				log.Warn("container close error", zap.Error(err))
			}
		}()

		switcher.Store(mallDI.Handler(cont))
		log.Info("handler switched to mall router")

		workers, wctx := errgroup.WithContext(gctx)
		workers.Go(func() error {
			return cont.Sessions.Run(wctx, cfg.Server.SweepInterval)
		})
		if cfgPath != "" {
			workers.Go(func() error {
				return appcfg.NewWatcher(cfgPath, cont.Shipping, logger).Run(wctx)
			})
		}
		if err := workers.Wait(); err != nil {
			// the deferred close waits on drained; shutdown must start first
			stopAll()
			return fmt.Errorf("boot: workers: %w", err)
		}
		return nil
	})

	err := g.Wait()
	log.Info("server stopped")
	return err
}
