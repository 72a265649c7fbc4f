package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"jobmate/hiring-service/internal/api"
	"jobmate/hiring-service/internal/grpcserver"
	"jobmate/hiring-service/internal/scheduler"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the REST and gRPC servers",
	Long:  "Serves the REST API and the HiringService gRPC API, and runs the job deadline sweep when HIRING_DEADLINE_SWEEP is set. Stops gracefully on SIGINT or SIGTERM.",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := loadApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	// ── HTTP server ──────────────────────────────────────────────────────────
	router := api.NewRouter(api.Deps{
		Pipelines: a.pipelines,
		Jobs:      a.catalog,
		Identity:  a.identity,
		Kanban:    a.kanban,
		Screening: a.screening,
		Sessions:  a.sessions,
		Version:   version,
		Logger:    a.logger,
	})
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", a.cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: a.cfg.Prompt.Timeout + 10*time.Second,
	}

	// ── gRPC server ──────────────────────────────────────────────────────────
	gs := grpcserver.New(grpcserver.NewServer(a.kanban, a.screening, a.logger), a.sessions)
	lis, err := net.Listen("tcp", fmt.Sprintf(":%s", a.cfg.GRPCPort))
	if err != nil {
		return fmt.Errorf("gRPC listen: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)

	// ── Deadline sweep ───────────────────────────────────────────────────────
	var sched *scheduler.Scheduler
	if a.cfg.DeadlineSweep != "" {
		sched = scheduler.New(a.catalog, a.cfg.DeadlineSweep)
		if err := sched.Start(gctx); err != nil {
			_ = lis.Close()
			return err
		}
	}

	g.Go(func() error {
		log.Printf("[hiring-service] v%s HTTP listening on :%s", version, a.cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		log.Printf("[hiring-service] gRPC listening on :%s", a.cfg.GRPCPort)
		if err := gs.Serve(lis); err != nil {
			return fmt.Errorf("gRPC server: %w", err)
		}
		return nil
	})

	// ── Graceful shutdown ────────────────────────────────────────────────────
	g.Go(func() error {
		<-gctx.Done()
		log.Println("[hiring-service] Shutting down…")
		if sched != nil {
			sched.Stop()
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("[hiring-service] Shutdown error: %v", err)
		}
		gs.GracefulStop()
		return nil
	})

	err = g.Wait()
	log.Println("[hiring-service] Stopped.")
	return err
}
