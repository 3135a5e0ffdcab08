// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Circle Contributors

package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/circlehub/circle/internal/account"
	"github.com/circlehub/circle/internal/auth"
	"github.com/circlehub/circle/internal/config"
	"github.com/circlehub/circle/internal/event"
	"github.com/circlehub/circle/internal/friends"
	"github.com/circlehub/circle/internal/httpapi"
	"github.com/circlehub/circle/internal/logging"
	"github.com/circlehub/circle/internal/observability"
	"github.com/circlehub/circle/internal/password"
	"github.com/circlehub/circle/internal/xdg"
)

const shutdownTimeout = 5 * time.Second

// ServeDeps holds the replaceable collaborators of the serve command.
// Nil fields get default implementations.
type ServeDeps struct {
	// Listen opens the API listener.
	Listen func(addr string) (net.Listener, error)
	// Breaches is used when the password policy enables breach checks.
	Breaches password.BreachChecker
}

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long: `Start the HTTP API together with the metrics and health endpoints.
Flags override values from the configuration file. Without --config the
file is read from $XDG_CONFIG_HOME/circle/config.yaml when it exists.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := xdg.ResolveConfigFile(configFile)
			if err != nil {
				return err
			}
			cfg, err := config.Load(path, cmd.Flags())
			if err != nil {
				return err
			}
			logger, err := logging.SetDefault(logging.Options{
				Service: "circle",
				Version: version,
				Format:  cfg.Server.LogFormat,
				Level:   cfg.Server.LogLevel,
			})
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg, logger, nil)
		},
	}

	config.RegisterFlags(cmd.Flags())
	return cmd
}

// server is the wired service graph.
type server struct {
	hub           *event.Hub
	api           *httpapi.API
	observability *observability.Server
}

func buildServer(cfg *config.Config, logger *slog.Logger, deps *ServeDeps) (*server, error) {
	hasher, err := auth.NewArgon2idHasher(cfg.Hashing)
	if err != nil {
		return nil, err
	}

	breaches := deps.Breaches
	if breaches == nil && cfg.Password.CheckBreachDatabase {
		breaches = password.NewHIBPChecker(cfg.Password.BreachAPIURL)
	}
	passwords, err := password.NewValidator(cfg.Password, breaches)
	if err != nil {
		return nil, err
	}

	issuer, err := auth.NewSessionIssuerFromConfig(cfg.Auth)
	if err != nil {
		return nil, err
	}
	logger.Info("session signing ready", "session_lifetime", issuer.Lifetime().String())

	directory := account.NewDirectory(nil)
	accounts, err := auth.NewService(directory, hasher, passwords, issuer, auth.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	hub := event.NewHub(cfg.Events, event.WithLogger(logger))
	friendSvc, err := friends.NewService(directory, hub, friends.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	obs := observability.NewServer(cfg.Server.MetricsAddr, func() bool { return true },
		observability.WithLogger(logger),
		observability.WithCollectors(auth.RegisterMetrics, event.RegisterMetrics, friends.RegisterMetrics),
	)

	api, err := httpapi.New(accounts, friendSvc, hub,
		httpapi.WithLogger(logger),
		httpapi.WithMetrics(obs.Metrics()),
	)
	if err != nil {
		return nil, err
	}

	return &server{hub: hub, api: api, observability: obs}, nil
}

// runServe serves until ctx is done or a listener fails.
func runServe(ctx context.Context, cfg *config.Config, logger *slog.Logger, deps *ServeDeps) error {
	if deps == nil {
		deps = &ServeDeps{}
	}
	if deps.Listen == nil {
		deps.Listen = func(addr string) (net.Listener, error) {
			return net.Listen("tcp", addr)
		}
	}

	srv, err := buildServer(cfg, logger, deps)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if cfg.Server.MetricsAddr != "" {
		obsErrCh, err := srv.observability.Start()
		if err != nil {
			return oops.Code("SERVE_FAILED").Wrapf(err, "start observability server")
		}
		go monitorServerErrors(ctx, cancel, logger, obsErrCh, "observability")
	}

	listener, err := deps.Listen(cfg.Server.ListenAddr)
	if err != nil {
		stopObservability(logger, srv.observability)
		return oops.Code("SERVE_FAILED").With("addr", cfg.Server.ListenAddr).Wrap(err)
	}

	httpSrv := &http.Server{
		Handler:           srv.api.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		if serveErr := httpSrv.Serve(listener); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			errCh <- serveErr
		}
	}()

	logger.Info("api server listening", "addr", listener.Addr().String())

	var serveErr error
	select {
	case serveErr = <-errCh:
		logger.Error("api server error", "error", serveErr)
	case <-ctx.Done():
		logger.Info("shutting down")
	}

	// Ends the open event streams so Shutdown does not wait on them.
	srv.hub.Close()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("error stopping api server", "error", err)
	}
	stopObservability(logger, srv.observability)

	logger.Info("shutdown complete")
	if serveErr != nil {
		return oops.Code("SERVE_FAILED").Wrap(serveErr)
	}
	return nil
}

func stopObservability(logger *slog.Logger, obs *observability.Server) {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := obs.Stop(shutdownCtx); err != nil {
		logger.Warn("error stopping observability server", "error", err)
	}
}

// monitorServerErrors cancels ctx when a background server fails.
func monitorServerErrors(ctx context.Context, cancel context.CancelFunc, logger *slog.Logger, errCh <-chan error, name string) {
	select {
	case err, ok := <-errCh:
		if ok && err != nil {
			logger.Error("server failed", "server", name, "error", err)
			cancel()
		}
	case <-ctx.Done():
	}
}
