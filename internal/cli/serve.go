package cli

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/fastygo/ecowork/api/handler"
	"github.com/fastygo/ecowork/internal/infrastructure/monitor"
	"github.com/fastygo/ecowork/internal/middleware"
	"github.com/fastygo/ecowork/internal/router"
	"github.com/fastygo/ecowork/internal/services/lifecycle"
	"github.com/fastygo/ecowork/pkg/httpcontext"
)

func (rt *runtime) serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "serve",
		Short:       "Run the local session gateway",
		Long:        "Expose the client session over HTTP on SERVER_HOST:SERVER_PORT until interrupted.",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationDaemon: "true"},
		RunE:        rt.wrap(rt.runServe),
	}
}

func (rt *runtime) runServe(parent context.Context, cmd *cobra.Command, args []string) error {
	cfg, a, log := rt.cfg, rt.app, rt.logger

	appCtx, cancel := context.WithCancel(parent)
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, log)
	stopSignals := manager.Listen(cancel)
	defer stopSignals()
	a.RegisterShutdown(manager)

	a.Session.Initialize(appCtx)

	mon := monitor.New(a.Client, a.Storage, a.Session, cfg.Monitor.Interval, log.Named("monitor"))
	mon.Start(appCtx)
	manager.Register("monitor", mon.Stop)

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)
	handlers := router.Handlers{
		Session:   apiHandler.NewSessionHandler(a.Session, ctxAdapter, log),
		Rewards:   apiHandler.NewRewardsHandler(a.Rewards, ctxAdapter, log),
		Company:   apiHandler.NewCompanyHandler(a.Company, ctxAdapter, log),
		Directory: apiHandler.NewDirectoryHandler(a.Directory, ctxAdapter, log),
		Health:    apiHandler.NewHealthHandler(mon, a.Session, ctxAdapter, log),
	}
	r := router.New(handlers, middleware.RequireSession(a.Session, log))

	server := &fasthttp.Server{
		Handler:      r.Handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Name:         cfg.AppName,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("gateway started", zap.String("address", cfg.Address()))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			serveErr <- err
		}
	}()
	manager.Register("http_server", func(ctx context.Context) error {
		return server.ShutdownWithContext(ctx)
	})

	var err error
	select {
	case <-appCtx.Done():
	case err = <-serveErr:
		log.Error("gateway crashed", zap.Error(err))
	}

	if shutdownErr := manager.Shutdown(context.Background()); shutdownErr != nil {
		log.Error("graceful shutdown error", zap.Error(shutdownErr))
	}
	return err
}
