package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/fastygo/ecowork/internal/apiclient"
	"github.com/fastygo/ecowork/internal/infrastructure/monitor"
)

func (rt *runtime) healthCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check the backend and session storage",
		Args:  cobra.NoArgs,
		RunE: rt.wrap(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			mon := monitor.New(rt.app.Client, rt.app.Storage, rt.app.Session, time.Minute, rt.logger.Named("monitor"))
			status := mon.Refresh(ctx)

			source := apiclient.SourceBackend
			if !status.Backend {
				source = apiclient.SourceFallback
			}
			return rt.emit(cmd, status, source, func(p *printer) {
				p.Field("API", rt.cfg.API.BaseURL)
				p.Field("Backend", onlineLabel(status.Backend))
				if status.Storage {
					p.Field("Storage", rt.cfg.Storage.Driver+" ok")
				} else {
					p.Field("Storage", rt.cfg.Storage.Driver+" failing")
				}
			})
		}),
	}
}
