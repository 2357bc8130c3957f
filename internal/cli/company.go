package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func (rt *runtime) dashboardCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show the company dashboard",
		Args:  cobra.NoArgs,
		RunE: rt.wrap(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			overview, source, err := rt.app.Company.Dashboard(ctx, rt.app.Session.Current())
			if err != nil {
				return err
			}
			return rt.emit(cmd, overview, source, func(p *printer) {
				d := overview.Dashboard
				p.Info("%s", overview.Company.Name)
				if overview.Company.InviteCode != "" {
					p.Field("Invite code", overview.Company.InviteCode)
				}
				p.Field("Employees", fmt.Sprintf("%d (%d active)", d.TotalEmployees, d.ActiveEmployees))
				p.Field("CO2 avoided", fmt.Sprintf("%.2f kg", d.TotalCO2Saved))
				p.Field("Credits earned", d.TotalCredits)
				if len(d.Employees) == 0 {
					return
				}
				rows := make([][]string, 0, len(d.Employees))
				for _, e := range d.Employees {
					rows = append(rows, []string{
						e.Name,
						e.Email,
						strconv.Itoa(e.Days),
						strconv.FormatFloat(e.CO2Saved, 'f', 2, 64),
						strconv.Itoa(e.TotalCredits),
					})
				}
				p.Table([]string{"Name", "Email", "Days", "CO2 kg", "Credits"}, rows)
			})
		}),
	}
}
