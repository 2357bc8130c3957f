package cli

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/fastygo/ecowork/domain"
	rewardsUC "github.com/fastygo/ecowork/usecase/rewards"
)

func (rt *runtime) logDayCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "log-day",
		Aliases: []string{"home-office"},
		Short:   "Register a remote-work day",
		Long: `Register a remote-work day and the commute it replaced.

Examples:
  ecowork log-day --mode CAR --distance 15
  ecowork log-day --mode bus --distance 8 --date 2025-01-20`,
		Args: cobra.NoArgs,
		RunE: rt.wrap(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			entry := rewardsUC.DayEntry{}
			entry.Mode, _ = flags.GetString("mode")
			entry.DistanceKm, _ = flags.GetFloat64("distance")
			if raw, _ := flags.GetString("date"); raw != "" {
				day, err := time.Parse(domain.DateLayout, raw)
				if err != nil {
					return domain.WrapError(domain.ErrCodeInvalid, "date must be YYYY-MM-DD", err)
				}
				entry.Date = day
			}

			record, source, err := rt.app.Rewards.LogHomeOffice(ctx, rt.app.Session.Current(), entry)
			if err != nil {
				return err
			}
			return rt.emit(cmd, record, source, func(p *printer) {
				p.Success("remote-work day %s registered", record.Date)
				p.Field("Replaced commute", fmt.Sprintf("%s, %.1f km", record.TransportMode, record.DistanceKm))
				p.Field("CO2 avoided", fmt.Sprintf("%.2f kg", record.CO2SavedKg))
				p.Field("Credits earned", record.CreditsEarned)
			})
		}),
	}
	cmd.Flags().String("mode", string(domain.TransportCar), "commute replaced: CAR, MOTORCYCLE, BUS, SUBWAY, BICYCLE or WALKING")
	cmd.Flags().Float64("distance", 0, "one-way commute in km")
	cmd.Flags().String("date", "", "day to register, YYYY-MM-DD (default today)")
	return cmd
}

func (rt *runtime) historyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "List registered remote-work days",
		Args:  cobra.NoArgs,
		RunE: rt.wrap(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			records, source, err := rt.app.Rewards.History(ctx, rt.app.Session.Current())
			if err != nil {
				return err
			}
			return rt.emit(cmd, records, source, func(p *printer) {
				if len(records) == 0 {
					p.Info("no remote-work days registered yet")
					return
				}
				rows := make([][]string, 0, len(records))
				for _, r := range records {
					rows = append(rows, []string{
						r.Date,
						string(r.TransportMode),
						strconv.FormatFloat(r.DistanceKm, 'f', 1, 64),
						strconv.FormatFloat(r.CO2SavedKg, 'f', 2, 64),
						strconv.Itoa(r.CreditsEarned),
					})
				}
				p.Table([]string{"Date", "Mode", "Km", "CO2 kg", "Credits"}, rows)
			})
		}),
	}
}

func (rt *runtime) statsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show totals and available credits",
		Args:  cobra.NoArgs,
		RunE: rt.wrap(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			stats, source, err := rt.app.Rewards.Stats(ctx, rt.app.Session.Current())
			if err != nil {
				return err
			}
			return rt.emit(cmd, stats, source, func(p *printer) {
				p.Field("Remote-work days", stats.TotalHomeOfficeDays)
				p.Field("This week", stats.CurrentWeekDays)
				p.Field("CO2 avoided", fmt.Sprintf("%.2f kg", stats.TotalCO2Saved))
				p.Field("Credits earned", stats.TotalCredits)
				p.Field("Credits available", stats.AvailableCredits)
			})
		}),
	}
}

func (rt *runtime) benefitsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "benefits",
		Short: "List the benefit catalog",
		Args:  cobra.NoArgs,
		RunE: rt.wrap(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			category, _ := cmd.Flags().GetString("category")
			benefits, source, err := rt.app.Rewards.Benefits(ctx, category)
			if err != nil {
				return err
			}
			return rt.emit(cmd, benefits, source, func(p *printer) {
				if len(benefits) == 0 {
					p.Info("no benefits in this category")
					return
				}
				rows := make([][]string, 0, len(benefits))
				for _, b := range benefits {
					rows = append(rows, []string{b.ID, b.Name, string(b.Category), strconv.Itoa(b.CostCredits)})
				}
				p.Table([]string{"ID", "Name", "Category", "Cost"}, rows)
			})
		}),
	}
	cmd.Flags().String("category", "all", "vouchers, donations, products, education, experiences, subscriptions or all")
	return cmd
}

func (rt *runtime) redeemCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "redeem BENEFIT_ID",
		Short: "Spend credits on a benefit",
		Args:  cobra.ExactArgs(1),
		RunE: rt.wrap(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			redemption, source, err := rt.app.Rewards.Redeem(ctx, rt.app.Session.Current(), args[0])
			if err != nil {
				return err
			}
			return rt.emit(cmd, redemption, source, func(p *printer) {
				p.Success("benefit %s redeemed for %d credits", redemption.BenefitID, redemption.CostCredits)
				p.Field("Redemption", redemption.ID)
			})
		}),
	}
}
