package cli

import (
	"context"

	"github.com/spf13/cobra"
)

func (rt *runtime) userCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "user USER_ID",
		Short: "Show the details of a user",
		Args:  cobra.ExactArgs(1),
		RunE: rt.wrap(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			user, source, err := rt.app.Directory.User(ctx, rt.app.Session.Current(), args[0])
			if err != nil {
				return err
			}
			return rt.emit(cmd, user, source, func(p *printer) {
				p.Info("%s", user.DisplayName)
				p.Field("ID", user.ID)
				p.Field("Email", user.Email)
				p.Field("Type", user.Kind)
				if user.CompanyID != "" {
					p.Field("Company", user.CompanyID)
				}
			})
		}),
	}
}

func (rt *runtime) usersCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "users",
		Short: "List the users of your company",
		Args:  cobra.NoArgs,
		RunE: rt.wrap(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			users, source, err := rt.app.Directory.Users(ctx, rt.app.Session.Current())
			if err != nil {
				return err
			}
			return rt.emit(cmd, users, source, func(p *printer) {
				rows := make([][]string, 0, len(users))
				for _, u := range users {
					rows = append(rows, []string{u.ID, u.DisplayName, u.Email, string(u.Kind)})
				}
				p.Table([]string{"ID", "Name", "Email", "Type"}, rows)
			})
		}),
	}
}

func (rt *runtime) companyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "company [COMPANY_ID]",
		Short: "Show the details of a company, your own by default",
		Args:  cobra.MaximumNArgs(1),
		RunE: rt.wrap(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			var id string
			if len(args) == 1 {
				id = args[0]
			}
			company, source, err := rt.app.Directory.Company(ctx, rt.app.Session.Current(), id)
			if err != nil {
				return err
			}
			return rt.emit(cmd, company, source, func(p *printer) {
				p.Info("%s", company.Name)
				p.Field("ID", company.ID)
				p.Field("CNPJ", company.TaxID)
				p.Field("Email", company.Email)
				if company.Phone != "" {
					p.Field("Phone", company.Phone)
				}
				if company.Address != "" {
					p.Field("Address", company.Address)
				}
				p.Field("Plan", company.Plan)
				if company.InviteCode != "" {
					p.Field("Invite code", company.InviteCode)
				}
			})
		}),
	}
}
