package cli

import (
	"context"
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/fastygo/ecowork/api/transport"
	"github.com/fastygo/ecowork/domain"
	"github.com/fastygo/ecowork/internal/apiclient"
)

const passwordEnv = "ECOWORK_PASSWORD"

func (rt *runtime) loginCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with email and password",
		Long: `Sign in and persist the session for later commands.

The password may be given through ECOWORK_PASSWORD instead of --password.`,
		Args: cobra.NoArgs,
		RunE: rt.wrap(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			email, _ := cmd.Flags().GetString("email")
			snap, err := rt.app.Session.Login(ctx, email, passwordFlag(cmd))
			if err != nil {
				return err
			}
			return rt.showSession(cmd, snap, nil)
		}),
	}
	cmd.Flags().String("email", "", "account email")
	cmd.Flags().String("password", "", "account password")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func (rt *runtime) registerCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a company or employee account",
	}
	cmd.AddCommand(rt.registerCompanyCommand(), rt.registerEmployeeCommand())
	return cmd
}

func (rt *runtime) registerCompanyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "company",
		Short: "Register a company and sign it in",
		Args:  cobra.NoArgs,
		RunE: rt.wrap(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			rawPlan, _ := flags.GetString("plan")
			plan, ok := domain.ParsePlan(rawPlan)
			if !ok {
				return domain.NewError(domain.ErrCodeInvalid, "plan must be BASIC, PREMIUM or ENTERPRISE")
			}
			in := apiclient.CompanySignup{Password: passwordFlag(cmd), Plan: plan}
			in.Name, _ = flags.GetString("name")
			in.TaxID, _ = flags.GetString("cnpj")
			in.Email, _ = flags.GetString("email")
			in.Phone, _ = flags.GetString("phone")
			in.Address, _ = flags.GetString("address")

			snap, company, err := rt.app.Session.RegisterCompany(ctx, in)
			if err != nil {
				return err
			}
			return rt.showSession(cmd, snap, company)
		}),
	}
	f := cmd.Flags()
	f.String("name", "", "company name")
	f.String("cnpj", "", "company tax id")
	f.String("email", "", "account email")
	f.String("password", "", "account password")
	f.String("phone", "", "contact phone")
	f.String("address", "", "postal address")
	f.String("plan", string(domain.PlanBasic), "BASIC, PREMIUM or ENTERPRISE")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("cnpj")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func (rt *runtime) registerEmployeeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "employee",
		Short: "Join a company with its invite code",
		Args:  cobra.NoArgs,
		RunE: rt.wrap(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			in := apiclient.EmployeeSignup{Password: passwordFlag(cmd)}
			in.Name, _ = flags.GetString("name")
			in.Email, _ = flags.GetString("email")
			in.InviteCode, _ = flags.GetString("invite")
			in.DistanceKm, _ = flags.GetFloat64("distance")
			if raw, _ := flags.GetString("transport"); raw != "" {
				mode, ok := domain.ParseTransportMode(raw)
				if !ok {
					return domain.NewError(domain.ErrCodeInvalid, "unknown transportation "+raw)
				}
				in.Transportation = mode
			}

			snap, err := rt.app.Session.RegisterEmployee(ctx, in)
			if err != nil {
				return err
			}
			return rt.showSession(cmd, snap, nil)
		}),
	}
	f := cmd.Flags()
	f.String("name", "", "full name")
	f.String("email", "", "account email")
	f.String("password", "", "account password")
	f.String("invite", "", "company invite code")
	f.String("transport", "", "usual commute mode")
	f.Float64("distance", 0, "usual one-way commute in km")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("invite")
	return cmd
}

func (rt *runtime) logoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: rt.wrap(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			rt.app.Session.Logout(ctx)
			if rt.asJSON {
				return rt.encode(cmd, transport.NewSuccess(rt.app.Session.Snapshot(), nil))
			}
			rt.output(cmd).Success("signed out")
			return nil
		}),
	}
}

func (rt *runtime) whoamiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session",
		Args:  cobra.NoArgs,
		RunE: rt.wrap(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			return rt.showSession(cmd, rt.app.Session.Snapshot(), nil)
		}),
	}
}

func (rt *runtime) showSession(cmd *cobra.Command, snap domain.Session, company *domain.Company) error {
	if rt.asJSON {
		payload := map[string]interface{}{"session": snap}
		if company != nil {
			payload["company"] = company
		}
		return rt.encode(cmd, transport.NewSuccess(payload, transport.SourceMeta{
			Source:   sessionSource(snap),
			Degraded: snap.Degraded,
		}))
	}

	p := rt.output(cmd)
	if !snap.Authenticated() {
		p.Info("not signed in")
		return nil
	}
	id := snap.Identity
	p.Success("signed in as %s", id.DisplayName)
	p.Field("Email", id.Email)
	p.Field("Type", id.Kind)
	if id.CompanyID != "" {
		p.Field("Company", id.CompanyID)
	}
	if company != nil {
		p.Field("Company name", company.Name)
		p.Field("Plan", company.Plan)
		p.Field("Invite code", company.InviteCode)
	}
	p.Field("Backend", onlineLabel(snap.BackendReachable))
	if snap.Degraded {
		p.Warning("demo mode: this session was created offline")
	}
	return nil
}

func (rt *runtime) encode(cmd *cobra.Command, env transport.Envelope) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(env)
}

func sessionSource(snap domain.Session) string {
	if snap.Degraded {
		return string(apiclient.SourceFallback)
	}
	return string(apiclient.SourceBackend)
}

func passwordFlag(cmd *cobra.Command) string {
	if pw, _ := cmd.Flags().GetString("password"); pw != "" {
		return pw
	}
	return os.Getenv(passwordEnv)
}

func onlineLabel(ok bool) string {
	if ok {
		return "online"
	}
	return "offline"
}
