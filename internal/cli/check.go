package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/gatekit/pkg/entitlement"
	"github.com/dmitrymomot/gatekit/pkg/tier"
)

func newCheckCommand(s *state) *cobra.Command {
	return &cobra.Command{
		Use:   "check <feature>",
		Short: "Check whether the current plan includes a feature",
		Long: "Check whether the current plan includes a feature.\n\nKnown features: " +
			featureList() + ".\nExits with status 2 when the feature is not included.",
		Args: cobra.ExactArgs(1),
		RunE: s.withApp(func(cmd *cobra.Command, args []string, app *App) error {
			f, err := entitlement.ParseFeature(args[0])
			if err != nil {
				return fmt.Errorf("%w: %q (known: %s)", err, args[0], featureList())
			}

			res := app.Session.Entitlement.Check(cmd.Context(), f)
			if err := s.emit(cmd, res, func(w io.Writer) error {
				return printResult(w, f.Label(), "", res)
			}); err != nil {
				return err
			}
			if !res.Allowed {
				return ErrDenied
			}
			return nil
		}),
	}
}

func newQuotaCommand(s *state) *cobra.Command {
	var serviceID string

	cmd := &cobra.Command{
		Use:   "quota <field>",
		Short: "Check whether one more resource fits in a quota",
		Long: "Check whether one more resource fits in a quota.\n\nKnown quotas: " +
			quotaList() + ".\nExits with status 2 when the quota is exhausted.",
		Args: cobra.ExactArgs(1),
		RunE: s.withApp(func(cmd *cobra.Command, args []string, app *App) error {
			field, err := tier.ParseQuotaField(args[0])
			if err != nil {
				return err
			}

			ev := app.Session.Entitlement
			var res entitlement.Result
			switch field {
			case tier.QuotaMaxServices:
				res = ev.CanAddService(cmd.Context())
			case tier.QuotaMaxTeamMembers:
				res = ev.CanAddTeamMember(cmd.Context())
			case tier.QuotaMaxPhotosPerService:
				if serviceID == "" {
					return ErrMissingServiceID
				}
				res = ev.CanAddPhoto(cmd.Context(), serviceID)
			}

			if err := s.emit(cmd, res, func(w io.Writer) error {
				return printResult(w, string(field), entitlement.QuotaNoun(field), res)
			}); err != nil {
				return err
			}
			if !res.Allowed {
				return ErrDenied
			}
			return nil
		}),
	}
	cmd.Flags().StringVar(&serviceID, "service", "", "service ID, required for max_photos_per_service")

	return cmd
}

func featureList() string {
	features := entitlement.Features()
	names := make([]string, len(features))
	for i, f := range features {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}

func quotaList() string {
	fields := tier.QuotaFields()
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}
