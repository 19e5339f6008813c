package cli

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/gatekit/pkg/logger"
)

func newStatusCommand(s *state) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current subscription and what it allows",
		Args:  cobra.NoArgs,
		RunE: s.withApp(func(cmd *cobra.Command, _ []string, app *App) error {
			v := statusView{
				Subscription: app.Session.Store.Get(cmd.Context()),
				Entitlements: app.Session.Entitlement.Summary(cmd.Context()),
			}
			return s.emit(cmd, v, func(w io.Writer) error {
				return printStatus(w, v)
			})
		}),
	}
}

func newRefreshCommand(s *state) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Fetch the subscription again, bypassing the cache",
		Args:  cobra.NoArgs,
		RunE: s.withApp(func(cmd *cobra.Command, _ []string, app *App) error {
			sub := app.Session.Store.Refresh(cmd.Context())
			return s.emit(cmd, sub, func(w io.Writer) error {
				return printSubscription(w, sub)
			})
		}),
	}
}

type activateView struct {
	Activated bool   `json:"activated"`
	Tier      string `json:"tier"`
	IsActive  bool   `json:"is_active"`
}

func newActivateCommand(s *state) *cobra.Command {
	var checkoutID string

	cmd := &cobra.Command{
		Use:   "activate",
		Short: "Activate the subscription after a completed checkout",
		Long: `Activate the subscription after a completed checkout.

The billing API is asked to activate the subscription, then, after a short
grace period, the subscription is fetched again. Exits with an error when
the activation call fails.`,
		Args: cobra.NoArgs,
		RunE: s.withApp(func(cmd *cobra.Command, _ []string, app *App) error {
			ok := app.Session.Activation.ActivateAfterPayment(cmd.Context(), checkoutID)
			sub, _ := app.Session.Store.Current()
			v := activateView{Activated: ok, Tier: sub.Tier.String(), IsActive: sub.IsActive}

			if err := s.emit(cmd, v, func(w io.Writer) error {
				if !ok {
					_, err := io.WriteString(w, "activation failed\n")
					return err
				}
				return printSubscription(w, sub)
			}); err != nil {
				return err
			}
			if !ok {
				return ErrActivationFailed
			}
			s.log.InfoContext(cmd.Context(), "subscription activated",
				logger.Component("cli"),
				logger.Tier(sub.Tier),
			)
			return nil
		}),
	}
	cmd.Flags().StringVar(&checkoutID, "session", "", "checkout session ID returned by the payment page")

	return cmd
}
