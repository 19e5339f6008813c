package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/gatekit/pkg/entitlement"
	"github.com/dmitrymomot/gatekit/pkg/subscription"
	"github.com/dmitrymomot/gatekit/pkg/tier"
)

// emit prints v as indented JSON with --json, otherwise calls text.
func (s *state) emit(cmd *cobra.Command, v any, text func(w io.Writer) error) error {
	w := cmd.OutOrStdout()
	if s.jsonOut {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	return text(w)
}

func printResult(w io.Writer, subject, noun string, res entitlement.Result) error {
	verdict := "denied"
	if res.Allowed {
		verdict = "allowed"
	}

	switch {
	case res.Limit != nil && res.CurrentCount != nil:
		fmt.Fprintf(w, "%s: %s (%d of %d %s used)\n", subject, verdict, *res.CurrentCount, *res.Limit, noun)
	case res.Allowed && noun != "":
		fmt.Fprintf(w, "%s: %s (unlimited)\n", subject, verdict)
	default:
		fmt.Fprintf(w, "%s: %s\n", subject, verdict)
	}

	if res.Message != "" {
		_, err := fmt.Fprintln(w, res.Message)
		return err
	}
	return nil
}

// statusView is what the status command prints.
type statusView struct {
	Subscription subscription.UserSubscription `json:"subscription"`
	Entitlements entitlement.Summary           `json:"entitlements"`
}

func printStatus(w io.Writer, v statusView) error {
	if err := printSubscription(w, v.Subscription); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "\nLimits:\t")
	for _, f := range tier.QuotaFields() {
		line := v.Entitlements.Limits.Quota(f).String()
		if res, ok := v.Entitlements.Quotas[f]; ok && res.CurrentCount != nil {
			line = fmt.Sprintf("%d of %s used", *res.CurrentCount, line)
		}
		fmt.Fprintf(tw, "  %s\t%s\n", f, line)
	}

	fmt.Fprintln(tw, "\nFeatures:\t")
	for _, f := range entitlement.Features() {
		fmt.Fprintf(tw, "  %s\t%s\n", f.Label(), yesNo(v.Entitlements.Features[f].Allowed))
	}
	return tw.Flush()
}

func printSubscription(w io.Writer, sub subscription.UserSubscription) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	state := "inactive"
	if sub.IsActive {
		state = "active"
	}
	fmt.Fprintf(tw, "Plan:\t%s (%s)\n", sub.Tier.DisplayName(), state)
	fmt.Fprintf(tw, "Source:\t%s\n", sub.Source)
	if sub.ExpiresAt != nil {
		fmt.Fprintf(tw, "Expires:\t%s\n", sub.ExpiresAt.Format(time.RFC3339))
	}
	if sub.RenewalDate != nil {
		fmt.Fprintf(tw, "Renews:\t%s\n", sub.RenewalDate.Format(time.RFC3339))
	}
	if !sub.FetchedAt.IsZero() {
		fmt.Fprintf(tw, "Fetched:\t%s\n", sub.FetchedAt.Format(time.RFC3339))
	}

	return tw.Flush()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
