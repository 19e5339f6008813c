package cli

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/gatekit/pkg/logger"
	"github.com/dmitrymomot/gatekit/pkg/usage"
)

func newCountsCommand(s *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "counts",
		Short: "Maintain the usage counts stored in Redis",
		Long: `Maintain the usage counts stored in Redis for GATEKIT_ACCOUNT.

Resources: services, team_members and photos (with --service). These commands
always use Redis and need REDIS_URL.`,
	}
	cmd.AddCommand(
		newCountsWriteCommand(s, "set", "Overwrite a usage count", false),
		newCountsWriteCommand(s, "add", "Change a usage count by a delta, which may be negative", true),
	)
	return cmd
}

type countView struct {
	Resource string `json:"resource"`
	Count    int64  `json:"count"`
}

func newCountsWriteCommand(s *state, name, short string, delta bool) *cobra.Command {
	var (
		serviceID string
		key       string
		n         int64
	)

	cmd := &cobra.Command{
		Use:   name + " <resource> <n>",
		Short: short,
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.ExactArgs(2)(cmd, args); err != nil {
				return err
			}
			k, err := countKey(args[0], serviceID)
			if err != nil {
				return err
			}
			v, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("%w: %q", ErrInvalidCount, args[1])
			}
			if !delta && v < 0 {
				return fmt.Errorf("%w: %q must not be negative", ErrInvalidCount, args[1])
			}
			key, n = k, v
			return nil
		},
		PreRun: func(*cobra.Command, []string) {
			s.redisCounts = true
		},
		RunE: s.withApp(func(cmd *cobra.Command, _ []string, app *App) error {
			ctx := cmd.Context()

			count := n
			if delta {
				var err error
				if count, err = app.Counts.Add(ctx, key, n); err != nil {
					return err
				}
			} else if err := app.Counts.SetCount(ctx, key, n); err != nil {
				return err
			}
			app.Session.Usage.Invalidate(key)

			app.Log.InfoContext(ctx, "usage count updated",
				logger.Component("cli"),
				logger.Resource(key),
				slog.Int64("count", count),
			)

			v := countView{Resource: key, Count: count}
			return s.emit(cmd, v, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "%s: %d\n", key, count)
				return err
			})
		}),
	}
	cmd.Flags().StringVar(&serviceID, "service", "", "service ID, required for photos")

	return cmd
}

// countKey maps a resource name to its usage counter key.
func countKey(resource, serviceID string) (string, error) {
	switch resource {
	case usage.ResourceServices:
		return usage.ServicesKey(), nil
	case usage.ResourceTeamMembers:
		return usage.TeamMembersKey(), nil
	case usage.ResourcePhotos:
		if serviceID == "" {
			return "", ErrMissingServiceID
		}
		return usage.PhotosKey(serviceID), nil
	}
	return "", fmt.Errorf("%w: %q (known: services, team_members, photos)", ErrUnknownResource, resource)
}
