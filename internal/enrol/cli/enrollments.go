package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aussiebroadwan/coursedesk/internal/enrol/domain"
	"github.com/aussiebroadwan/coursedesk/internal/enrol/service"
)

func newEnrollmentsCommand(o *options) *cobra.Command {
	var (
		userID string
		email  string
	)

	cmd := &cobra.Command{
		Use:   "enrollments",
		Short: "Show a user's enrollments",
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			return exactlyOne(cmd, "user", "email")
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()

			var (
				entries []service.RosterEntry
				err     error
			)
			if email != "" {
				var u domain.User
				u, entries, err = o.app.Roster.EnrollmentsByEmail(cmd.Context(), email)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Enrollments of %s <%s>\n\n", u.Name, u.Email)
			} else {
				entries, err = o.app.Roster.EnrollmentsOf(cmd.Context(), userID)
				if err != nil {
					return err
				}
			}
			return renderRoster(out, entries)
		},
	}

	f := cmd.Flags()
	f.StringVar(&userID, "user", "", "user id")
	f.StringVar(&email, "email", "", "user email")
	return cmd
}
