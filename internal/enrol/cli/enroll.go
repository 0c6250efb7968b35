package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/aussiebroadwan/coursedesk/internal/enrol/domain"
	"github.com/aussiebroadwan/coursedesk/internal/enrol/service"
)

func newEnrollCommand(o *options) *cobra.Command {
	var (
		classID string
		email   string
		userID  string
		date    string
		yes     bool
	)

	cmd := &cobra.Command{
		Use:   "enroll",
		Short: "Enroll a user in a class",
		Long: "Enroll a user, located by email or id, in a class. The enrollment is\n" +
			"checked against fresh class, occupancy and enrollment data before it is created.",
		Args: cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			return exactlyOne(cmd, "email", "user")
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			var enrollmentDate *time.Time
			if date != "" {
				d, err := time.ParseInLocation(dateLayout, date, time.Local)
				if err != nil {
					return fmt.Errorf("invalid --date %q, want YYYY-MM-DD", date)
				}
				enrollmentDate = &d
			}

			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			wf := o.app.NewWorkflow()
			var created *domain.Enrollment
			wf.OnChange = func(s service.State) {
				if s.Phase == service.PhaseSuccess && s.Enrollment != nil {
					created = s.Enrollment
				}
			}
			defer wf.Close()

			fail := func(err error) error {
				if msg := wf.State().Error; msg != "" {
					return &stateError{msg: msg, err: err}
				}
				return err
			}

			if err := wf.OpenFor(ctx, classID); err != nil {
				if wf.State().ClassInfo != service.ClassInfoReady {
					return fail(err)
				}
				o.app.Logger().WarnContext(ctx, "continuing without the candidate list", slog.Any("error", err))
			}
			renderSession(out, wf.State())

			if err := wf.SetEnrollmentDate(enrollmentDate); err != nil {
				return err
			}

			var err error
			if email != "" {
				err = wf.Search(ctx, email)
			} else {
				err = wf.SelectUser(ctx, userID)
			}
			if err != nil {
				return fail(err)
			}

			s := wf.State()
			user := s.FoundUser
			if user == nil || s.Class == nil {
				return errors.New("no user selected")
			}
			fmt.Fprintf(out, "User: %s <%s>\n", user.Name, user.Email)

			if !yes {
				ok, err := confirm(cmd.InOrStdin(), out, fmt.Sprintf("Enroll %s in %s?", user.Name, s.Class.Title))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(out, "Cancelled.")
					return nil
				}
			}

			if err := wf.Submit(ctx); err != nil {
				return fail(err)
			}
			if created != nil {
				fmt.Fprintf(out, "Enrolled %s in %s (enrollment %s).\n", user.Name, s.Class.Title, created.ID)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&classID, "class", "", "class id")
	f.StringVar(&email, "email", "", "email of the user to enroll")
	f.StringVar(&userID, "user", "", "id of the user to enroll")
	f.StringVar(&date, "date", "", "enrollment date, YYYY-MM-DD (default today)")
	f.BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	_ = cmd.MarkFlagRequired("class")
	return cmd
}
