package cli

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aussiebroadwan/coursedesk/internal/enrol/service"
)

func newUsersCommand(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Register and list users",
	}
	cmd.AddCommand(newUsersRegisterCommand(o), newUsersListCommand(o))
	return cmd
}

func newUsersRegisterCommand(o *options) *cobra.Command {
	var form service.RegistrationForm

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a new user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			form.Role = strings.ToUpper(strings.TrimSpace(form.Role))

			u, err := o.app.Registration.Register(cmd.Context(), form)
			var fe *service.FormError
			if errors.As(err, &fe) {
				keys := make([]string, 0, len(fe.Fields))
				for k := range fe.Fields {
					keys = append(keys, k)
				}
				slices.Sort(keys)
				for _, k := range keys {
					fmt.Fprintf(cmd.ErrOrStderr(), "  %s: %s\n", k, fe.Fields[k])
				}
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Registered %s <%s> as %s (id %s)\n", u.Name, u.Email, u.Role, u.ID)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&form.Name, "name", "", "full name")
	f.StringVar(&form.Email, "email", "", "email address")
	f.StringVar(&form.Role, "role", "STUDENT", "role (STUDENT, INSTRUCTOR, ADMIN)")
	return cmd
}

func newUsersListCommand(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			users, err := o.app.Registration.ListUsers(cmd.Context())
			if err != nil {
				return err
			}
			return renderUsers(cmd.OutOrStdout(), users)
		},
	}
}
