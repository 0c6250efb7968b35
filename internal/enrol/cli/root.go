// Package cli is the coursedesk command line. It renders service state and
// forwards intent; every rule lives in the service layer.
package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/aussiebroadwan/coursedesk/internal/enrol/app"
	"github.com/aussiebroadwan/coursedesk/pkg/slogx"
)

type options struct {
	configFile string
	apiURL     string
	logLevel   string

	app *app.Application
}

// NewRootCommand builds the coursedesk command tree.
func NewRootCommand() *cobra.Command {
	o := &options{}

	root := &cobra.Command{
		Use:           "coursedesk",
		Short:         "coursedesk browses courses, registers users and enrolls them in classes",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return o.init(cmd)
		},
	}

	f := root.PersistentFlags()
	f.StringVar(&o.configFile, "config", "", "config file (default ./coursedesk.yaml or $HOME/.config/coursedesk/coursedesk.yaml)")
	f.StringVar(&o.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	f.StringVar(&o.apiURL, "api-url", "", "Directory Store base URL")

	root.AddCommand(
		newCoursesCommand(o),
		newUsersCommand(o),
		newEnrollCommand(o),
		newEnrollmentsCommand(o),
	)
	return root
}

func (o *options) init(cmd *cobra.Command) error {
	cfg, err := app.LoadConfig(o.configFile)
	if err != nil {
		return err
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	if o.apiURL != "" {
		cfg.APIBaseURL = o.apiURL
	}

	a, err := app.New(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	o.app = a

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(slogx.WithContext(ctx, a.Logger()))
	return nil
}

// stateError carries the message a workflow put on screen while keeping
// the underlying error matchable.
type stateError struct {
	msg string
	err error
}

func (e *stateError) Error() string { return e.msg }
func (e *stateError) Unwrap() error { return e.err }

// exactlyOne reports an error unless exactly one of the named flags is set.
func exactlyOne(cmd *cobra.Command, a, b string) error {
	if cmd.Flags().Changed(a) == cmd.Flags().Changed(b) {
		return errors.New("exactly one of --" + a + " or --" + b + " is required")
	}
	return nil
}
