package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aussiebroadwan/coursedesk/internal/enrol/directory"
	"github.com/aussiebroadwan/coursedesk/internal/enrol/domain"
	"github.com/aussiebroadwan/coursedesk/internal/enrol/service"
)

func newCoursesCommand(o *options) *cobra.Command {
	var (
		title   string
		themes  []string
		page    int
		perPage int
	)

	cmd := &cobra.Command{
		Use:   "courses",
		Short: "List courses with their available classes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			filter := service.CatalogFilter{Title: title}
			for _, raw := range themes {
				theme, err := parseTheme(raw)
				if err != nil {
					return err
				}
				filter.Themes = append(filter.Themes, theme)
			}

			courses, err := o.app.Catalog.CoursesWithClasses(cmd.Context(), directory.CourseQuery{})
			if err != nil {
				return err
			}
			if perPage <= 0 {
				perPage = o.app.Config().PerPage
			}
			view := service.Paginate(service.FilterCourses(courses, filter), page, perPage)
			return renderCatalog(cmd.OutOrStdout(), view)
		},
	}

	f := cmd.Flags()
	f.StringVar(&title, "title", "", "only courses whose title contains this text (case-insensitive)")
	f.StringArrayVar(&themes, "theme", nil, "only courses with any of these themes (repeatable)")
	f.IntVar(&page, "page", 1, "page to show")
	f.IntVar(&perPage, "per-page", 0, "courses per page (default from config)")
	return cmd
}

func parseTheme(raw string) (domain.Theme, error) {
	theme := domain.Theme(strings.ToUpper(strings.TrimSpace(raw)))
	if !theme.Valid() {
		return "", fmt.Errorf("unknown theme %q, want one of %s", raw, joinThemes(domain.Themes))
	}
	return theme, nil
}
