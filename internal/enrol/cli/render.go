package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/aussiebroadwan/coursedesk/internal/enrol/domain"
	"github.com/aussiebroadwan/coursedesk/internal/enrol/service"
)

const dateLayout = "2006-01-02"

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(dateLayout)
}

func joinThemes(themes []domain.Theme) string {
	parts := make([]string, len(themes))
	for i, t := range themes {
		parts[i] = string(t)
	}
	return strings.Join(parts, ",")
}

func renderCatalog(w io.Writer, view service.Page[domain.CourseWithClasses]) error {
	if view.TotalItems == 0 {
		_, err := fmt.Fprintln(w, "No courses match the current filters.")
		return err
	}

	tw := newTable(w)
	fmt.Fprintln(tw, "COURSE\tTHEMES\tCLASS\tSTARTS\tENDS\tCAPACITY\tCLASS ID")
	for _, c := range view.Items {
		if len(c.Classes) == 0 {
			fmt.Fprintf(tw, "%s\t%s\t-\t-\t-\t-\t-\n", c.Title, joinThemes(c.Themes))
			continue
		}
		for _, cl := range c.Classes {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\t%s\n",
				c.Title, joinThemes(c.Themes), cl.Title,
				formatDate(cl.StartDate), formatDate(cl.EndDate), cl.Capacity, cl.ID)
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\nPage %d of %d (%d courses)\n", view.Page, view.TotalPages, view.TotalItems)
	return err
}

func renderUsers(w io.Writer, users []domain.User) error {
	if len(users) == 0 {
		_, err := fmt.Fprintln(w, "No users registered.")
		return err
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tROLE\tCREATED")
	for _, u := range users {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", u.ID, u.Name, u.Email, u.Role, formatDate(u.CreatedAt))
	}
	return tw.Flush()
}

func renderRoster(w io.Writer, entries []service.RosterEntry) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "No enrollments.")
		return err
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "COURSE\tCLASS\tSTARTS\tENDS\tENROLLED\tENROLLMENT ID")
	for _, e := range entries {
		course, class, starts, ends := "(unavailable)", "(unavailable)", "-", "-"
		if e.Course != nil {
			course = e.Course.Title
		}
		if e.Class != nil {
			class = e.Class.Title
			starts, ends = formatDate(e.Class.StartDate), formatDate(e.Class.EndDate)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			course, class, starts, ends, formatDate(e.Enrollment.EnrollmentDate), e.Enrollment.ID)
	}
	return tw.Flush()
}

func renderSession(w io.Writer, s service.State) {
	if s.Class == nil {
		return
	}
	fmt.Fprintf(w, "Class: %s (%s to %s)\n", s.Class.Title, formatDate(s.Class.StartDate), formatDate(s.Class.EndDate))
	fmt.Fprintf(w, "Occupancy: %d/%d\n", s.Occupancy, s.Class.Capacity)
}

// confirm asks a yes/no question; anything but y or yes is a no.
func confirm(in io.Reader, out io.Writer, question string) (bool, error) {
	fmt.Fprintf(out, "%s [y/N] ", question)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}
