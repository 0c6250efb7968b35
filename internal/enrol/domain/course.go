package domain

import (
	"slices"
	"time"
)

type Theme string

const (
	ThemeInnovation       Theme = "INNOVATION"
	ThemeTechnology       Theme = "TECHNOLOGY"
	ThemeMarketing        Theme = "MARKETING"
	ThemeEntrepreneurship Theme = "ENTREPRENEURSHIP"
	ThemeAgro             Theme = "AGRO"
)

var Themes = []Theme{ThemeInnovation, ThemeTechnology, ThemeMarketing, ThemeEntrepreneurship, ThemeAgro}

func (t Theme) Valid() bool { return slices.Contains(Themes, t) }

type Course struct {
	ID          string
	Title       string
	Description string
	Themes      []Theme
	ImageURL    string // optional
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// HasAnyTheme reports whether the course carries at least one of themes.
func (c Course) HasAnyTheme(themes []Theme) bool {
	for _, t := range themes {
		if slices.Contains(c.Themes, t) {
			return true
		}
	}
	return false
}

// CourseWithClasses is a catalog row: a course and its available classes.
type CourseWithClasses struct {
	Course
	Classes []Class
}
