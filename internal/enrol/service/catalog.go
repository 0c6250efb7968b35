package service

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/aussiebroadwan/coursedesk/internal/enrol/directory"
	"github.com/aussiebroadwan/coursedesk/internal/enrol/domain"
)

const (
	DefaultPerPage       = 6
	DefaultTitleDebounce = 300 * time.Millisecond
)

// CatalogFilter narrows the catalog locally. Themes match any-of.
type CatalogFilter struct {
	Title  string
	Themes []domain.Theme
}

func (f CatalogFilter) match(c domain.Course) bool {
	if title := strings.TrimSpace(f.Title); title != "" &&
		!strings.Contains(strings.ToLower(c.Title), strings.ToLower(title)) {
		return false
	}
	return len(f.Themes) == 0 || c.HasAnyTheme(f.Themes)
}

// FilterCourses keeps the courses matching f, in order.
func FilterCourses(courses []domain.CourseWithClasses, f CatalogFilter) []domain.CourseWithClasses {
	out := make([]domain.CourseWithClasses, 0, len(courses))
	for _, c := range courses {
		if f.match(c.Course) {
			out = append(out, c)
		}
	}
	return out
}

type CatalogService struct {
	Store directory.Store
}

// CoursesWithClasses returns every course with its AVAILABLE classes
// attached. q is passed to the store as server-side filters.
func (s *CatalogService) CoursesWithClasses(ctx context.Context, q directory.CourseQuery) ([]domain.CourseWithClasses, error) {
	var (
		courses []domain.Course
		classes []domain.Class
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		courses, err = s.Store.Courses().ListCourses(gctx, q)
		return err
	})
	g.Go(func() (err error) {
		classes, err = s.Store.Classes().ListAvailableClasses(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, storeErr("load catalog", err)
	}

	byCourse := make(map[string][]domain.Class, len(courses))
	for _, c := range classes {
		byCourse[c.CourseID] = append(byCourse[c.CourseID], c)
	}
	out := make([]domain.CourseWithClasses, 0, len(courses))
	for _, c := range courses {
		out = append(out, domain.CourseWithClasses{Course: c, Classes: byCourse[c.ID]})
	}
	return out, nil
}

// Page is one page of a paginated listing. Page is 1-based.
type Page[T any] struct {
	Items      []T
	Page       int
	PerPage    int
	TotalItems int
	TotalPages int
}

// Paginate slices items into pages of perPage, clamping page into range.
func Paginate[T any](items []T, page, perPage int) Page[T] {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	total := len(items)
	pages := (total + perPage - 1) / perPage
	page = max(1, min(page, pages))

	start := min((page-1)*perPage, total)
	end := min(start+perPage, total)
	return Page[T]{
		Items:      slices.Clone(items[start:end]),
		Page:       page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: pages,
	}
}

// CatalogBrowser holds a loaded catalog plus the current filter and page.
// Theme and page changes apply at once; title changes apply after the
// debounce period. Any filter change returns to the first page.
type CatalogBrowser struct {
	// OnChange receives the visible page after every applied change. It
	// must not call methods that change the browser.
	OnChange func(Page[domain.CourseWithClasses])

	mu      sync.Mutex
	all     []domain.CourseWithClasses
	shown   []domain.CourseWithClasses
	filter  CatalogFilter
	page    int
	perPage int
	title   *Debouncer[string]

	seq       uint64
	notifyMu  sync.Mutex
	delivered uint64 // guarded by notifyMu
}

func NewCatalogBrowser(courses []domain.CourseWithClasses, perPage int, debounce time.Duration) *CatalogBrowser {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	if debounce <= 0 {
		debounce = DefaultTitleDebounce
	}
	b := &CatalogBrowser{
		all:     courses,
		shown:   courses,
		page:    1,
		perPage: perPage,
	}
	b.title = NewDebouncer(debounce, b.applyTitle)
	return b
}

// View returns the current page.
func (b *CatalogBrowser) View() Page[domain.CourseWithClasses] {
	b.mu.Lock()
	defer b.mu.Unlock()
	return Paginate(b.shown, b.page, b.perPage)
}

// Filter returns the applied filter.
func (b *CatalogBrowser) Filter() CatalogFilter {
	b.mu.Lock()
	defer b.mu.Unlock()
	return CatalogFilter{Title: b.filter.Title, Themes: slices.Clone(b.filter.Themes)}
}

// SetTitle schedules a title filter change.
func (b *CatalogBrowser) SetTitle(title string) { b.title.Push(title) }

func (b *CatalogBrowser) applyTitle(title string) {
	b.update(func() { b.filter.Title = title })
}

// ToggleTheme adds theme to the filter, or removes it when present.
func (b *CatalogBrowser) ToggleTheme(theme domain.Theme) {
	b.update(func() {
		if i := slices.Index(b.filter.Themes, theme); i >= 0 {
			b.filter.Themes = slices.Delete(b.filter.Themes, i, i+1)
			return
		}
		b.filter.Themes = append(b.filter.Themes, theme)
	})
}

// ClearFilters drops every filter, including a pending title change.
func (b *CatalogBrowser) ClearFilters() {
	b.title.Stop()
	b.update(func() { b.filter = CatalogFilter{} })
}

func (b *CatalogBrowser) SetPage(page int) {
	b.mu.Lock()
	b.page = page
	b.publishUnlock()
}

// SetPerPage changes the page size and returns to the first page.
func (b *CatalogBrowser) SetPerPage(perPage int) {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	b.mu.Lock()
	b.perPage = perPage
	b.page = 1
	b.publishUnlock()
}

// Close stops any pending title change.
func (b *CatalogBrowser) Close() { b.title.Stop() }

func (b *CatalogBrowser) update(fn func()) {
	b.mu.Lock()
	fn()
	b.shown = FilterCourses(b.all, b.filter)
	b.page = 1
	b.publishUnlock()
}

// publishUnlock releases the lock and hands the current page to OnChange.
// A page older than one already handed out is dropped.
func (b *CatalogBrowser) publishUnlock() {
	view := Paginate(b.shown, b.page, b.perPage)
	b.page = view.Page
	b.seq++
	seq := b.seq
	b.mu.Unlock()

	if b.OnChange == nil {
		return
	}
	b.notifyMu.Lock()
	defer b.notifyMu.Unlock()
	if seq <= b.delivered {
		return
	}
	b.delivered = seq
	b.OnChange(view)
}
