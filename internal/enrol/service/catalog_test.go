package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/coursedesk/internal/enrol/directory"
	"github.com/aussiebroadwan/coursedesk/internal/enrol/domain"
)

func catalogCourses() []domain.CourseWithClasses {
	mk := func(id, title string, themes ...domain.Theme) domain.CourseWithClasses {
		return domain.CourseWithClasses{Course: domain.Course{ID: id, Title: title, Themes: themes}}
	}
	return []domain.CourseWithClasses{
		mk("c1", "Go Basics", domain.ThemeTechnology),
		mk("c2", "Advanced Go", domain.ThemeTechnology, domain.ThemeInnovation),
		mk("c3", "Growth Marketing", domain.ThemeMarketing),
		mk("c4", "Soil Science", domain.ThemeAgro),
		mk("c5", "Startup Finance", domain.ThemeEntrepreneurship),
		mk("c6", "Precision Farming", domain.ThemeAgro, domain.ThemeTechnology),
		mk("c7", "Brand Strategy", domain.ThemeMarketing),
	}
}

func ids(courses []domain.CourseWithClasses) []string {
	out := make([]string, 0, len(courses))
	for _, c := range courses {
		out = append(out, c.ID)
	}
	return out
}

func TestCoursesWithClasses(t *testing.T) {
	t.Parallel()

	t.Run("joins available classes", func(t *testing.T) {
		store := &MockStore{}
		store.On("ListCourses", mock.Anything, directory.CourseQuery{}).Return([]domain.Course{
			{ID: "c1", Title: "Go Basics"},
			{ID: "c2", Title: "Soil Science"},
		}, nil)
		store.On("ListAvailableClasses", mock.Anything).Return([]domain.Class{
			{ID: "k1", CourseID: "c1"},
			{ID: "k2", CourseID: "c1"},
			{ID: "k3", CourseID: "gone"},
		}, nil)

		svc := &CatalogService{Store: store}
		got, err := svc.CoursesWithClasses(context.Background(), directory.CourseQuery{})
		require.NoError(t, err)
		require.Len(t, got, 2)
		require.Len(t, got[0].Classes, 2)
		require.Empty(t, got[1].Classes)
		store.AssertNumberOfCalls(t, "ListCourses", 1)
		store.AssertNumberOfCalls(t, "ListAvailableClasses", 1)
	})

	t.Run("either failure fails the load", func(t *testing.T) {
		store := &MockStore{}
		store.On("ListCourses", mock.Anything, mock.Anything).Return([]domain.Course(nil), nil)
		store.On("ListAvailableClasses", mock.Anything).Return([]domain.Class(nil), errors.New("boom"))

		_, err := (&CatalogService{Store: store}).CoursesWithClasses(context.Background(), directory.CourseQuery{})
		require.ErrorIs(t, err, ErrTransport)
	})
}

func TestFilterCourses(t *testing.T) {
	t.Parallel()

	all := catalogCourses()

	t.Run("title is a case-insensitive substring", func(t *testing.T) {
		require.Equal(t, []string{"c1", "c2"}, ids(FilterCourses(all, CatalogFilter{Title: " GO "})))
	})

	t.Run("themes match any of", func(t *testing.T) {
		got := FilterCourses(all, CatalogFilter{Themes: []domain.Theme{domain.ThemeAgro, domain.ThemeMarketing}})
		require.Equal(t, []string{"c3", "c4", "c6", "c7"}, ids(got))
	})

	t.Run("title and themes combine", func(t *testing.T) {
		got := FilterCourses(all, CatalogFilter{Title: "farm", Themes: []domain.Theme{domain.ThemeTechnology}})
		require.Equal(t, []string{"c6"}, ids(got))
	})

	t.Run("empty filter keeps everything", func(t *testing.T) {
		require.Len(t, FilterCourses(all, CatalogFilter{}), len(all))
	})
}

func TestPaginate(t *testing.T) {
	t.Parallel()

	items := []int{1, 2, 3, 4, 5, 6, 7}

	p := Paginate(items, 2, 3)
	require.Equal(t, []int{4, 5, 6}, p.Items)
	require.Equal(t, 3, p.TotalPages)
	require.Equal(t, 7, p.TotalItems)

	p = Paginate(items, 9, 3)
	require.Equal(t, 3, p.Page)
	require.Equal(t, []int{7}, p.Items)

	p = Paginate(items, -1, 0)
	require.Equal(t, 1, p.Page)
	require.Equal(t, DefaultPerPage, p.PerPage)
	require.Len(t, p.Items, DefaultPerPage)

	p = Paginate([]int(nil), 3, 6)
	require.Equal(t, 1, p.Page)
	require.Zero(t, p.TotalPages)
	require.Empty(t, p.Items)
}

func TestCatalogBrowser(t *testing.T) {
	t.Parallel()

	t.Run("theme toggles apply at once and reset the page", func(t *testing.T) {
		b := NewCatalogBrowser(catalogCourses(), 2, time.Hour)
		defer b.Close()

		b.SetPage(3)
		require.Equal(t, 3, b.View().Page)

		b.ToggleTheme(domain.ThemeAgro)
		v := b.View()
		require.Equal(t, 1, v.Page)
		require.Equal(t, []string{"c4", "c6"}, ids(v.Items))

		b.ToggleTheme(domain.ThemeAgro)
		require.Equal(t, 7, b.View().TotalItems)
	})

	t.Run("only the settled title is applied", func(t *testing.T) {
		var (
			mu    sync.Mutex
			views []Page[domain.CourseWithClasses]
		)
		b := NewCatalogBrowser(catalogCourses(), 6, 30*time.Millisecond)
		defer b.Close()
		b.OnChange = func(p Page[domain.CourseWithClasses]) {
			mu.Lock()
			defer mu.Unlock()
			views = append(views, p)
		}

		b.SetTitle("g")
		b.SetTitle("go")
		b.SetTitle("go b")
		require.Equal(t, 7, b.View().TotalItems)

		require.Eventually(t, func() bool {
			mu.Lock()
			defer mu.Unlock()
			return len(views) == 1
		}, time.Second, 5*time.Millisecond)

		time.Sleep(60 * time.Millisecond)
		mu.Lock()
		defer mu.Unlock()
		require.Len(t, views, 1)
		require.Equal(t, []string{"c1"}, ids(views[0].Items))
		require.Equal(t, "go b", b.Filter().Title)
	})

	t.Run("clear drops a pending title", func(t *testing.T) {
		b := NewCatalogBrowser(catalogCourses(), 6, 20*time.Millisecond)
		defer b.Close()

		b.ToggleTheme(domain.ThemeMarketing)
		b.SetTitle("brand")
		b.ClearFilters()
		time.Sleep(60 * time.Millisecond)

		require.Equal(t, CatalogFilter{}, b.Filter())
		require.Equal(t, 7, b.View().TotalItems)
	})

	t.Run("per page change returns to the first page", func(t *testing.T) {
		b := NewCatalogBrowser(catalogCourses(), 2, time.Hour)
		defer b.Close()

		b.SetPage(2)
		b.SetPerPage(3)
		v := b.View()
		require.Equal(t, 1, v.Page)
		require.Equal(t, 3, v.TotalPages)
	})

	t.Run("concurrent changes deliver the current page last", func(t *testing.T) {
		b := NewCatalogBrowser(catalogCourses(), 2, time.Millisecond)
		defer b.Close()

		var (
			mu   sync.Mutex
			last Page[domain.CourseWithClasses]
		)
		b.OnChange = func(p Page[domain.CourseWithClasses]) {
			mu.Lock()
			defer mu.Unlock()
			last = p
		}

		for round := range 100 {
			var wg sync.WaitGroup
			for g := range 4 {
				wg.Add(1)
				go func() {
					defer wg.Done()
					for i := range 20 {
						switch (g + i) % 3 {
						case 0:
							b.SetPage(i%4 + 1)
						case 1:
							b.ToggleTheme(domain.ThemeAgro)
						default:
							b.SetPerPage(i%3 + 1)
						}
					}
				}()
			}
			wg.Wait()

			mu.Lock()
			require.Equal(t, b.View(), last, "round %d", round)
			mu.Unlock()
		}
	})
}

func TestDebouncer(t *testing.T) {
	t.Parallel()

	got := make(chan int, 4)
	d := NewDebouncer(20*time.Millisecond, func(v int) { got <- v })

	d.Push(1)
	d.Push(2)
	d.Push(3)
	require.Equal(t, 3, <-got)

	d.Push(4)
	d.Stop()
	time.Sleep(50 * time.Millisecond)
	require.Empty(t, got)
}
