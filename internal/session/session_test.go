package session

import (
	"reflect"
	"testing"

	"recbot/internal/catalog"
)

func TestToggleGenreIsAnInvolution(t *testing.T) {
	f := NewFilter()
	f.ToggleGenre("drama")
	if !f.HasGenre("drama") {
		t.Fatal("expected drama selected after first toggle")
	}
	f.ToggleGenre("drama")
	if f.HasGenre("drama") {
		t.Fatal("expected drama deselected after second toggle")
	}
	if got := f.Genres(); len(got) != 0 {
		t.Fatalf("expected empty selection, got %v", got)
	}
}

func TestGenresSorted(t *testing.T) {
	f := NewFilter()
	for _, g := range []string{"thriller", "comedy", "drama"} {
		f.ToggleGenre(g)
	}
	want := []string{"comedy", "drama", "thriller"}
	if got := f.Genres(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Genres() = %v, want %v", got, want)
	}
}

func TestFiltersAreIndependentPerCategory(t *testing.T) {
	sess := newSession()
	sess.Filter(catalog.CategoryFilms).ToggleGenre("drama")
	sess.Filter(catalog.CategoryBooks).ViewedOnly = true

	if sess.Filter(catalog.CategoryBooks).HasGenre("drama") {
		t.Fatal("genre selection leaked across categories")
	}
	if sess.Filter(catalog.CategoryFilms).ViewedOnly {
		t.Fatal("viewed flag leaked across categories")
	}
}

func entries(n int) []catalog.Entry {
	out := make([]catalog.Entry, n)
	for i := range out {
		out[i] = catalog.Entry{ID: int64(i + 1)}
	}
	return out
}

func TestPagination(t *testing.T) {
	sess := newSession()
	sess.SetResults(entries(12))

	if got := sess.TotalPages(5); got != 3 {
		t.Fatalf("TotalPages(5) = %d, want 3", got)
	}
	if got := len(sess.PageSlice(5)); got != 5 {
		t.Fatalf("page 0 size = %d, want 5", got)
	}
	sess.Page = 2
	if got := len(sess.PageSlice(5)); got != 2 {
		t.Fatalf("last page size = %d, want 2", got)
	}
}

func TestClampPageAfterShrink(t *testing.T) {
	sess := newSession()
	sess.SetResults(entries(6))
	sess.Page = 1

	sess.RemoveResult(6)
	sess.ClampPage(5)
	if sess.Page != 0 {
		t.Fatalf("Page = %d after shrink, want 0", sess.Page)
	}

	sess.SetResults(nil)
	sess.ClampPage(5)
	if sess.Page != 0 || sess.TotalPages(5) != 0 {
		t.Fatalf("empty results: Page=%d pages=%d", sess.Page, sess.TotalPages(5))
	}
}

func TestFindAndRemoveResult(t *testing.T) {
	sess := newSession()
	sess.SetResults(entries(3))

	if e := sess.FindResult(2); e == nil || e.ID != 2 {
		t.Fatalf("FindResult(2) = %v", e)
	}
	sess.RemoveResult(2)
	if e := sess.FindResult(2); e != nil {
		t.Fatal("entry still present after RemoveResult")
	}
	if len(sess.Results) != 2 {
		t.Fatalf("len(Results) = %d, want 2", len(sess.Results))
	}
}

func TestStoreGetAndReset(t *testing.T) {
	store := NewStore()

	a := store.Get(1)
	if a != store.Get(1) {
		t.Fatal("Get returned a different session for the same user")
	}
	a.State = StateAddName
	a.Filter(catalog.CategoryFilms).ToggleGenre("drama")

	b := store.Reset(1)
	if b == a {
		t.Fatal("Reset returned the old session")
	}
	if b.InFlow() {
		t.Fatal("fresh session reports a flow in progress")
	}
	if b.Filter(catalog.CategoryFilms).HasGenre("drama") {
		t.Fatal("fresh session kept the old filter")
	}
	if store.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", store.Len())
	}
}
