// Package session holds the per-user conversation state that must survive
// across independent incoming events: filter selections, the cached result
// page, the display stack, and the step of any multi-step flow in progress.
package session

import (
	"sort"

	"recbot/internal/catalog"
	"recbot/internal/nav"
)

// FlowState identifies the step a user's multi-step flow is waiting on.
type FlowState string

const (
	// StateIdle indicates no flow is awaiting a text reply.
	StateIdle FlowState = "idle"

	// Data-entry flow steps. The entry type is chosen via a button before
	// the first text step.
	StateAddName        FlowState = "add_name"
	StateAddYear        FlowState = "add_year"
	StateAddDescription FlowState = "add_description"
	StateAddURL         FlowState = "add_url"
	StateAddImage       FlowState = "add_image"
	StateAddAdminRating FlowState = "add_admin_rating"
	StateAddSiteRating  FlowState = "add_site_rating"
	StateAddGenres      FlowState = "add_genres"

	// StateEditValue awaits the replacement value for a chosen field.
	StateEditValue FlowState = "edit_value"
)

// Filter is the per-category filter state: a toggleable genre set plus the
// viewed-only flag.
type Filter struct {
	genres     map[string]struct{}
	ViewedOnly bool
}

// NewFilter returns an empty filter.
func NewFilter() *Filter {
	return &Filter{genres: make(map[string]struct{})}
}

// ToggleGenre flips membership of the genre: present is removed, absent is
// added.
func (f *Filter) ToggleGenre(name string) {
	if _, ok := f.genres[name]; ok {
		delete(f.genres, name)
		return
	}
	f.genres[name] = struct{}{}
}

// HasGenre reports whether the genre is currently selected.
func (f *Filter) HasGenre(name string) bool {
	_, ok := f.genres[name]
	return ok
}

// Genres returns the selected genre names, sorted.
func (f *Filter) Genres() []string {
	out := make([]string, 0, len(f.genres))
	for g := range f.genres {
		out = append(out, g)
	}
	sort.Strings(out)
	return out
}

// EditTarget identifies the entry field an edit step is about to overwrite.
type EditTarget struct {
	EntryID  int64
	Category catalog.Category
	Field    catalog.Field
}

// Session is the state of one user. It is owned by a Store and must only be
// touched from the single in-flight event of that user.
type Session struct {
	State    FlowState
	Category catalog.Category
	filters  map[catalog.Category]*Filter

	// Results is the snapshot of the last executed query; Page indexes
	// into it in fixed-size chunks.
	Results []catalog.Entry
	Page    int

	// Cards maps an entry id to the message currently displaying its card,
	// rebuilt on every page render. An entry whose card failed to send has
	// no mapping.
	Cards map[int64]nav.Handle

	Pending *catalog.Draft
	Edit    *EditTarget

	Stack nav.Stack
}

func newSession() *Session {
	return &Session{
		State:   StateIdle,
		filters: make(map[catalog.Category]*Filter),
	}
}

// Filter returns the filter state of the category, creating an empty one the
// first time the category is touched.
func (s *Session) Filter(category catalog.Category) *Filter {
	if s.filters == nil {
		s.filters = make(map[catalog.Category]*Filter)
	}
	f, ok := s.filters[category]
	if !ok {
		f = NewFilter()
		s.filters[category] = f
	}
	return f
}

// SetResults replaces the cached snapshot and resets the page cursor. The
// card mapping is dropped; it belongs to the page render.
func (s *Session) SetResults(entries []catalog.Entry) {
	s.Results = entries
	s.Page = 0
	s.Cards = nil
}

// TotalPages returns the number of result pages for the given page size.
func (s *Session) TotalPages(pageSize int) int {
	if pageSize <= 0 || len(s.Results) == 0 {
		return 0
	}
	return (len(s.Results) + pageSize - 1) / pageSize
}

// ClampPage forces the page cursor back into the valid range, which can be
// left behind by deletions shrinking the cache.
func (s *Session) ClampPage(pageSize int) {
	total := s.TotalPages(pageSize)
	if total == 0 {
		s.Page = 0
		return
	}
	if s.Page >= total {
		s.Page = total - 1
	}
	if s.Page < 0 {
		s.Page = 0
	}
}

// PageSlice returns the cached entries of the current page.
func (s *Session) PageSlice(pageSize int) []catalog.Entry {
	if pageSize <= 0 {
		return nil
	}
	start := s.Page * pageSize
	if start >= len(s.Results) {
		return nil
	}
	end := start + pageSize
	if end > len(s.Results) {
		end = len(s.Results)
	}
	return s.Results[start:end]
}

// FindResult returns the cached copy of the entry, or nil.
func (s *Session) FindResult(entryID int64) *catalog.Entry {
	for i := range s.Results {
		if s.Results[i].ID == entryID {
			return &s.Results[i]
		}
	}
	return nil
}

// RemoveResult drops the entry from the cached snapshot.
func (s *Session) RemoveResult(entryID int64) {
	for i := range s.Results {
		if s.Results[i].ID == entryID {
			s.Results = append(s.Results[:i], s.Results[i+1:]...)
			return
		}
	}
}

// InFlow reports whether a multi-step flow is awaiting a text reply.
func (s *Session) InFlow() bool {
	return s.State != StateIdle
}
