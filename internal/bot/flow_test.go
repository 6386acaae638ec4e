package bot

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coreconfig "recbot/core/config"
	"recbot/core/logger"
	"recbot/internal/catalog"
	"recbot/internal/nav"

	tele "gopkg.in/telebot.v4"
)

// TestMain initializes the global logger that production wiring (core/bootstrap)
// always sets up before TelegramRunOptions is reachable; without it the
// package-level component loggers are nil and logging call sites panic.
func TestMain(m *testing.M) {
	if err := logger.InitLogger(nil); err != nil {
		fmt.Fprintln(os.Stderr, "init logger:", err)
		os.Exit(1)
	}
	os.Exit(m.Run())
}

const (
	adminID = int64(1)
	userID  = int64(42)
	chatID  = int64(42)
)

// sentMsg records one outbound message for assertions.
type sentMsg struct {
	handle nav.Handle
	text   string
	markup *tele.ReplyMarkup
	photo  bool
}

type editRec struct {
	handle nav.Handle
	text   string
}

type fakeTransport struct {
	nextID    int
	sent      []sentMsg
	edits     []editRec
	deleted   []nav.Handle
	notices   []string
	failPhoto bool
}

func (t *fakeTransport) Send(ctx context.Context, chat int64, text string, markup *tele.ReplyMarkup) (nav.Handle, error) {
	t.nextID++
	h := nav.Handle{ChatID: chat, MessageID: t.nextID}
	t.sent = append(t.sent, sentMsg{handle: h, text: text, markup: markup})
	return h, nil
}

func (t *fakeTransport) SendPhoto(ctx context.Context, chat int64, photoURL, caption string, markup *tele.ReplyMarkup) (nav.Handle, error) {
	if t.failPhoto {
		return nav.Handle{}, fmt.Errorf("photo rejected")
	}
	t.nextID++
	h := nav.Handle{ChatID: chat, MessageID: t.nextID, HasMedia: true}
	t.sent = append(t.sent, sentMsg{handle: h, text: caption, markup: markup, photo: true})
	return h, nil
}

func (t *fakeTransport) Edit(ctx context.Context, h nav.Handle, text string, markup *tele.ReplyMarkup) error {
	t.edits = append(t.edits, editRec{handle: h, text: text})
	return nil
}

func (t *fakeTransport) Delete(ctx context.Context, h nav.Handle) error {
	t.deleted = append(t.deleted, h)
	return nil
}

func (t *fakeTransport) Notify(ctx context.Context, chat int64, text string) error {
	t.notices = append(t.notices, text)
	return nil
}

func (t *fakeTransport) lastText() string {
	if len(t.sent) == 0 {
		return ""
	}
	return t.sent[len(t.sent)-1].text
}

// fakeStore is an in-memory catalog with the same filter semantics as the
// SQL engine: genre conjunction plus the optional viewed restriction.
type fakeStore struct {
	entries  []catalog.Entry
	genres   map[int64][]string
	viewed   map[[2]int64]bool
	genreIDs map[string]int64
	inserts  int
	failAll  bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		genres:   make(map[int64][]string),
		viewed:   make(map[[2]int64]bool),
		genreIDs: make(map[string]int64),
	}
}

func (s *fakeStore) add(id int64, cat catalog.Category, name string, year int, genres ...string) {
	s.entries = append(s.entries, catalog.Entry{ID: id, Type: cat, Name: name, Year: year})
	s.genres[id] = genres
	for _, g := range genres {
		s.ensureGenre(g)
	}
}

func (s *fakeStore) ensureGenre(name string) int64 {
	if id, ok := s.genreIDs[name]; ok {
		return id
	}
	id := int64(len(s.genreIDs) + 1)
	s.genreIDs[name] = id
	return id
}

func (s *fakeStore) matches(e *catalog.Entry, cat catalog.Category, genres []string, viewedOnly bool, user int64) bool {
	if e.Type != cat {
		return false
	}
	have := make(map[string]bool, len(s.genres[e.ID]))
	for _, g := range s.genres[e.ID] {
		have[g] = true
	}
	for _, g := range genres {
		if !have[g] {
			return false
		}
	}
	if viewedOnly && !s.viewed[[2]int64{user, e.ID}] {
		return false
	}
	return true
}

func (s *fakeStore) CountFiltered(ctx context.Context, cat catalog.Category, genres []string, viewedOnly bool, user int64) int {
	return len(s.SelectFiltered(ctx, cat, genres, viewedOnly, user))
}

func (s *fakeStore) AvailableGenres(ctx context.Context, cat catalog.Category, genres []string, viewedOnly bool, user int64) []string {
	set := make(map[string]bool)
	for i := range s.entries {
		if s.matches(&s.entries[i], cat, genres, viewedOnly, user) {
			for _, g := range s.genres[s.entries[i].ID] {
				set[g] = true
			}
		}
	}
	out := make([]string, 0, len(set))
	for g := range set {
		out = append(out, g)
	}
	sort.Strings(out)
	return out
}

func (s *fakeStore) CategoryGenres(ctx context.Context, cat catalog.Category) []string {
	return s.AvailableGenres(ctx, cat, nil, false, 0)
}

func (s *fakeStore) SelectFiltered(ctx context.Context, cat catalog.Category, genres []string, viewedOnly bool, user int64) []catalog.Entry {
	if s.failAll {
		return nil
	}
	var out []catalog.Entry
	for i := range s.entries {
		if s.matches(&s.entries[i], cat, genres, viewedOnly, user) {
			out = append(out, s.entries[i])
		}
	}
	return out
}

func (s *fakeStore) EntryGenres(ctx context.Context, entryID int64) []string {
	return s.genres[entryID]
}

func (s *fakeStore) IsViewed(ctx context.Context, user, entryID int64) bool {
	return s.viewed[[2]int64{user, entryID}]
}

func (s *fakeStore) InsertEntry(ctx context.Context, draft *catalog.Draft) (int64, error) {
	if s.failAll {
		return 0, catalog.ErrStorageUnavailable
	}
	s.inserts++
	id := int64(1000 + s.inserts)
	s.entries = append(s.entries, catalog.Entry{
		ID: id, Type: draft.Type, Name: draft.Name, Year: draft.Year,
		Description: draft.Description, URL: draft.URL, Image: draft.Image,
		AdminRating: &draft.AdminRating, SiteRating: &draft.SiteRating,
	})
	s.genres[id] = draft.Genres
	for _, g := range draft.Genres {
		s.ensureGenre(g)
	}
	return id, nil
}

func (s *fakeStore) UpdateField(ctx context.Context, entryID int64, field catalog.Field, value any) error {
	if s.failAll {
		return catalog.ErrStorageUnavailable
	}
	for i := range s.entries {
		if s.entries[i].ID != entryID {
			continue
		}
		switch field {
		case catalog.FieldName:
			s.entries[i].Name = value.(string)
		case catalog.FieldYear:
			s.entries[i].Year = value.(int)
		}
		return nil
	}
	return nil
}

func (s *fakeStore) ReplaceGenres(ctx context.Context, entryID int64, genres []string) error {
	s.genres[entryID] = genres
	for _, g := range genres {
		s.ensureGenre(g)
	}
	return nil
}

func (s *fakeStore) DeleteEntry(ctx context.Context, entryID int64) error {
	if s.failAll {
		return catalog.ErrStorageUnavailable
	}
	for i := range s.entries {
		if s.entries[i].ID == entryID {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			break
		}
	}
	delete(s.genres, entryID)
	return nil
}

func (s *fakeStore) RecordView(ctx context.Context, user, entryID int64) error {
	s.viewed[[2]int64{user, entryID}] = true
	return nil
}

func (s *fakeStore) ClearView(ctx context.Context, user, entryID int64) error {
	delete(s.viewed, [2]int64{user, entryID})
	return nil
}

func newTestApp(store *fakeStore) (*App, *fakeTransport) {
	cfg := &AppConfig{
		Config: coreconfig.Config{
			Bot: coreconfig.BotConfig{AdminIDs: []int64{adminID}, PageSize: 5},
		},
	}
	tr := &fakeTransport{}
	a := New(cfg, store)
	a.SetTransport(tr)
	return a, tr
}

func seededStore() *fakeStore {
	s := newFakeStore()
	for i := 1; i <= 20; i++ {
		genres := []string{"comedy"}
		if i <= 6 {
			genres = []string{"drama", "thriller"}
		}
		s.add(int64(i), catalog.CategoryFilms, fmt.Sprintf("Film %d", i), 1990+i, genres...)
	}
	return s
}

func TestBrowseEndToEnd(t *testing.T) {
	store := seededStore()
	a, tr := newTestApp(store)
	ctx := context.Background()

	a.showCategories(ctx, userID, chatID)
	a.chooseCategory(ctx, userID, chatID, catalog.CategoryFilms)
	require.Contains(t, tr.lastText(), "20 found")

	a.toggleGenre(ctx, userID, chatID, catalog.CategoryFilms, "drama")
	require.NotEmpty(t, tr.edits)
	assert.Contains(t, tr.edits[len(tr.edits)-1].text, "6 found")

	a.applyFilter(ctx, userID, chatID, catalog.CategoryFilms)
	sess := a.sessions.Get(userID)
	require.Len(t, sess.Results, 6)
	assert.Equal(t, 2, sess.TotalPages(a.pageSize))
	assert.Equal(t, 0, sess.Page)
	// Five cards plus the footer on page one.
	assert.Contains(t, tr.lastText(), "Page 1 of 2")

	a.gotoPage(ctx, userID, chatID, catalog.CategoryFilms, 1)
	assert.Equal(t, 1, sess.Page)
	assert.Len(t, sess.PageSlice(a.pageSize), 1)
	assert.Contains(t, tr.lastText(), "Page 2 of 2")

	a.backToGenres(ctx, userID, chatID, catalog.CategoryFilms)
	assert.Contains(t, tr.lastText(), "drama")
	assert.True(t, sess.Filter(catalog.CategoryFilms).HasGenre("drama"))
}

func TestNarrowingNeverGrowsCount(t *testing.T) {
	store := seededStore()
	ctx := context.Background()

	base := store.CountFiltered(ctx, catalog.CategoryFilms, nil, false, userID)
	one := store.CountFiltered(ctx, catalog.CategoryFilms, []string{"drama"}, false, userID)
	two := store.CountFiltered(ctx, catalog.CategoryFilms, []string{"drama", "thriller"}, false, userID)

	assert.GreaterOrEqual(t, base, one)
	assert.GreaterOrEqual(t, one, two)
}

func TestPageRequestOutOfRangeIsClamped(t *testing.T) {
	store := newFakeStore()
	for i := 1; i <= 12; i++ {
		store.add(int64(i), catalog.CategoryBooks, fmt.Sprintf("Book %d", i), 2000+i, "fantasy")
	}
	a, _ := newTestApp(store)
	ctx := context.Background()

	a.chooseCategory(ctx, userID, chatID, catalog.CategoryBooks)
	a.applyFilter(ctx, userID, chatID, catalog.CategoryBooks)

	sess := a.sessions.Get(userID)
	require.Equal(t, 3, sess.TotalPages(a.pageSize))

	a.gotoPage(ctx, userID, chatID, catalog.CategoryBooks, 3)
	assert.Equal(t, 2, sess.Page)

	a.gotoPage(ctx, userID, chatID, catalog.CategoryBooks, -1)
	assert.Equal(t, 0, sess.Page)
}

func TestToggleViewEditsCardInPlace(t *testing.T) {
	store := seededStore()
	a, tr := newTestApp(store)
	ctx := context.Background()

	a.chooseCategory(ctx, userID, chatID, catalog.CategoryFilms)
	a.applyFilter(ctx, userID, chatID, catalog.CategoryFilms)

	sess := a.sessions.Get(userID)
	handles := sess.Stack.Current()
	firstCard := handles[0]
	depth := sess.Stack.Depth()
	sentBefore := len(tr.sent)

	a.toggleView(ctx, userID, chatID, catalog.CategoryFilms, sess.Results[0].ID)

	assert.True(t, store.IsViewed(ctx, userID, sess.Results[0].ID))
	assert.Equal(t, depth, sess.Stack.Depth())
	assert.Len(t, tr.sent, sentBefore, "no messages re-sent on a view toggle")
	require.NotEmpty(t, tr.edits)
	last := tr.edits[len(tr.edits)-1]
	assert.Equal(t, firstCard, last.handle)
	assert.Contains(t, last.text, viewedMark)

	a.toggleView(ctx, userID, chatID, catalog.CategoryFilms, sess.Results[0].ID)
	assert.False(t, store.IsViewed(ctx, userID, sess.Results[0].ID))
}

func TestViewToggleRestoresViewedCount(t *testing.T) {
	store := seededStore()
	ctx := context.Background()

	before := store.CountFiltered(ctx, catalog.CategoryFilms, nil, true, userID)
	require.NoError(t, store.RecordView(ctx, userID, 3))
	require.NoError(t, store.ClearView(ctx, userID, 3))
	after := store.CountFiltered(ctx, catalog.CategoryFilms, nil, true, userID)

	assert.Equal(t, before, after)
}

func TestDeleteEntryShrinksAndClamps(t *testing.T) {
	store := newFakeStore()
	for i := 1; i <= 6; i++ {
		store.add(int64(i), catalog.CategoryFilms, fmt.Sprintf("Film %d", i), 2000, "drama")
	}
	a, _ := newTestApp(store)
	ctx := context.Background()

	a.chooseCategory(ctx, adminID, chatID, catalog.CategoryFilms)
	a.applyFilter(ctx, adminID, chatID, catalog.CategoryFilms)

	sess := a.sessions.Get(adminID)
	a.gotoPage(ctx, adminID, chatID, catalog.CategoryFilms, 1)
	require.Equal(t, 1, sess.Page)

	a.deleteEntry(ctx, adminID, chatID, catalog.CategoryFilms, 6)

	assert.Len(t, sess.Results, 5)
	assert.Equal(t, 0, sess.Page, "page clamped after the last page emptied")
	assert.Len(t, store.SelectFiltered(ctx, catalog.CategoryFilms, nil, false, adminID), 5)
}

func TestStartWipesSessionAndDrainsStack(t *testing.T) {
	store := seededStore()
	a, tr := newTestApp(store)
	ctx := context.Background()

	a.showCategories(ctx, userID, chatID)
	a.chooseCategory(ctx, userID, chatID, catalog.CategoryFilms)
	a.toggleGenre(ctx, userID, chatID, catalog.CategoryFilms, "drama")
	require.Equal(t, 1, a.sessions.Get(userID).Stack.Depth())

	a.start(ctx, userID, chatID)

	sess := a.sessions.Get(userID)
	assert.Equal(t, 0, sess.Stack.Depth())
	assert.False(t, sess.Filter(catalog.CategoryFilms).HasGenre("drama"))
	assert.Len(t, tr.deleted, 2)
}

func TestAddFlow(t *testing.T) {
	store := newFakeStore()
	store.add(1, catalog.CategoryFilms, "Old", 1990, "drama")
	a, tr := newTestApp(store)
	ctx := context.Background()

	a.showAdminPanel(ctx, adminID, chatID)
	a.startAddFlow(ctx, adminID, chatID)
	a.chooseAddType(ctx, adminID, chatID, catalog.CategoryFilms)
	require.True(t, a.InProgress(adminID))

	steps := []string{"X", "1999", "A film", "https://example.org/x", "", "7,5", "8.2"}
	for _, reply := range steps {
		a.handleAddReply(ctx, adminID, chatID, reply)
	}
	a.handleAddReply(ctx, adminID, chatID, "drama, thriller")

	require.False(t, a.InProgress(adminID))
	require.Equal(t, 1, store.inserts)

	added := store.entries[len(store.entries)-1]
	assert.Equal(t, "X", added.Name)
	assert.Equal(t, 1999, added.Year)
	require.NotNil(t, added.AdminRating)
	assert.InDelta(t, 7.5, *added.AdminRating, 0.001)
	require.NotNil(t, added.SiteRating)
	assert.InDelta(t, 8.2, *added.SiteRating, 0.001)
	assert.Equal(t, []string{"drama", "thriller"}, store.genres[added.ID])
	// "drama" existed before the insert; no second row appears.
	assert.Len(t, store.genreIDs, 2)

	require.NotEmpty(t, tr.notices)
	assert.Contains(t, tr.notices[len(tr.notices)-1], "Added")
}

func TestAddFlowRepromptsOnBadYear(t *testing.T) {
	store := newFakeStore()
	a, tr := newTestApp(store)
	ctx := context.Background()

	a.startAddFlow(ctx, adminID, chatID)
	a.chooseAddType(ctx, adminID, chatID, catalog.CategorySeries)
	a.handleAddReply(ctx, adminID, chatID, "Show")

	a.handleAddReply(ctx, adminID, chatID, "next year")
	assert.Contains(t, tr.lastText(), "not a year")
	assert.Equal(t, 0, store.inserts)

	sess := a.sessions.Get(adminID)
	require.NotNil(t, sess.Pending)
	assert.Zero(t, sess.Pending.Year, "invalid input must not advance the flow")

	a.handleAddReply(ctx, adminID, chatID, "2012")
	assert.Equal(t, 2012, sess.Pending.Year)
}

func TestAddFlowCancelLeavesNoTrace(t *testing.T) {
	store := newFakeStore()
	a, _ := newTestApp(store)
	ctx := context.Background()

	a.startAddFlow(ctx, adminID, chatID)
	a.chooseAddType(ctx, adminID, chatID, catalog.CategoryBooks)
	a.handleAddReply(ctx, adminID, chatID, "Partial")

	a.cancelAddFlow(ctx, adminID, chatID)

	sess := a.sessions.Get(adminID)
	assert.False(t, a.InProgress(adminID))
	assert.Nil(t, sess.Pending)
	assert.Equal(t, 0, store.inserts)
}

func TestEditFlowUpdatesYearAndRerenders(t *testing.T) {
	store := seededStore()
	a, tr := newTestApp(store)
	ctx := context.Background()

	a.chooseCategory(ctx, adminID, chatID, catalog.CategoryFilms)
	a.applyFilter(ctx, adminID, chatID, catalog.CategoryFilms)

	sess := a.sessions.Get(adminID)
	target := sess.Results[0].ID

	a.startEditFlow(ctx, adminID, chatID, catalog.CategoryFilms, target)
	a.chooseEditField(ctx, adminID, chatID, catalog.FieldYear)
	require.True(t, a.InProgress(adminID))

	a.handleEditReply(ctx, adminID, chatID, "1984")

	assert.False(t, a.InProgress(adminID))
	assert.Equal(t, 1984, sess.Results[0].Year)

	var stored catalog.Entry
	for _, e := range store.entries {
		if e.ID == target {
			stored = e
		}
	}
	assert.Equal(t, 1984, stored.Year)

	found := false
	for _, m := range tr.sent {
		if strings.Contains(m.text, "(1984)") {
			found = true
		}
	}
	assert.True(t, found, "results page re-rendered with the new year")
}

func TestEditFlowCancelKeepsResults(t *testing.T) {
	store := seededStore()
	a, _ := newTestApp(store)
	ctx := context.Background()

	a.chooseCategory(ctx, adminID, chatID, catalog.CategoryFilms)
	a.applyFilter(ctx, adminID, chatID, catalog.CategoryFilms)

	sess := a.sessions.Get(adminID)
	yearBefore := sess.Results[0].Year
	depth := sess.Stack.Depth()

	a.startEditFlow(ctx, adminID, chatID, catalog.CategoryFilms, sess.Results[0].ID)
	a.cancelEditFlow(ctx, adminID, chatID)

	assert.False(t, a.InProgress(adminID))
	assert.Equal(t, yearBefore, sess.Results[0].Year)
	assert.Equal(t, depth, sess.Stack.Depth())
}

func TestStorageFailureSurfacesNotice(t *testing.T) {
	store := seededStore()
	a, tr := newTestApp(store)
	ctx := context.Background()

	a.chooseCategory(ctx, adminID, chatID, catalog.CategoryFilms)
	a.applyFilter(ctx, adminID, chatID, catalog.CategoryFilms)

	store.failAll = true
	sess := a.sessions.Get(adminID)
	before := len(sess.Results)

	a.deleteEntry(ctx, adminID, chatID, catalog.CategoryFilms, sess.Results[0].ID)

	assert.Len(t, sess.Results, before, "cache untouched when the write fails")
	require.NotEmpty(t, tr.notices)
	assert.Contains(t, tr.notices[len(tr.notices)-1], "unavailable")
}

func TestRecommendationsReentryReplacesScreens(t *testing.T) {
	store := seededStore()
	a, tr := newTestApp(store)
	ctx := context.Background()

	a.showCategories(ctx, userID, chatID)
	a.chooseCategory(ctx, userID, chatID, catalog.CategoryFilms)
	a.applyFilter(ctx, userID, chatID, catalog.CategoryFilms)

	sess := a.sessions.Get(userID)
	require.Equal(t, 1, sess.Stack.Depth())
	onScreen := len(sess.Stack.Current())
	deletedBefore := len(tr.deleted)

	a.dispatchMenuLabel(ctx, userID, chatID, labelRecommendations)

	assert.Equal(t, 1, sess.Stack.Depth(), "reentry replaces the screens instead of stacking them")
	assert.Len(t, tr.deleted, deletedBefore+onScreen, "every message of the drained screen is deleted")
	assert.Equal(t, renderCategoryPrompt(), tr.lastText())
}

func TestMainMenuLabelResetsSession(t *testing.T) {
	store := seededStore()
	a, tr := newTestApp(store)
	ctx := context.Background()

	a.showCategories(ctx, userID, chatID)
	a.chooseCategory(ctx, userID, chatID, catalog.CategoryFilms)
	a.toggleGenre(ctx, userID, chatID, catalog.CategoryFilms, "drama")

	a.dispatchMenuLabel(ctx, userID, chatID, labelMainMenu)

	sess := a.sessions.Get(userID)
	assert.Equal(t, 0, sess.Stack.Depth())
	assert.False(t, sess.Filter(catalog.CategoryFilms).HasGenre("drama"))

	require.NotEmpty(t, tr.sent)
	last := tr.sent[len(tr.sent)-1]
	assert.Equal(t, renderWelcome(), last.text)

	found := false
	for _, row := range last.markup.ReplyKeyboard {
		for _, btn := range row {
			if btn.Text == labelMainMenu {
				found = true
			}
		}
	}
	assert.True(t, found, "the persistent keyboard carries the main menu label")
}

func TestViewToggleSkipsCardWithoutMessage(t *testing.T) {
	store := newFakeStore()
	store.add(1, catalog.CategoryFilms, "Film 1", 2001, "drama")
	store.add(2, catalog.CategoryFilms, "Film 2", 2002, "drama")
	store.add(3, catalog.CategoryFilms, "Film 3", 2003, "drama")
	store.entries[0].Image = "https://example.org/poster.jpg"

	a, tr := newTestApp(store)
	tr.failPhoto = true
	ctx := context.Background()

	a.chooseCategory(ctx, userID, chatID, catalog.CategoryFilms)
	a.applyFilter(ctx, userID, chatID, catalog.CategoryFilms)

	// The first card never went out; two cards plus the footer are up.
	sess := a.sessions.Get(userID)
	require.Len(t, sess.Stack.Current(), 3)

	a.toggleView(ctx, userID, chatID, catalog.CategoryFilms, 1)
	assert.True(t, store.IsViewed(ctx, userID, 1))
	assert.Empty(t, tr.edits, "no message exists for the failed card")

	a.toggleView(ctx, userID, chatID, catalog.CategoryFilms, 2)
	require.Len(t, tr.edits, 1)

	var want nav.Handle
	for _, m := range tr.sent {
		if strings.Contains(m.text, "Film 2") {
			want = m.handle
		}
	}
	assert.Equal(t, want, tr.edits[0].handle, "the edit lands on that entry's own card")
}

func TestAdminVerbsGatedAtRegistry(t *testing.T) {
	a, _ := newTestApp(seededStore())
	opts, err := a.TelegramRunOptions()
	require.NoError(t, err)

	adminVerbs := []string{actDelete, actEdit, actEditField, actEditCancel, actAdmin, actAddType, actAddCancel}
	for _, verb := range adminVerbs {
		cb, ok := opts.Registry.GetCallback(verb)
		require.True(t, ok, verb)
		assert.True(t, cb.AdminOnly, verb)
	}

	openVerbs := []string{actCategory, actGenre, actShow, actPage, actView, actBack}
	for _, verb := range openVerbs {
		cb, ok := opts.Registry.GetCallback(verb)
		require.True(t, ok, verb)
		assert.False(t, cb.AdminOnly, verb)
	}
}
