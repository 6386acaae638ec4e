package bot

import (
	"context"

	"recbot/internal/catalog"
)

// CatalogStore is the slice of the catalog repository the flows consume.
// *catalog.Repository satisfies it.
type CatalogStore interface {
	CountFiltered(ctx context.Context, category catalog.Category, genres []string, viewedOnly bool, userID int64) int
	AvailableGenres(ctx context.Context, category catalog.Category, genres []string, viewedOnly bool, userID int64) []string
	CategoryGenres(ctx context.Context, category catalog.Category) []string
	SelectFiltered(ctx context.Context, category catalog.Category, genres []string, viewedOnly bool, userID int64) []catalog.Entry
	EntryGenres(ctx context.Context, entryID int64) []string
	IsViewed(ctx context.Context, userID, entryID int64) bool

	InsertEntry(ctx context.Context, draft *catalog.Draft) (int64, error)
	UpdateField(ctx context.Context, entryID int64, field catalog.Field, value any) error
	ReplaceGenres(ctx context.Context, entryID int64, genres []string) error
	DeleteEntry(ctx context.Context, entryID int64) error
	RecordView(ctx context.Context, userID, entryID int64) error
	ClearView(ctx context.Context, userID, entryID int64) error
}

var _ CatalogStore = (*catalog.Repository)(nil)
