package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"log/slog"
	"recbot/core/database"
	"recbot/core/logger"
)

// Repository implements the catalog query engine over a relational store.
// Reads degrade to empty results on storage failure; writes are retried once
// after a best-effort schema re-initialization before giving up.
type Repository struct {
	db *sqlx.DB
}

// NewRepository wraps an open database handle.
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// CountFiltered returns how many entries of category carry every genre in
// genres and, when viewedOnly is set, sit in the user's viewed set.
func (r *Repository) CountFiltered(ctx context.Context, category Category, genres []string, viewedOnly bool, userID int64) int {
	query, args := buildFilter("COUNT(id)", category, genres, viewedOnly, userID)

	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		r.logReadFailure(ctx, "count_filtered", category, err)
		return 0
	}
	return count
}

// AvailableGenres returns the sorted distinct genre names still attached to
// at least one entry satisfying the filter. Genres already selected remain in
// the result so their toggle buttons stay visible.
func (r *Repository) AvailableGenres(ctx context.Context, category Category, genres []string, viewedOnly bool, userID int64) []string {
	query, args := buildAvailableGenres(category, genres, viewedOnly, userID)

	var names []string
	if err := r.db.SelectContext(ctx, &names, query, args...); err != nil {
		r.logReadFailure(ctx, "available_genres", category, err)
		return nil
	}
	return names
}

// CategoryGenres returns every genre name ever used within the category,
// sorted. Shown as a hint while creating a new entry.
func (r *Repository) CategoryGenres(ctx context.Context, category Category) []string {
	const query = `SELECT DISTINCT g.name FROM genres g
		JOIN entry_genres eg ON g.id = eg.genre_id
		JOIN entries e ON e.id = eg.entry_id
		WHERE e.type = $1 ORDER BY g.name`

	var names []string
	if err := r.db.SelectContext(ctx, &names, query, string(category)); err != nil {
		r.logReadFailure(ctx, "category_genres", category, err)
		return nil
	}
	return names
}

// SelectFiltered fetches the full rows matching the same predicate as
// CountFiltered. The caller caches the snapshot; there is no subscription.
func (r *Repository) SelectFiltered(ctx context.Context, category Category, genres []string, viewedOnly bool, userID int64) []Entry {
	query, args := buildFilter(
		"id, type, name, year, description, url, image, admin_rating, site_rating",
		category, genres, viewedOnly, userID,
	)
	query += " ORDER BY id"

	var entries []Entry
	if err := r.db.SelectContext(ctx, &entries, query, args...); err != nil {
		r.logReadFailure(ctx, "select_filtered", category, err)
		return nil
	}
	return entries
}

// EntryGenres returns the genre names linked to a single entry.
func (r *Repository) EntryGenres(ctx context.Context, entryID int64) []string {
	const query = `SELECT g.name FROM genres g
		JOIN entry_genres eg ON g.id = eg.genre_id
		WHERE eg.entry_id = $1 ORDER BY g.name`

	var names []string
	if err := r.db.SelectContext(ctx, &names, query, entryID); err != nil {
		r.logReadFailure(ctx, "entry_genres", "", err)
		return nil
	}
	return names
}

// IsViewed reports whether the user has marked the entry as seen.
func (r *Repository) IsViewed(ctx context.Context, userID, entryID int64) bool {
	const query = `SELECT EXISTS (SELECT 1 FROM viewed WHERE user_id = $1 AND entry_id = $2)`

	var viewed bool
	if err := r.db.GetContext(ctx, &viewed, query, userID, entryID); err != nil {
		r.logReadFailure(ctx, "is_viewed", "", err)
		return false
	}
	return viewed
}

// InsertEntry stores the draft and links its genres, creating genre rows as
// needed. A failure after the entry row is inserted leaves an orphaned entry,
// which is an accepted degraded state rather than a corruption.
func (r *Repository) InsertEntry(ctx context.Context, draft *Draft) (int64, error) {
	const insert = `INSERT INTO entries (type, name, year, description, url, image, admin_rating, site_rating)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`

	var entryID int64
	err := r.withWriteRetry(ctx, "insert_entry", func() error {
		return r.db.GetContext(ctx, &entryID, insert,
			string(draft.Type), draft.Name, draft.Year, draft.Description,
			draft.URL, draft.Image, draft.AdminRating, draft.SiteRating,
		)
	})
	if err != nil {
		return 0, err
	}

	for _, genre := range draft.Genres {
		genreID, err := r.EnsureGenre(ctx, genre)
		if err != nil {
			return 0, err
		}
		if err := r.linkGenre(ctx, entryID, genreID); err != nil {
			return 0, err
		}
	}
	return entryID, nil
}

// UpdateField overwrites a single scalar column of an entry. Genre updates go
// through ReplaceGenres instead.
func (r *Repository) UpdateField(ctx context.Context, entryID int64, field Field, value any) error {
	if field == FieldGenres {
		return fmt.Errorf("update_field: genres must be replaced via ReplaceGenres")
	}
	if _, err := ParseField(string(field)); err != nil {
		return fmt.Errorf("update_field: %w", err)
	}

	query := fmt.Sprintf("UPDATE entries SET %s = $1 WHERE id = $2", string(field))
	return r.withWriteRetry(ctx, "update_field", func() error {
		_, err := r.db.ExecContext(ctx, query, value, entryID)
		return err
	})
}

// ReplaceGenres drops the entry's genre links and relinks the given names.
func (r *Repository) ReplaceGenres(ctx context.Context, entryID int64, genres []string) error {
	err := r.withWriteRetry(ctx, "clear_genres", func() error {
		_, err := r.db.ExecContext(ctx, `DELETE FROM entry_genres WHERE entry_id = $1`, entryID)
		return err
	})
	if err != nil {
		return err
	}
	for _, genre := range genres {
		genreID, err := r.EnsureGenre(ctx, genre)
		if err != nil {
			return err
		}
		if err := r.linkGenre(ctx, entryID, genreID); err != nil {
			return err
		}
	}
	return nil
}

// DeleteEntry removes the entry; genre links and viewed marks cascade.
func (r *Repository) DeleteEntry(ctx context.Context, entryID int64) error {
	return r.withWriteRetry(ctx, "delete_entry", func() error {
		_, err := r.db.ExecContext(ctx, `DELETE FROM entries WHERE id = $1`, entryID)
		return err
	})
}

// RecordView marks an entry as seen by the user. Re-marking is a no-op.
func (r *Repository) RecordView(ctx context.Context, userID, entryID int64) error {
	return r.withWriteRetry(ctx, "record_view", func() error {
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO viewed (user_id, entry_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			userID, entryID,
		)
		return err
	})
}

// ClearView removes the user's viewed mark. Clearing an absent mark is a no-op.
func (r *Repository) ClearView(ctx context.Context, userID, entryID int64) error {
	return r.withWriteRetry(ctx, "clear_view", func() error {
		_, err := r.db.ExecContext(ctx,
			`DELETE FROM viewed WHERE user_id = $1 AND entry_id = $2`,
			userID, entryID,
		)
		return err
	})
}

// EnsureGenre returns the id of the named genre, creating the row on first use.
func (r *Repository) EnsureGenre(ctx context.Context, name string) (int64, error) {
	const query = `INSERT INTO genres (name) VALUES ($1)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id`

	var genreID int64
	err := r.withWriteRetry(ctx, "ensure_genre", func() error {
		return r.db.GetContext(ctx, &genreID, query, name)
	})
	if err != nil {
		return 0, err
	}
	return genreID, nil
}

func (r *Repository) linkGenre(ctx context.Context, entryID, genreID int64) error {
	return r.withWriteRetry(ctx, "link_genre", func() error {
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO entry_genres (entry_id, genre_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			entryID, genreID,
		)
		return err
	})
}

// withWriteRetry runs fn, and on failure re-applies the baseline schema and
// retries once before surfacing ErrStorageUnavailable.
func (r *Repository) withWriteRetry(ctx context.Context, op string, fn func() error) error {
	start := time.Now()
	err := fn()
	if err == nil {
		return nil
	}

	logger.Catalog.Warn("write failed, reinitializing schema",
		slog.String("event", "write.retry"),
		slog.String("action", op),
		slog.String("err", err.Error()),
	)
	if schemaErr := database.EnsureSchema(ctx, r.db); schemaErr != nil {
		logger.Catalog.Warn("schema reinit failed",
			slog.String("event", "write.retry"),
			slog.String("action", op),
			slog.String("err", schemaErr.Error()),
		)
	}

	if err = fn(); err != nil {
		logger.Catalog.Error("write failed after retry",
			slog.String("event", "write.fail"),
			slog.String("action", op),
			slog.Duration("duration", logger.Took(start)),
			slog.String("err", err.Error()),
		)
		return fmt.Errorf("%s: %w", op, ErrStorageUnavailable)
	}
	return nil
}

func (r *Repository) logReadFailure(ctx context.Context, op string, category Category, err error) {
	attrs := []slog.Attr{
		slog.String("event", "read.degraded"),
		slog.String("action", op),
		slog.String("err", err.Error()),
	}
	if category != "" {
		attrs = append(attrs, slog.String("category", string(category)))
	}
	logger.LogEvent(ctx, logger.Catalog, slog.LevelError, "", attrs...)
}
