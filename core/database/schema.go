package database

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"log/slog"
	"recbot/core/logger"
)

// baselineDDL mirrors the migrations so a wiped or half-initialized schema
// can be recreated without the migrations directory being present.
const baselineDDL = `
CREATE TABLE IF NOT EXISTS entries (
    id           BIGSERIAL PRIMARY KEY,
    type         TEXT NOT NULL,
    name         TEXT NOT NULL,
    year         INTEGER NOT NULL DEFAULT 0,
    description  TEXT NOT NULL DEFAULT '',
    url          TEXT NOT NULL DEFAULT '',
    image        TEXT NOT NULL DEFAULT '',
    admin_rating DOUBLE PRECISION,
    site_rating  DOUBLE PRECISION
);

CREATE TABLE IF NOT EXISTS genres (
    id   BIGSERIAL PRIMARY KEY,
    name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS entry_genres (
    entry_id BIGINT NOT NULL REFERENCES entries (id) ON DELETE CASCADE,
    genre_id BIGINT NOT NULL REFERENCES genres (id),
    PRIMARY KEY (entry_id, genre_id)
);

CREATE TABLE IF NOT EXISTS viewed (
    user_id  BIGINT NOT NULL,
    entry_id BIGINT NOT NULL REFERENCES entries (id) ON DELETE CASCADE,
    PRIMARY KEY (user_id, entry_id)
);
`

// EnsureSchema applies the baseline DDL. It is the best-effort recovery step
// taken before a failed write is retried.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	start := time.Now()
	_, err := db.ExecContext(ctx, baselineDDL)
	if err != nil {
		logger.DB.Error("schema ensure failed",
			slog.String("event", "db.schema"),
			slog.Duration("duration", logger.Took(start)),
			slog.String("err", err.Error()),
		)
		return err
	}
	logger.DB.Info("schema ensured",
		slog.String("event", "db.schema"),
		slog.Duration("duration", logger.Took(start)),
	)
	return nil
}
