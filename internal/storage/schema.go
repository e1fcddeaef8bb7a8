package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// Migration is one forward schema step, applied in its own transaction.
type Migration struct {
	Version     int
	Description string
	Postgres    []string
	SQLite      []string
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "chart tables",
		Postgres: []string{
			`CREATE TABLE IF NOT EXISTS charts (
        id               BIGSERIAL PRIMARY KEY,
        subject_name     TEXT        NOT NULL DEFAULT '',
        subject_location TEXT        NOT NULL DEFAULT '',
        origin_at        TIMESTAMPTZ NOT NULL,
        chart_type       SMALLINT    NOT NULL,
        created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
    );`,
			`CREATE TABLE IF NOT EXISTS chart_points (
        id                  BIGSERIAL PRIMARY KEY,
        chart_id            BIGINT   NOT NULL REFERENCES charts(id) ON DELETE CASCADE,
        celestial_object_id BIGINT   NOT NULL,
        name                TEXT     NOT NULL,
        sign                SMALLINT NOT NULL,
        degrees             SMALLINT NOT NULL,
        minutes             SMALLINT NOT NULL,
        seconds             SMALLINT NOT NULL,
        category            SMALLINT NOT NULL,
        orientation         SMALLINT NOT NULL,
        draconic            BOOLEAN  NOT NULL DEFAULT FALSE,
        allowable_orb       TEXT     NOT NULL
    );`,
			`CREATE INDEX IF NOT EXISTS chart_points_chart_idx ON chart_points (chart_id);`,
			`CREATE TABLE IF NOT EXISTS chart_angles (
        id       BIGSERIAL PRIMARY KEY,
        chart_id BIGINT   NOT NULL REFERENCES charts(id) ON DELETE CASCADE,
        angle_id SMALLINT NOT NULL,
        sign     SMALLINT NOT NULL,
        degrees  SMALLINT NOT NULL,
        minutes  SMALLINT NOT NULL,
        seconds  SMALLINT NOT NULL,
        UNIQUE (chart_id, angle_id)
    );`,
			`CREATE TABLE IF NOT EXISTS chart_cusps (
        id              BIGSERIAL PRIMARY KEY,
        chart_id        BIGINT   NOT NULL REFERENCES charts(id) ON DELETE CASCADE,
        house_system_id INTEGER  NOT NULL,
        house           SMALLINT NOT NULL,
        sign            SMALLINT NOT NULL,
        degrees         SMALLINT NOT NULL,
        minutes         SMALLINT NOT NULL,
        seconds         SMALLINT NOT NULL,
        UNIQUE (chart_id, house_system_id, house)
    );`,
		},
		SQLite: []string{
			`CREATE TABLE IF NOT EXISTS charts (
        id               INTEGER PRIMARY KEY AUTOINCREMENT,
        subject_name     TEXT    NOT NULL DEFAULT '',
        subject_location TEXT    NOT NULL DEFAULT '',
        origin_at        TEXT    NOT NULL,
        chart_type       INTEGER NOT NULL,
        created_at       TEXT    NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
    );`,
			`CREATE TABLE IF NOT EXISTS chart_points (
        id                  INTEGER PRIMARY KEY AUTOINCREMENT,
        chart_id            INTEGER NOT NULL REFERENCES charts(id) ON DELETE CASCADE,
        celestial_object_id INTEGER NOT NULL,
        name                TEXT    NOT NULL,
        sign                INTEGER NOT NULL,
        degrees             INTEGER NOT NULL,
        minutes             INTEGER NOT NULL,
        seconds             INTEGER NOT NULL,
        category            INTEGER NOT NULL,
        orientation         INTEGER NOT NULL,
        draconic            BOOLEAN NOT NULL DEFAULT 0,
        allowable_orb       TEXT    NOT NULL
    );`,
			`CREATE INDEX IF NOT EXISTS chart_points_chart_idx ON chart_points (chart_id);`,
			`CREATE TABLE IF NOT EXISTS chart_angles (
        id       INTEGER PRIMARY KEY AUTOINCREMENT,
        chart_id INTEGER NOT NULL REFERENCES charts(id) ON DELETE CASCADE,
        angle_id INTEGER NOT NULL,
        sign     INTEGER NOT NULL,
        degrees  INTEGER NOT NULL,
        minutes  INTEGER NOT NULL,
        seconds  INTEGER NOT NULL,
        UNIQUE (chart_id, angle_id)
    );`,
			`CREATE TABLE IF NOT EXISTS chart_cusps (
        id              INTEGER PRIMARY KEY AUTOINCREMENT,
        chart_id        INTEGER NOT NULL REFERENCES charts(id) ON DELETE CASCADE,
        house_system_id INTEGER NOT NULL,
        house           INTEGER NOT NULL,
        sign            INTEGER NOT NULL,
        degrees         INTEGER NOT NULL,
        minutes         INTEGER NOT NULL,
        seconds         INTEGER NOT NULL,
        UNIQUE (chart_id, house_system_id, house)
    );`,
		},
	},
	{
		Version:     2,
		Description: "transit notices",
		Postgres: []string{
			`CREATE TABLE IF NOT EXISTS transit_notices (
        id               BIGSERIAL PRIMARY KEY,
        natal_chart_id   BIGINT      NOT NULL,
        transit_chart_id BIGINT      NOT NULL,
        natal_point      TEXT        NOT NULL,
        transit_point    TEXT        NOT NULL,
        aspect_id        SMALLINT    NOT NULL,
        orb              TEXT        NOT NULL,
        created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
        UNIQUE (natal_chart_id, transit_chart_id, natal_point, transit_point, aspect_id)
    );`,
			`CREATE INDEX IF NOT EXISTS transit_notices_created_idx ON transit_notices (created_at);`,
		},
		SQLite: []string{
			`CREATE TABLE IF NOT EXISTS transit_notices (
        id               INTEGER PRIMARY KEY AUTOINCREMENT,
        natal_chart_id   INTEGER NOT NULL,
        transit_chart_id INTEGER NOT NULL,
        natal_point      TEXT    NOT NULL,
        transit_point    TEXT    NOT NULL,
        aspect_id        INTEGER NOT NULL,
        orb              TEXT    NOT NULL,
        created_at       TEXT    NOT NULL,
        UNIQUE (natal_chart_id, transit_chart_id, natal_point, transit_point, aspect_id)
    );`,
			`CREATE INDEX IF NOT EXISTS transit_notices_created_idx ON transit_notices (created_at);`,
		},
	},
}

// Migrations lists the schema steps in version order.
func Migrations() []Migration {
	out := make([]Migration, len(migrations))
	copy(out, migrations)
	return out
}

// migrateSQLite applies pending steps using PRAGMA user_version as the cursor.
func migrateSQLite(ctx context.Context, db *sql.DB) error {
	var current int
	if err := db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&current); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	for _, m := range migrations {
		if m.Version <= current {
			continue
		}
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", m.Version, err)
		}
		for _, stmt := range m.SQLite {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("migration %d (%s): %w", m.Version, m.Description, err)
			}
		}
		// PRAGMA does not accept bound parameters.
		if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", m.Version)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("set schema version %d: %w", m.Version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.Version, err)
		}
	}
	return nil
}
