package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// schema creates the tables HostRepo reads.  The statements stay within the
// SQL subset MySQL and SQLite share so tests can run them in memory.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS hosts (
		id         VARCHAR(36)  NOT NULL PRIMARY KEY,
		token      CHAR(6)      NOT NULL,
		name       VARCHAR(255) NOT NULL,
		location   VARCHAR(255) NOT NULL DEFAULT '',
		stats      TEXT,
		created_at DATETIME     NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS platform_stats (
		year                     INT    NOT NULL PRIMARY KEY,
		total_properties_managed INT    NOT NULL,
		countries_active         INT    NOT NULL,
		platform_global_revenue  DOUBLE NOT NULL,
		ai_conversations_handled BIGINT NOT NULL,
		total_guests_served      BIGINT NOT NULL
	)`,
}

// EnsureSchema creates any missing tables.  Statements run one at a time
// because the MySQL driver rejects multi-statement Exec by default.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// Seed inserts the sample hosts and platform figures when the hosts table
// is empty.  It reports whether anything was written.
func Seed(ctx context.Context, r *HostRepo) (bool, error) {
	hosts, err := r.List(ctx)
	if err != nil {
		return false, fmt.Errorf("seed: %w", err)
	}
	if len(hosts) > 0 {
		return false, nil
	}
	for _, h := range SampleHosts() {
		if err := r.Create(ctx, h); err != nil {
			return false, fmt.Errorf("seed host %s: %w", h.ID, err)
		}
	}
	if err := r.SavePlatform(ctx, SamplePlatformStats()); err != nil {
		return false, fmt.Errorf("seed platform: %w", err)
	}
	return true, nil
}
