package repository

// This file holds the MySQL-backed host directory.  A host row carries its
// precomputed share token so a token lookup is a single query, and its
// statistics as a JSON document the story treats as opaque.

import (
	"context"      // context carries deadlines and cancellation into DB calls
	"database/sql" // sql provides the generic database handle
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/wrapped-story/internal/model"
	"github.com/iliyamo/wrapped-story/internal/utils"
)

// HostRepo encapsulates all queries against the hosts and platform_stats
// tables.  It depends on a *sql.DB configured elsewhere.
type HostRepo struct {
	db *sql.DB // db is the underlying connection pool
}

// NewHostRepo constructs a HostRepo with the provided DB handle.
func NewHostRepo(db *sql.DB) *HostRepo {
	return &HostRepo{db: db}
}

const hostColumns = "id, name, location, stats, created_at"

// Create inserts a host.  The share token is derived from the identifier
// here, so callers never set it.  A zero CreatedAt is replaced with the
// current UTC time.
func (r *HostRepo) Create(ctx context.Context, h *model.Host) error {
	if h.CreatedAt.IsZero() {
		h.CreatedAt = time.Now().UTC().Truncate(time.Second)
	}
	var stats []byte
	if h.Stats != nil {
		b, err := json.Marshal(h.Stats)
		if err != nil {
			return fmt.Errorf("marshal host stats: %w", err)
		}
		stats = b
	}
	const q = "INSERT INTO hosts (id, token, name, location, stats, created_at) VALUES (?, ?, ?, ?, ?, ?)"
	_, err := r.db.ExecContext(ctx, q, h.ID, utils.HostToken(h.ID), h.Name, h.Location, stats, h.CreatedAt)
	return err
}

// Get fetches a host by identifier.  It returns ErrHostNotFound when no row
// matches.
func (r *HostRepo) Get(ctx context.Context, id string) (*model.Host, error) {
	q := "SELECT " + hostColumns + " FROM hosts WHERE id = ?"
	return r.scanOne(r.db.QueryRowContext(ctx, q, id))
}

// FindByToken fetches the oldest host whose share token matches.  Distinct
// identifiers that share their first 8 hex digits collide on the token; the
// earliest row wins so existing links keep pointing at the same host.
func (r *HostRepo) FindByToken(ctx context.Context, token string) (*model.Host, error) {
	q := "SELECT " + hostColumns + " FROM hosts WHERE token = ? ORDER BY created_at, id LIMIT 1"
	return r.scanOne(r.db.QueryRowContext(ctx, q, token))
}

// List returns all hosts ordered by creation time.
func (r *HostRepo) List(ctx context.Context) ([]*model.Host, error) {
	q := "SELECT " + hostColumns + " FROM hosts ORDER BY created_at, id"
	return r.scanMany(ctx, q)
}

// Search returns hosts whose name or location contains q.  An empty q
// returns every host.
func (r *HostRepo) Search(ctx context.Context, q string) ([]*model.Host, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return r.List(ctx)
	}
	like := "%" + strings.ToLower(q) + "%"
	sqlq := "SELECT " + hostColumns + ` FROM hosts
		WHERE LOWER(name) LIKE ? OR LOWER(location) LIKE ?
		ORDER BY created_at, id`
	return r.scanMany(ctx, sqlq, like, like)
}

// Platform returns the most recent year of brand-level statistics.
func (r *HostRepo) Platform(ctx context.Context) (*model.PlatformStats, error) {
	const q = `SELECT year, total_properties_managed, countries_active, platform_global_revenue,
		ai_conversations_handled, total_guests_served
		FROM platform_stats ORDER BY year DESC LIMIT 1`
	var p model.PlatformStats
	err := r.db.QueryRowContext(ctx, q).Scan(&p.Year, &p.TotalPropertiesManaged, &p.CountriesActive,
		&p.PlatformGlobalRevenue, &p.AIConversationsHandled, &p.TotalGuestsServed)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlatformStatsMissing
		}
		return nil, err
	}
	return &p, nil
}

// SavePlatform records the brand-level statistics for p.Year, replacing an
// existing row for the same year.
func (r *HostRepo) SavePlatform(ctx context.Context, p model.PlatformStats) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM platform_stats WHERE year = ?", p.Year); err != nil {
		return err
	}
	const q = `INSERT INTO platform_stats (year, total_properties_managed, countries_active,
		platform_global_revenue, ai_conversations_handled, total_guests_served) VALUES (?, ?, ?, ?, ?, ?)`
	if _, err := tx.ExecContext(ctx, q, p.Year, p.TotalPropertiesManaged, p.CountriesActive,
		p.PlatformGlobalRevenue, p.AIConversationsHandled, p.TotalGuestsServed); err != nil {
		return err
	}
	return tx.Commit()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanHost(s rowScanner) (*model.Host, error) {
	var (
		h     model.Host
		stats []byte
	)
	if err := s.Scan(&h.ID, &h.Name, &h.Location, &stats, &h.CreatedAt); err != nil {
		return nil, err
	}
	if len(stats) > 0 {
		h.Stats = new(model.HostStats)
		if err := json.Unmarshal(stats, h.Stats); err != nil {
			return nil, fmt.Errorf("decode stats for host %s: %w", h.ID, err)
		}
	}
	return &h, nil
}

func (r *HostRepo) scanOne(row *sql.Row) (*model.Host, error) {
	h, err := scanHost(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrHostNotFound
		}
		return nil, err
	}
	return h, nil
}

func (r *HostRepo) scanMany(ctx context.Context, q string, args ...any) ([]*model.Host, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Host
	for rows.Next() {
		h, err := scanHost(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
