package lookup

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/lao-tseu-is-alive/go-crisis-flight/pkg/geo"
)

// Store persists capital coordinates in SQLite so repeated runs work offline.
type Store struct {
	conn *sqlx.DB
}

// Values of the missing column.
const (
	rowFound = iota
	rowNoCapital
	rowUnknownCountry
)

type capitalRow struct {
	Country   string  `db:"country"`
	Lon       float64 `db:"lon"`
	Lat       float64 `db:"lat"`
	Missing   int     `db:"missing"`
	FetchedAt string  `db:"fetched_at"`
}

// OpenStore opens or creates a SQLite database at the given path.
func OpenStore(path string) (*Store, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open capital store: %w", err)
	}

	s := &Store{conn: conn}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS capitals (
		country TEXT PRIMARY KEY,
		lon REAL NOT NULL,
		lat REAL NOT NULL,
		missing INTEGER NOT NULL DEFAULT 0,
		fetched_at TEXT NOT NULL
	);
	`
	_, err := s.conn.Exec(schema)
	return err
}

// Get returns the stored capital of country. found is false when nothing is
// stored; a stored negative answer returns ErrNoCapital or ErrUnknownCountry.
func (s *Store) Get(ctx context.Context, country string) (p geo.Point, found bool, err error) {
	var row capitalRow
	err = s.conn.GetContext(ctx, &row, `SELECT country, lon, lat, missing, fetched_at FROM capitals WHERE country = ?`, country)
	if errors.Is(err, sql.ErrNoRows) {
		return geo.Point{}, false, nil
	}
	if err != nil {
		return geo.Point{}, false, fmt.Errorf("read capital of %s: %w", country, err)
	}
	switch row.Missing {
	case rowFound:
	case rowUnknownCountry:
		return geo.Point{}, true, ErrUnknownCountry
	default:
		return geo.Point{}, true, ErrNoCapital
	}
	return geo.Point{Lon: row.Lon, Lat: row.Lat}, true, nil
}

// Put stores (or replaces) the capital of country.
func (s *Store) Put(ctx context.Context, country string, p geo.Point) error {
	return s.upsert(ctx, capitalRow{Country: country, Lon: p.Lon, Lat: p.Lat})
}

// PutMissing records a negative answer. reason is ErrUnknownCountry or
// ErrNoCapital; anything else is stored as ErrNoCapital.
func (s *Store) PutMissing(ctx context.Context, country string, reason error) error {
	missing := rowNoCapital
	if errors.Is(reason, ErrUnknownCountry) {
		missing = rowUnknownCountry
	}
	return s.upsert(ctx, capitalRow{Country: country, Missing: missing})
}

func (s *Store) upsert(ctx context.Context, row capitalRow) error {
	row.FetchedAt = time.Now().UTC().Format(time.RFC3339)
	_, err := s.conn.NamedExecContext(ctx, `
		INSERT INTO capitals (country, lon, lat, missing, fetched_at)
		VALUES (:country, :lon, :lat, :missing, :fetched_at)
		ON CONFLICT(country) DO UPDATE SET
			lon = excluded.lon, lat = excluded.lat,
			missing = excluded.missing, fetched_at = excluded.fetched_at`, row)
	if err != nil {
		return fmt.Errorf("store capital of %s: %w", row.Country, err)
	}
	return nil
}

// Count returns the number of stored answers, negative ones included.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.conn.GetContext(ctx, &n, `SELECT COUNT(*) FROM capitals`); err != nil {
		return 0, err
	}
	return n, nil
}
