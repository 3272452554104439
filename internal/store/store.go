// Package store persists instruments, prices and exchange rates in a local
// sqlite database. The resolution pipeline never touches storage itself; this
// package is the collaborator the batch refresh reads instruments from and
// writes results to.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// Instrument is a held instrument as persisted. Identifier is the raw
// identifier string (ISIN, "ISIN:CCC" or synthetic code); Ticker may be
// empty or the "N/A" placeholder when not yet resolved.
type Instrument struct {
	Identifier string
	Ticker     string
	Name       string
}

// Price is one persisted price observation. At most one row exists per
// (identifier, date); inserts replace on conflict.
type Price struct {
	Identifier string
	Date       time.Time
	Value      float64
	Currency   string
}

// ExchangeRate is one persisted currency-pair rate.
type ExchangeRate struct {
	From string
	To   string
	Rate float64
	Date time.Time
}

const schema = `
CREATE TABLE IF NOT EXISTS instruments (
	identifier TEXT PRIMARY KEY,
	ticker     TEXT NOT NULL DEFAULT '',
	name       TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS prices (
	identifier TEXT NOT NULL,
	date       TEXT NOT NULL,
	value      REAL NOT NULL,
	currency   TEXT NOT NULL,
	PRIMARY KEY (identifier, date)
);
CREATE TABLE IF NOT EXISTS exchange_rates (
	from_currency TEXT NOT NULL,
	to_currency   TEXT NOT NULL,
	date          TEXT NOT NULL,
	rate          REAL NOT NULL,
	PRIMARY KEY (from_currency, to_currency, date)
);
`

const dayFormat = "2006-01-02"

// Store is the sqlite-backed persistence layer.
type Store struct {
	db *sql.DB
}

// Open opens (and bootstraps) the database at path. "file:" URIs pass
// through untouched so tests can use in-memory databases.
func Open(path string) (*Store, error) {
	if !strings.HasPrefix(path, "file:") {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve database path: %w", err)
		}
		if err := os.MkdirAll(filepath.Dir(absPath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		path = absPath
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to bootstrap schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// AddInstrument upserts an instrument.
func (s *Store) AddInstrument(inst Instrument) error {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO instruments (identifier, ticker, name) VALUES (?, ?, ?)`,
		inst.Identifier, inst.Ticker, inst.Name)
	return err
}

// GetAllInstruments returns every stored instrument.
func (s *Store) GetAllInstruments() ([]Instrument, error) {
	rows, err := s.db.Query(`SELECT identifier, ticker, name FROM instruments ORDER BY identifier`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Instrument
	for rows.Next() {
		var inst Instrument
		if err := rows.Scan(&inst.Identifier, &inst.Ticker, &inst.Name); err != nil {
			return nil, err
		}
		out = append(out, inst)
	}
	return out, rows.Err()
}

// AddPrice stores a price, replacing any existing row for the same
// (identifier, date).
func (s *Store) AddPrice(p Price) error {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO prices (identifier, date, value, currency) VALUES (?, ?, ?, ?)`,
		p.Identifier, p.Date.UTC().Format(dayFormat), p.Value, p.Currency)
	return err
}

// GetLatestPrice returns the most recent price for an identifier, or nil
// when none is stored.
func (s *Store) GetLatestPrice(id string) (*Price, error) {
	row := s.db.QueryRow(
		`SELECT identifier, date, value, currency FROM prices WHERE identifier = ? ORDER BY date DESC LIMIT 1`, id)

	var p Price
	var day string
	if err := row.Scan(&p.Identifier, &day, &p.Value, &p.Currency); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	date, err := time.Parse(dayFormat, day)
	if err != nil {
		return nil, fmt.Errorf("corrupt date %q for %s: %w", day, id, err)
	}
	p.Date = date
	return &p, nil
}

// AddExchangeRate stores a rate, replacing any existing row for the same
// pair and date.
func (s *Store) AddExchangeRate(r ExchangeRate) error {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO exchange_rates (from_currency, to_currency, date, rate) VALUES (?, ?, ?, ?)`,
		r.From, r.To, r.Date.UTC().Format(dayFormat), r.Rate)
	return err
}
