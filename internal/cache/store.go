// Package cache implements a persistent, cross-run analysis cache: a
// database/sql-backed store keyed by a procedure's address and a content
// hash of its RTL stream, holding the decompilation status and proven_true
// facts a prior run reached for it. A session consults the cache before
// redoing the expensive fixed-point passes (dominators, phi placement, SSA
// renaming) for a procedure whose RTLs haven't changed since the last run.
//
// A caller-chosen (dbType, dsn) pair selects the driver; the connection is
// pinged once up front and the pool is tuned for a long-lived process.
package cache

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/denisenkom/go-mssqldb"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"

	"decomp/internal/errs"
	"decomp/internal/ir"
	"decomp/internal/proc"
	"decomp/internal/xmlio"
)

// Store is a handle on the analysis cache's backing database.
type Store struct {
	db       *sql.DB
	numbered bool // true for drivers (lib/pq) that want $1, $2, ... placeholders
}

// driverFor maps a caller-facing database type name to the registered
// database/sql driver name.
func driverFor(dbType string) (driver string, numbered bool, err error) {
	switch dbType {
	case "sqlite", "":
		return "sqlite", false, nil
	case "sqlite3":
		return "sqlite3", false, nil
	case "postgres", "postgresql":
		return "postgres", true, nil
	case "mysql":
		return "mysql", false, nil
	case "mssql", "sqlserver":
		return "sqlserver", false, nil
	default:
		return "", false, fmt.Errorf("unsupported cache database type: %s", dbType)
	}
}

// Open connects to dsn under dbType ("sqlite" if dbType is empty), verifies
// the connection, and ensures the cache's schema exists.
func Open(dbType, dsn string) (*Store, error) {
	driver, numbered, err := driverFor(dbType)
	if err != nil {
		return nil, errs.Load(dsn, "%v", err)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, errs.IO(dsn, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errs.IO(dsn, err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	s := &Store{db: db, numbered: numbered}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS analysis_cache (
		proc_addr  INTEGER NOT NULL,
		rtl_hash   TEXT    NOT NULL,
		status     INTEGER NOT NULL,
		facts      BLOB,
		updated_at INTEGER NOT NULL,
		PRIMARY KEY (proc_addr, rtl_hash)
	)`)
	if err != nil {
		return errs.IO("analysis_cache", err)
	}
	return nil
}

// Close releases the underlying database connection.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return errs.IO("cache", err)
	}
	return nil
}

// Entry is one cached analysis result.
type Entry struct {
	Status proc.Status
	Facts  []proc.Fact
}

// rewrite converts a query written with '?' placeholders into the '$1',
// '$2', ... form lib/pq requires; every other driver this package wires
// (sqlite, mysql, mssql's sqlserver driver) accepts '?' directly.
func (s *Store) rewrite(query string) string {
	if !s.numbered {
		return query
	}
	var sb strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&sb, "$%d", n)
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// Put records the analysis result of the procedure at addr for the given RTL hash,
// replacing any prior entry at the same (addr, rtlHash) key.
func (s *Store) Put(addr ir.Addr, rtlHash string, status proc.Status, facts []proc.Fact) error {
	blob, err := xmlio.MarshalFacts(facts)
	if err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return errs.IO(addr.String(), err)
	}

	if _, err := tx.Exec(s.rewrite(`DELETE FROM analysis_cache WHERE proc_addr = ? AND rtl_hash = ?`),
		uint64(addr), rtlHash); err != nil {
		tx.Rollback()
		return errs.IO(addr.String(), err)
	}

	if _, err := tx.Exec(s.rewrite(`INSERT INTO analysis_cache (proc_addr, rtl_hash, status, facts, updated_at)
		VALUES (?, ?, ?, ?, ?)`),
		uint64(addr), rtlHash, int(status), blob, time.Now().Unix()); err != nil {
		tx.Rollback()
		return errs.IO(addr.String(), err)
	}

	if err := tx.Commit(); err != nil {
		return errs.IO(addr.String(), err)
	}
	return nil
}

// Get looks up the cached result for addr at rtlHash. ok is false if
// nothing is cached for that exact (addr, rtlHash) pair -- a changed RTL
// hash is a cache miss, not an error.
func (s *Store) Get(addr ir.Addr, rtlHash string) (entry Entry, ok bool, err error) {
	row := s.db.QueryRow(s.rewrite(`SELECT status, facts FROM analysis_cache WHERE proc_addr = ? AND rtl_hash = ?`),
		uint64(addr), rtlHash)

	var status int
	var blob []byte
	if err := row.Scan(&status, &blob); err != nil {
		if err == sql.ErrNoRows {
			return Entry{}, false, nil
		}
		return Entry{}, false, errs.IO(addr.String(), err)
	}

	facts, err := xmlio.UnmarshalFacts(blob)
	if err != nil {
		return Entry{}, false, err
	}
	return Entry{Status: proc.Status(status), Facts: facts}, true, nil
}

// Forget removes every cached entry for addr, regardless of rtl hash; used
// when a procedure is re-decoded from scratch and any hash it might match
// next time is unknown yet.
func (s *Store) Forget(addr ir.Addr) error {
	if _, err := s.db.Exec(s.rewrite(`DELETE FROM analysis_cache WHERE proc_addr = ?`), uint64(addr)); err != nil {
		return errs.IO(addr.String(), err)
	}
	return nil
}
