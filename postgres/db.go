package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/beconnected/beconnected"
	"gorm.io/gorm"
)

// A DB builds and runs queries, translating GORM and PostgreSQL errors
// into the web app's sentinel errors.
type DB struct {
	// Some *gorm.DB methods mutate the receiver instead of creating a new instance.
	// Every query building method on DB wraps the *gorm.DB those return,
	// so a *DB is never shared between two queries once a clause is added.
	db *gorm.DB
}

// NewDB constructs a *DB from a *gorm.DB.
func NewDB(db *gorm.DB) *DB { return &DB{db: db} }

// DB exposes the underlying *gorm.DB backing DB.
//
// NB: use in exceptional circumstances only.
func (db *DB) DB() *gorm.DB { return db.db }

// **************************************************************************
// FINISHER METHODS
//
// These methods close out a current query, executing it.
// All finisher methods are terminal and cannot be chained.
// **************************************************************************

// Create inserts value into the database, updating value with data yielding from that insertion.
//
// If value violates a unique constraint defined by the database, ErrExists returns.
func (db *DB) Create(value any) error {
	if db.db.Error != nil {
		return db.db.Error
	}

	err := db.db.Create(value).Error
	switch {
	case err == nil:
		return nil

	case errUniqViolation.MatchString(err.Error()):
		return fmt.Errorf("%w: %s", beconnected.ErrExists, err)

	default:
		return fmt.Errorf("%w: failed creating %T: %s", beconnected.ErrUnexpected, value, err)
	}
}

// Find retrieves all records matching the current query and stores them in dest.
// Finding nothing is not an error.
func (db *DB) Find(dest any) error {
	if db.db.Error != nil {
		return db.db.Error
	}

	err := db.db.Find(dest).Error
	if err != nil && errSQLSyntax.MatchString(err.Error()) {
		return fmt.Errorf("%w: %s", beconnected.ErrNotValid, err)
	}

	if err != nil {
		return fmt.Errorf("%w: %s", beconnected.ErrUnexpected, err)
	}

	return nil
}

// First retrieves a single record from the database matching the query
// and stores it in dest.
//
// If no matches are found, First returns ErrNotExist.
func (db *DB) First(dest any) error {
	if db.db.Error != nil {
		return db.db.Error
	}

	err := db.db.First(dest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %T", beconnected.ErrNotExist, dest)
	}

	if err != nil && errSQLSyntax.MatchString(err.Error()) {
		return fmt.Errorf("%w: %s", beconnected.ErrNotValid, err)
	}

	if err != nil {
		return fmt.Errorf("%w: %s", beconnected.ErrUnexpected, err)
	}

	return nil
}

// **************************************************************************
// QUERY BUILDING METHODS
//
// Query building methods initiate a query and then add clauses to it
// until a finisher method is called.
// **************************************************************************

// Limit applies a LIMIT clause to the current query.
func (db *DB) Limit(limit int) *DB {
	// GORM drops a negative LIMIT; PostgreSQL rejects it. Mirror PostgreSQL.
	if limit < 0 {
		gdb := db.db.Session(&gorm.Session{})
		_ = gdb.AddError(fmt.Errorf("%w: limit must not be negative", beconnected.ErrNotValid))
		return &DB{db: gdb}
	}

	return &DB{db: db.db.Limit(limit)}
}

// Model declares the table used for the query.
func (db *DB) Model(model any) *DB { return &DB{db: db.db.Model(model)} }

// Order applies an ORDER BY clause to the current query.
func (db *DB) Order(order string) *DB { return &DB{db: db.db.Order(order)} }

// Where applies the query fragment to the current query
// as a WHERE or AND clause.
func (db *DB) Where(query any, args ...any) *DB {
	return &DB{db: db.db.Where(query, args...)}
}

// WithContext scopes the query to ctx, cancelling it when ctx is done.
func (db *DB) WithContext(ctx context.Context) *DB {
	return &DB{db: db.db.WithContext(ctx)}
}
