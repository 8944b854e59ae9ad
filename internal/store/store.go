package store

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
)

// Store provides access to all storage repositories.
type Store struct {
	db           *sql.DB
	dialect      Dialect
	declarations *DeclarationStore
	companies    *CompanyStore
}

type Option func(*Store)

// WithDialect sets the SQL dialect; DuckDB is the default.
func WithDialect(d Dialect) Option {
	return func(s *Store) {
		s.dialect = d
	}
}

func NewStore(db *sql.DB, opts ...Option) *Store {
	s := &Store{db: db, dialect: DuckDB}
	for _, opt := range opts {
		opt(s)
	}

	qi := newQueryInterceptor(db)
	sb := sq.StatementBuilder.PlaceholderFormat(s.dialect.Placeholder())

	s.declarations = NewDeclarationStore(qi, sb)
	s.companies = NewCompanyStore(qi, sb)
	return s
}

func (s *Store) Declarations() *DeclarationStore {
	return s.declarations
}

func (s *Store) Companies() *CompanyStore {
	return s.companies
}

func (s *Store) Dialect() Dialect {
	return s.dialect
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	return s.db.Close()
}
