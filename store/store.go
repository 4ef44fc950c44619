// Package store is the data-access layer for users and articles.
//
// Every method runs against the *gorm.DB pool handed to New, scoped to the
// caller's context. Multi-row writes run inside one transaction.
package store

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/cppla/inkwell/utils"
)

// MaxPageSize caps Page.Size.
const MaxPageSize = 100

// Page selects a window of an ordered listing. The zero value means everything.
type Page struct {
	Number int
	Size   int
}

func (p Page) normalized() Page {
	if p.Size <= 0 {
		return Page{}
	}
	if p.Size > MaxPageSize {
		p.Size = MaxPageSize
	}
	if p.Number < 1 {
		p.Number = 1
	}
	return p
}

func (p Page) apply(q *gorm.DB) *gorm.DB {
	if p.Size <= 0 {
		return q
	}
	return q.Offset((p.Number - 1) * p.Size).Limit(p.Size)
}

// Options carries the optional collaborators of a Store.
type Options struct {
	Hasher utils.PasswordHasher
	Cache  ListCache
	Logger *zap.Logger
}

// Store implements the user and article operations.
type Store struct {
	db     *gorm.DB
	hasher utils.PasswordHasher
	cache  ListCache
	log    *zap.Logger
}

// New creates a Store. Nil options fall back to plain passwords, no cache and a no-op logger.
func New(db *gorm.DB, opts Options) *Store {
	s := &Store{db: db, hasher: opts.Hasher, cache: opts.Cache, log: opts.Logger}
	if s.hasher == nil {
		s.hasher = utils.PlainHasher{}
	}
	if s.cache == nil {
		s.cache = NopCache{}
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	return s
}

func (s *Store) conn(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

// Ping checks that the pool can reach the database.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return classify(sqlDB.PingContext(ctx), nil)
}
