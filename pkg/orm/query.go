// Package orm is a thin chainable wrapper over *gorm.DB that adds offset
// pagination in the shape the API returns.
package orm

import (
	"context"
	"math"

	"github.com/shashiranjanraj/bazaar/pkg/database"
	"gorm.io/gorm"
)

// Pagination is the page metadata returned next to paginated items.
type Pagination struct {
	CurrentPage int   `json:"current_page"`
	PerPage     int   `json:"per_page"`
	Total       int64 `json:"total"`
	LastPage    int   `json:"last_page"`
}

type preload struct {
	query string
	args  []interface{}
}

// Query chains gorm calls. Preloads are held back until rows are fetched
// so counts never run them.
type Query struct {
	db       *gorm.DB
	preloads []preload
}

// DB wraps the globally connected database.
func DB() *Query {
	return &Query{db: database.DB}
}

// New wraps db; repositories use it so tests can pass their own handle.
func New(db *gorm.DB) *Query {
	return &Query{db: db}
}

func (q *Query) with(db *gorm.DB) *Query {
	return &Query{db: db, preloads: q.preloads}
}

func (q *Query) WithContext(ctx context.Context) *Query {
	return q.with(q.db.WithContext(ctx))
}

func (q *Query) Model(v interface{}) *Query {
	return q.with(q.db.Model(v))
}

func (q *Query) Where(query interface{}, args ...interface{}) *Query {
	return q.with(q.db.Where(query, args...))
}

func (q *Query) Scopes(fns ...func(*gorm.DB) *gorm.DB) *Query {
	return q.with(q.db.Scopes(fns...))
}

func (q *Query) Order(value interface{}) *Query {
	return q.with(q.db.Order(value))
}

func (q *Query) Preload(query string, args ...interface{}) *Query {
	p := append(append([]preload(nil), q.preloads...), preload{query: query, args: args})
	return &Query{db: q.db, preloads: p}
}

func (q *Query) fetcher() *gorm.DB {
	db := q.db
	for _, p := range q.preloads {
		db = db.Preload(p.query, p.args...)
	}
	return db
}

func (q *Query) Get(dest interface{}) error {
	return q.fetcher().Find(dest).Error
}

func (q *Query) First(dest interface{}) error {
	return q.fetcher().First(dest).Error
}

func (q *Query) Count() (int64, error) {
	var n int64
	err := q.db.Count(&n).Error
	return n, err
}

// GetWithPagination counts the matching rows, then loads page (1-based) of
// perPage rows into dest.
func (q *Query) GetWithPagination(dest interface{}, page, perPage int) (Pagination, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 12
	}

	total, err := q.Count()
	if err != nil {
		return Pagination{}, err
	}

	p := Pagination{
		CurrentPage: page,
		PerPage:     perPage,
		Total:       total,
		LastPage:    int(math.Max(1, math.Ceil(float64(total)/float64(perPage)))),
	}

	err = q.fetcher().
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(dest).Error
	return p, err
}

// Raw exposes the wrapped handle for repository code that needs plain gorm.
func (q *Query) Raw() *gorm.DB {
	return q.db
}
