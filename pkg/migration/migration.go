// Package migration runs and tracks schema migrations in batches.
//
//	func init() {
//	    migration.Register("20240101000000_create_users_table", &CreateUsersTable{})
//	}
//
//	bazaar migrate            // run all pending
//	bazaar migrate:rollback   // roll back the last batch
package migration

import (
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/shashiranjanraj/bazaar/pkg/logger"
	"gorm.io/gorm"
)

// Migration is the interface every migration implements.
type Migration interface {
	Up(db *gorm.DB) error
	Down(db *gorm.DB) error
}

// Named pairs a migration with its timestamp-prefixed name.
type Named struct {
	Name      string
	Migration Migration
}

type record struct {
	ID    uint      `gorm:"primaryKey;autoIncrement"`
	Name  string    `gorm:"uniqueIndex;size:255;not null"`
	Batch int       `gorm:"not null"`
	RunAt time.Time `gorm:"autoCreateTime"`
}

func (record) TableName() string { return "bazaar_migrations" }

var (
	mu       sync.Mutex
	registry []Named
)

// Register adds a migration to the global registry. Order does not matter:
// pending migrations run sorted by name.
func Register(name string, m Migration) {
	mu.Lock()
	defer mu.Unlock()
	registry = append(registry, Named{Name: name, Migration: m})
}

// Registered returns a copy of the global registry.
func Registered() []Named {
	mu.Lock()
	defer mu.Unlock()
	return append([]Named(nil), registry...)
}

// Runner executes and tracks migrations.
type Runner struct {
	db  *gorm.DB
	out io.Writer
	set []Named
}

// New returns a Runner over the global registry that reports to out.
func New(db *gorm.DB, out io.Writer) *Runner {
	return NewWith(db, out, Registered())
}

func NewWith(db *gorm.DB, out io.Writer, set []Named) *Runner {
	sorted := append([]Named(nil), set...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })
	if out == nil {
		out = io.Discard
	}
	return &Runner{db: db, out: out, set: sorted}
}

func (r *Runner) ensureTable() error {
	if err := r.db.AutoMigrate(&record{}); err != nil {
		return fmt.Errorf("migration: ensure table: %w", err)
	}
	return nil
}

func (r *Runner) ran() (map[string]record, error) {
	var rows []record
	if err := r.db.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]record, len(rows))
	for _, rec := range rows {
		out[rec.Name] = rec
	}
	return out, nil
}

// Pending returns the migrations not yet run, in name order.
func (r *Runner) Pending() ([]Named, error) {
	if err := r.ensureTable(); err != nil {
		return nil, err
	}
	ran, err := r.ran()
	if err != nil {
		return nil, err
	}
	var pending []Named
	for _, n := range r.set {
		if _, ok := ran[n.Name]; !ok {
			pending = append(pending, n)
		}
	}
	return pending, nil
}

// Run executes all pending migrations as one batch.
func (r *Runner) Run() error {
	pending, err := r.Pending()
	if err != nil {
		return fmt.Errorf("migration: fetch pending: %w", err)
	}
	if len(pending) == 0 {
		fmt.Fprintln(r.out, "Nothing to migrate.")
		return nil
	}

	batch, err := r.lastBatch()
	if err != nil {
		return err
	}
	batch++

	for _, n := range pending {
		logger.Info("migration: running", "name", n.Name)
		if err := n.Migration.Up(r.db); err != nil {
			return fmt.Errorf("migration: %s up: %w", n.Name, err)
		}
		if err := r.db.Create(&record{Name: n.Name, Batch: batch}).Error; err != nil {
			return fmt.Errorf("migration: record %s: %w", n.Name, err)
		}
		fmt.Fprintf(r.out, "Migrated:    %s\n", n.Name)
	}

	logger.Info("migration: done", "ran", len(pending), "batch", batch)
	return nil
}

// Rollback reverses every migration of the most recent batch, newest first.
func (r *Runner) Rollback() error {
	if err := r.ensureTable(); err != nil {
		return err
	}
	batch, err := r.lastBatch()
	if err != nil {
		return err
	}
	if batch == 0 {
		fmt.Fprintln(r.out, "Nothing to roll back.")
		return nil
	}

	var rows []record
	if err := r.db.Where("batch = ?", batch).Order("id desc").Find(&rows).Error; err != nil {
		return err
	}

	known := make(map[string]Migration, len(r.set))
	for _, n := range r.set {
		known[n.Name] = n.Migration
	}

	for _, rec := range rows {
		m, ok := known[rec.Name]
		if !ok {
			return fmt.Errorf("migration: cannot roll back %s: not registered", rec.Name)
		}
		logger.Info("migration: rolling back", "name", rec.Name)
		if err := m.Down(r.db); err != nil {
			return fmt.Errorf("migration: %s down: %w", rec.Name, err)
		}
		if err := r.db.Delete(&rec).Error; err != nil {
			return err
		}
		fmt.Fprintf(r.out, "Rolled back: %s\n", rec.Name)
	}
	return nil
}

// Status is one row of migrate:status output. Batch is 0 when pending.
type Status struct {
	Name  string
	Ran   bool
	Batch int
}

func (r *Runner) Status() ([]Status, error) {
	if err := r.ensureTable(); err != nil {
		return nil, err
	}
	ran, err := r.ran()
	if err != nil {
		return nil, err
	}
	out := make([]Status, 0, len(r.set))
	for _, n := range r.set {
		rec, ok := ran[n.Name]
		out = append(out, Status{Name: n.Name, Ran: ok, Batch: rec.Batch})
	}
	return out, nil
}

func (r *Runner) lastBatch() (int, error) {
	var max struct{ Max int }
	err := r.db.Model(&record{}).Select("COALESCE(MAX(batch), 0) AS max").Scan(&max).Error
	if err != nil {
		return 0, fmt.Errorf("migration: last batch: %w", err)
	}
	return max.Max, nil
}
