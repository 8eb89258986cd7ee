// Package seeders fills a fresh database with demo data.
//
// A seeder registers itself from init():
//
//	func init() {
//	    seeders.Register("marketplace", SeedMarketplace)
//	}
//
// and runs with `bazaar seed`.
package seeders

import (
	"fmt"
	"io"
	"sync"

	"gorm.io/gorm"
)

// SeederFunc is the signature for a seed function.
type SeederFunc func(db *gorm.DB) error

type seederEntry struct {
	name string
	fn   SeederFunc
}

var (
	mu      sync.Mutex
	entries []seederEntry
)

// Register adds a seeder to the global registry.
func Register(name string, fn SeederFunc) {
	mu.Lock()
	defer mu.Unlock()
	entries = append(entries, seederEntry{name: name, fn: fn})
}

// RunAll executes every registered seeder in registration order, each in
// its own transaction. It stops on the first error.
func RunAll(db *gorm.DB, out io.Writer) error {
	mu.Lock()
	current := append([]seederEntry(nil), entries...)
	mu.Unlock()

	if out == nil {
		out = io.Discard
	}
	if len(current) == 0 {
		fmt.Fprintln(out, "  (no seeders registered)")
		return nil
	}

	for _, e := range current {
		fmt.Fprintf(out, "  • Running seeder: %s … ", e.name)
		if err := db.Transaction(e.fn); err != nil {
			fmt.Fprintln(out, "FAILED")
			return fmt.Errorf("seeder %q: %w", e.name, err)
		}
		fmt.Fprintln(out, "done")
	}
	return nil
}
