package migration

import (
	"bytes"
	"testing"

	"github.com/shashiranjanraj/bazaar/pkg/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type note struct {
	ID   uint
	Body string
}

type createNotes struct{}

func (createNotes) Up(db *gorm.DB) error   { return db.AutoMigrate(&note{}) }
func (createNotes) Down(db *gorm.DB) error { return db.Migrator().DropTable(&note{}) }

type addIndex struct{}

func (addIndex) Up(db *gorm.DB) error {
	return db.Exec("CREATE INDEX idx_notes_body ON notes(body)").Error
}
func (addIndex) Down(db *gorm.DB) error { return db.Exec("DROP INDEX idx_notes_body").Error }

func openDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open("sqlite", ":memory:")
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

func TestRunAndRollback(t *testing.T) {
	db := openDB(t)
	out := &bytes.Buffer{}
	set := []Named{
		{Name: "20240101000001_add_index", Migration: addIndex{}},
		{Name: "20240101000000_create_notes", Migration: createNotes{}},
	}
	r := NewWith(db, out, set)

	require.NoError(t, r.Run())
	assert.True(t, db.Migrator().HasTable(&note{}))
	assert.Contains(t, out.String(), "Migrated:    20240101000000_create_notes")

	status, err := r.Status()
	require.NoError(t, err)
	require.Len(t, status, 2)
	assert.True(t, status[0].Ran)
	assert.Equal(t, 1, status[1].Batch)

	require.NoError(t, r.Run())
	assert.Contains(t, out.String(), "Nothing to migrate.")

	require.NoError(t, r.Rollback())
	assert.False(t, db.Migrator().HasTable(&note{}))

	pending, err := r.Pending()
	require.NoError(t, err)
	assert.Len(t, pending, 2)
}

func TestRollbackWithNothingRan(t *testing.T) {
	out := &bytes.Buffer{}
	require.NoError(t, NewWith(openDB(t), out, nil).Rollback())
	assert.Contains(t, out.String(), "Nothing to roll back.")
}
