package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type widget struct {
	ID  uint   `gorm:"primaryKey"`
	SKU string `gorm:"uniqueIndex"`
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open("oracle", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported DB_DRIVER")
}

func TestOpenTranslatesDuplicateKey(t *testing.T) {
	db, err := Open("sqlite", ":memory:")
	require.NoError(t, err)
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&widget{}))
	require.NoError(t, db.Create(&widget{SKU: "A"}).Error)

	err = db.Create(&widget{SKU: "A"}).Error
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}
