package database

import (
	"fmt"
	"time"

	"github.com/shashiranjanraj/bazaar/config"
	"github.com/shashiranjanraj/bazaar/pkg/metrics"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/driver/sqlserver"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Connect opens the configured database, sets the pool limits and stores
// the handle in DB.
func Connect() error {
	db, err := Open(config.DatabaseDriver(), config.DatabaseDSN())
	if err != nil {
		return err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("database: get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)
	sqlDB.SetConnMaxIdleTime(2 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return fmt.Errorf("database: ping: %w", err)
	}

	DB = db
	return nil
}

// Open returns an instrumented *gorm.DB for driver/dsn. Duplicate-key
// errors are translated to gorm.ErrDuplicatedKey on every dialect.
func Open(driver, dsn string) (*gorm.DB, error) {
	dialector, err := buildDialector(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("database: build dialector: %w", err)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("database: open: %w", err)
	}

	if err := instrument(db); err != nil {
		return nil, fmt.Errorf("database: instrument: %w", err)
	}
	return db, nil
}

func buildDialector(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case "sqlite":
		return sqlite.Open(dsn), nil
	case "postgres":
		return postgres.Open(dsn), nil
	case "mysql":
		return mysql.Open(dsn), nil
	case "sqlserver":
		return sqlserver.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q (supported: sqlite, postgres, mysql, sqlserver)", driver)
	}
}

const startKey = "bazaar:query_start"

// instrument times every gorm operation into metrics.DBQueryDuration.
func instrument(db *gorm.DB) error {
	before := func(tx *gorm.DB) { tx.InstanceSet(startKey, time.Now()) }
	after := func(op string) func(*gorm.DB) {
		return func(tx *gorm.DB) {
			if v, ok := tx.InstanceGet(startKey); ok {
				if start, ok := v.(time.Time); ok {
					metrics.ObserveDBQuery(op, start)
				}
			}
		}
	}

	cb := db.Callback()
	steps := []struct {
		op       string
		register func(name string, fn func(*gorm.DB)) error
		after    func(name string, fn func(*gorm.DB)) error
	}{
		{"select", cb.Query().Before("gorm:query").Register, cb.Query().After("gorm:query").Register},
		{"insert", cb.Create().Before("gorm:create").Register, cb.Create().After("gorm:create").Register},
		{"update", cb.Update().Before("gorm:update").Register, cb.Update().After("gorm:update").Register},
		{"delete", cb.Delete().Before("gorm:delete").Register, cb.Delete().After("gorm:delete").Register},
		{"raw", cb.Row().Before("gorm:row").Register, cb.Row().After("gorm:row").Register},
	}
	for _, s := range steps {
		if err := s.register("metrics:before_"+s.op, before); err != nil {
			return err
		}
		if err := s.after("metrics:after_"+s.op, after(s.op)); err != nil {
			return err
		}
	}
	return nil
}
