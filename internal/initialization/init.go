// The init package contains functions that setup required dependencies such as the persisted session storage.
package initialization

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/golang-migrate/migrate"
	"github.com/golang-migrate/migrate/database/sqlite3"
	_ "github.com/golang-migrate/migrate/source/file"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"
	"github.com/sidereusnuntius/goblog/internal/config"
	"github.com/sidereusnuntius/goblog/internal/storage"
	"github.com/sidereusnuntius/goblog/internal/storage/filestore"
	"github.com/sidereusnuntius/goblog/internal/storage/memstore"
	"github.com/sidereusnuntius/goblog/internal/storage/sqlstore"
)

// SetupDB applies all remaining migrations found in folder. Running it on an up to date database is a no-op.
func SetupDB(db *sql.DB, folder, dbname string) error {
	log.Debug().Str("folder", folder).Msg("starting migrations")
	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		log.Error().Err(err).Msg("failed to create sqlite3 migration driver")
		return err
	}

	mig, err := migrate.NewWithDatabaseInstance(
		"file://"+folder,
		dbname,
		driver,
	)
	if err != nil {
		log.Error().Err(err).Msg("failed to create Migrate object")
		return err
	}

	err = mig.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		return nil
	}
	if err != nil {
		log.Error().Err(err).Msg("failed to run migrations")
	}
	return err
}

func OpenDB(connString string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", connString)
	if err != nil {
		log.Error().Err(err).Str("connection string", connString).Msg("failed to open database")
		return nil, err
	}
	if err = db.Ping(); err != nil {
		log.Error().Err(err).Str("connection string", connString).Msg("failed to connect to database")
		db.Close()
		return nil, err
	}
	return db, nil
}

// OpenStorage builds the storage selected by cfg.SessionDriver. The returned close function releases any
// resources held by the storage and is never nil.
func OpenStorage(cfg *config.Configuration) (s storage.Storage, closeFn func() error, err error) {
	closeFn = func() error { return nil }

	switch cfg.SessionDriver {
	case config.DriverMemory:
		s = memstore.New()
	case config.DriverFile:
		s, err = filestore.New(cfg.SessionDir)
	case config.DriverSQLite:
		if err = os.MkdirAll(filepath.Dir(cfg.SessionDbUrl), 0o700); err != nil {
			return
		}
		var db *sql.DB
		db, err = OpenDB(cfg.SessionDbUrl)
		if err != nil {
			return
		}
		if err = SetupDB(db, cfg.MigrationsFolder, "session"); err != nil {
			db.Close()
			return
		}
		s = sqlstore.New(db)
		closeFn = db.Close
	default:
		err = fmt.Errorf("unknown session driver %q", cfg.SessionDriver)
	}
	return
}
