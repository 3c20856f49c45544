package store

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratepostgres "github.com/golang-migrate/migrate/v4/database/postgres"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/mattn/go-sqlite3" // SQLite driver
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrationsFS embed.FS

var ErrNotFound = errors.New("record not found")

type Options struct {
	Debug bool
	// SkipMigrations leaves the schema untouched on open.
	SkipMigrations bool
}

type Store struct {
	db      *gorm.DB
	sqlDB   *sql.DB
	dialect string
	now     func() time.Time
}

// Open connects to SQLite (a file path or file: DSN) or Postgres (a
// postgres:// URL) and brings the schema up to date.
func Open(databaseURL string, opts Options) (*Store, error) {
	gormConfig := &gorm.Config{
		Logger: newGormLogger(opts.Debug),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}

	var (
		gdb     *gorm.DB
		sqlDB   *sql.DB
		dialect string
		err     error
	)

	if isPostgresURL(databaseURL) {
		dialect = "postgres"
		gdb, err = gorm.Open(postgres.Open(databaseURL), gormConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		sqlDB, err = gdb.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get database handle: %w", err)
		}
	} else {
		dialect = "sqlite3"
		sqlDB, err = sql.Open("sqlite3", databaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		// SQLite allows one writer; a single connection avoids SQLITE_BUSY.
		sqlDB.SetMaxOpenConns(1)
		gdb, err = gorm.Open(&sqlite.Dialector{Conn: sqlDB}, gormConfig)
		if err != nil {
			sqlDB.Close()
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
	}

	if err = sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &Store{db: gdb, sqlDB: sqlDB, dialect: dialect, now: time.Now}
	if !opts.SkipMigrations {
		if err = s.MigrateUp(); err != nil {
			sqlDB.Close()
			return nil, fmt.Errorf("failed to initialize schema: %w", err)
		}
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.sqlDB.Close()
}

func (s *Store) Dialect() string {
	return s.dialect
}

func (s *Store) MigrateUp() error {
	m, err := s.migrator()
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

func (s *Store) MigrateDown() error {
	m, err := s.migrator()
	if err != nil {
		return err
	}
	if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to roll back migrations: %w", err)
	}
	return nil
}

// SchemaVersion reports the applied migration version; 0 means none.
func (s *Store) SchemaVersion() (uint, bool, error) {
	m, err := s.migrator()
	if err != nil {
		return 0, false, err
	}
	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return version, dirty, err
}

// The migrate instance is never closed: closing it would close sqlDB.
func (s *Store) migrator() (*migrate.Migrate, error) {
	src, err := iofs.New(migrationsFS, "migrations/"+s.migrationsDir())
	if err != nil {
		return nil, fmt.Errorf("failed to load migrations: %w", err)
	}

	var m *migrate.Migrate
	switch s.dialect {
	case "postgres":
		driver, err := migratepostgres.WithInstance(s.sqlDB, &migratepostgres.Config{})
		if err != nil {
			return nil, fmt.Errorf("failed to create migration driver: %w", err)
		}
		m, err = migrate.NewWithInstance("iofs", src, "postgres", driver)
		if err != nil {
			return nil, fmt.Errorf("failed to create migrator: %w", err)
		}
	default:
		driver, err := migratesqlite.WithInstance(s.sqlDB, &migratesqlite.Config{})
		if err != nil {
			return nil, fmt.Errorf("failed to create migration driver: %w", err)
		}
		m, err = migrate.NewWithInstance("iofs", src, "sqlite3", driver)
		if err != nil {
			return nil, fmt.Errorf("failed to create migrator: %w", err)
		}
	}
	return m, nil
}

func (s *Store) migrationsDir() string {
	if s.dialect == "postgres" {
		return "postgres"
	}
	return "sqlite"
}

func isPostgresURL(databaseURL string) bool {
	return strings.HasPrefix(databaseURL, "postgres://") || strings.HasPrefix(databaseURL, "postgresql://")
}

func newGormLogger(debug bool) logger.Interface {
	level := logger.Warn
	if debug {
		level = logger.Info
	}
	return logger.New(
		log.New(os.Stdout, "", log.LstdFlags),
		logger.Config{
			SlowThreshold:             500 * time.Millisecond,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
		},
	)
}
