package history

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
)

//go:embed migrations/mysql/*.sql migrations/postgresql/*.sql
var migrationsFS embed.FS

// Migrate runs the scan-history schema forward or backward through
// golang-migrate for the network-backed backends (MySQL, PostgreSQL), for
// operators who want an explicit, versioned schema upgrade path instead of
// the auto-create-table behavior NewStore uses by default. SQLite is
// intentionally excluded: NewStore's create-table-if-not-exists is
// sufficient for the single-file embedded deployment that backend targets,
// and golang-migrate's sqlite3 driver depends on the CGO mattn/go-sqlite3
// package this module does not otherwise use. targetVersion < 0 migrates
// to latest; 0 rolls back completely.
func Migrate(backend Backend, connStr string, targetVersion int) error {
	if backend == SQLiteBackend {
		return fmt.Errorf("versioned migration is not supported for sqlite; NewStore creates its table automatically")
	}

	driverName, dsn, err := driverAndDSN(backend, connStr)
	if err != nil {
		return err
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return fmt.Errorf("opening %s history database: %w", backend, err)
	}
	defer func() { _ = db.Close() }()

	var driver database.Driver
	switch backend {
	case MySQLBackend:
		driver, err = migratemysql.WithInstance(db, &migratemysql.Config{})
	case PostgreSQLBackend:
		driver, err = migratepgx.WithInstance(db, &migratepgx.Config{})
	default:
		return fmt.Errorf("unsupported migration backend %q", backend)
	}
	if err != nil {
		return fmt.Errorf("creating %s migrate driver: %w", backend, err)
	}

	sourceDriver, err := iofs.New(migrationsFS, "migrations/"+string(backend))
	if err != nil {
		return fmt.Errorf("accessing embedded migrations: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, string(backend), driver)
	if err != nil {
		return fmt.Errorf("creating migrate instance: %w", err)
	}

	if targetVersion < 0 {
		err = m.Up()
	} else {
		err = m.Migrate(uint(targetVersion))
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}
