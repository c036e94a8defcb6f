package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/username/moneymirror/src/logger"
	_ "modernc.org/sqlite"
)

// ErrUnavailable is returned when the sqlite file cannot be opened or reached.
var ErrUnavailable = errors.New("storage unavailable")

// Collection tables. Each row holds an opaque encrypted payload plus the
// plaintext index columns used for filtering.
const (
	TableFinancialSnapshots = "financial_snapshots"
	TableTransactions       = "transactions"
	TableEmotionalContexts  = "emotional_contexts"
	TableInsights           = "insights"
)

var CollectionTables = []string{
	TableFinancialSnapshots,
	TableTransactions,
	TableEmotionalContexts,
	TableInsights,
}

// InitDB opens the sqlite database at databasePath and ensures the schema.
func InitDB(databasePath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", databasePath)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrUnavailable, databasePath, err)
	}
	// sqlite serializes writers; a single connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: ping %s: %v", ErrUnavailable, databasePath, err)
	}

	logger.L.Info("Checking database migrations", "databasePath", databasePath)
	if err := createSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	for _, table := range CollectionTables {
		if err := migrateCollectionTable(db, table); err != nil {
			db.Close()
			return nil, err
		}
	}
	logger.L.Info("Database tables ensured/created.")
	return db, nil
}

func createSchema(db *sql.DB) error {
	_, err := db.Exec(`
	CREATE TABLE IF NOT EXISTS app_meta (
		key TEXT PRIMARY KEY,
		value BLOB NOT NULL,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);`)
	if err != nil {
		return fmt.Errorf("failed to create app_meta table: %w", err)
	}

	for _, table := range CollectionTables {
		stmt := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %[1]s (
			id TEXT NOT NULL,
			user_id TEXT NOT NULL,
			timestamp INTEGER NOT NULL,
			encrypted_payload TEXT NOT NULL,
			category TEXT,
			record_date TEXT,
			amount REAL,
			kind TEXT,
			PRIMARY KEY (user_id, id)
		);
		CREATE INDEX IF NOT EXISTS idx_%[1]s_user_date ON %[1]s (user_id, record_date);`, table)
		if _, err := db.Exec(stmt); err != nil {
			logger.L.Error("failed to create table", "table", table, "error", err)
			return fmt.Errorf("failed to create table %s: %w", table, err)
		}
	}
	return nil
}

// migrateCollectionTable adds index columns introduced after the first schema.
func migrateCollectionTable(db *sql.DB, table string) error {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return fmt.Errorf("error querying table schema for %s: %w", table, err)
	}
	defer rows.Close()

	columnExists := make(map[string]bool)
	primaryKey := make(map[string]int)
	for rows.Next() {
		var cid, pk int
		var name, dataType string
		var notnullVal int
		var dfltValue interface{}
		if err := rows.Scan(&cid, &name, &dataType, &notnullVal, &dfltValue, &pk); err != nil {
			return fmt.Errorf("error scanning column info for %s: %w", table, err)
		}
		columnExists[name] = true
		if pk > 0 {
			primaryKey[name] = pk
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating over column info for %s: %w", table, err)
	}
	rows.Close()

	added := []struct{ name, ddl string }{
		{"amount", "REAL"},
		{"kind", "TEXT"},
	}
	for _, col := range added {
		if columnExists[col.name] {
			continue
		}
		if _, err := db.Exec(fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, col.name, col.ddl)); err != nil {
			logger.L.Error("Error adding column", "table", table, "column", col.name, "error", err)
			return fmt.Errorf("error adding column %s to %s: %w", col.name, table, err)
		}
		logger.L.Info("Added column", "table", table, "column", col.name)
	}

	if len(primaryKey) == 2 && primaryKey["user_id"] == 1 && primaryKey["id"] == 2 {
		return nil
	}
	return rebuildWithUserKey(db, table)
}

// rebuildWithUserKey moves a table keyed by id alone to the (user_id, id) key,
// so record ids only need to be unique per user.
func rebuildWithUserKey(db *sql.DB, table string) error {
	logger.L.Info("Migrating primary key to (user_id, id)", "table", table)
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("error starting key migration for %s: %w", table, err)
	}
	defer tx.Rollback()

	stmts := []string{
		fmt.Sprintf("ALTER TABLE %[1]s RENAME TO %[1]s_old", table),
		fmt.Sprintf("DROP INDEX IF EXISTS idx_%s_user_date", table),
		fmt.Sprintf(`CREATE TABLE %s (
			id TEXT NOT NULL,
			user_id TEXT NOT NULL,
			timestamp INTEGER NOT NULL,
			encrypted_payload TEXT NOT NULL,
			category TEXT,
			record_date TEXT,
			amount REAL,
			kind TEXT,
			PRIMARY KEY (user_id, id)
		)`, table),
		fmt.Sprintf(`INSERT INTO %[1]s (id, user_id, timestamp, encrypted_payload, category, record_date, amount, kind)
			SELECT id, user_id, timestamp, encrypted_payload, category, record_date, amount, kind FROM %[1]s_old`, table),
		fmt.Sprintf("DROP TABLE %s_old", table),
		fmt.Sprintf("CREATE INDEX IF NOT EXISTS idx_%[1]s_user_date ON %[1]s (user_id, record_date)", table),
	}
	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt); err != nil {
			logger.L.Error("Key migration failed", "table", table, "error", err)
			return fmt.Errorf("error migrating key of %s: %w", table, err)
		}
	}
	return tx.Commit()
}
