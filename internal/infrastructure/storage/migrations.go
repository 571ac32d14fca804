package storage

import (
	"database/sql"
	"fmt"
	"log"
)

// Migration represents a database schema migration
type Migration struct {
	Version int
	Name    string
	Up      func(*sql.Tx) error
}

// allMigrations defines all migrations in order
var allMigrations = []Migration{
	{
		Version: 1,
		Name:    "create_bookings",
		Up:      migration001CreateBookings,
	},
	{
		Version: 2,
		Name:    "create_financial_splits",
		Up:      migration002CreateFinancialSplits,
	},
	{
		Version: 3,
		Name:    "create_upload_batches",
		Up:      migration003CreateUploadBatches,
	},
}

// runMigrations executes all pending migrations
func (s *Storage) runMigrations() error {
	if err := s.ensureMigrationsTable(); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	applied, err := s.getAppliedMigrations()
	if err != nil {
		return fmt.Errorf("failed to get applied migrations: %w", err)
	}

	for _, migration := range allMigrations {
		if applied[migration.Version] {
			continue // Already applied
		}

		log.Printf("Running migration %d: %s", migration.Version, migration.Name)

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin transaction for migration %d: %w", migration.Version, err)
		}

		if err := migration.Up(tx); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d (%s) failed: %w", migration.Version, migration.Name, err)
		}

		_, err = tx.Exec(`
			INSERT INTO schema_migrations (version, name) VALUES (?, ?)
		`, migration.Version, migration.Name)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
		}
	}

	return nil
}

// ensureMigrationsTable creates the schema_migrations table
func (s *Storage) ensureMigrationsTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`

	_, err := s.db.Exec(query)
	return err
}

// getAppliedMigrations returns a set of applied migration versions
func (s *Storage) getAppliedMigrations() (map[int]bool, error) {
	applied := make(map[int]bool)

	rows, err := s.db.Query(`SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return nil, err
		}
		applied[version] = true
	}

	return applied, rows.Err()
}

func migration001CreateBookings(tx *sql.Tx) error {
	query := `
	CREATE TABLE IF NOT EXISTS bookings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		license_plate TEXT NOT NULL,
		checkout_timestamp TIMESTAMP,
		checkout_formatted TEXT,
		price_on_delivery REAL NOT NULL DEFAULT 0,
		park_brand TEXT,
		payment_method TEXT,
		name TEXT,
		lastname TEXT,
		extra_services TEXT,
		parking_type TEXT,
		campaign TEXT,
		alocation TEXT,
		campaign_pay INTEGER NOT NULL DEFAULT 0,
		booking_date TEXT,
		check_in TEXT,
		booking_price REAL NOT NULL DEFAULT 0,
		has_online_payment INTEGER NOT NULL DEFAULT 0,
		stats TEXT,
		row_ref TEXT,
		delivery_price REAL NOT NULL DEFAULT 0,
		payment_intent_id TEXT,
		date_difference_days INTEGER NOT NULL DEFAULT 0,
		needs_approval INTEGER NOT NULL DEFAULT 0,
		status_approved INTEGER NOT NULL DEFAULT 0,
		approved_at TIMESTAMP,
		upload_batch_id TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`

	if _, err := tx.Exec(query); err != nil {
		return err
	}

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_bookings_license_plate ON bookings(license_plate)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_needs_approval ON bookings(needs_approval)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_park_brand ON bookings(park_brand)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_upload_batch ON bookings(upload_batch_id)`,
	}
	for _, idx := range indexes {
		if _, err := tx.Exec(idx); err != nil {
			return err
		}
	}

	return nil
}

func migration002CreateFinancialSplits(tx *sql.Tx) error {
	query := `
	CREATE TABLE IF NOT EXISTS financial_splits (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		booking_id INTEGER NOT NULL,
		partner_amount REAL NOT NULL,
		operator_amount REAL NOT NULL,
		total_amount REAL NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (booking_id) REFERENCES bookings(id)
	)`

	if _, err := tx.Exec(query); err != nil {
		return err
	}

	_, err := tx.Exec(`CREATE INDEX IF NOT EXISTS idx_splits_booking_id ON financial_splits(booking_id)`)
	return err
}

func migration003CreateUploadBatches(tx *sql.Tx) error {
	query := `
	CREATE TABLE IF NOT EXISTS upload_batches (
		id TEXT PRIMARY KEY,
		filename TEXT NOT NULL,
		started_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		completed_at TIMESTAMP,
		bookings_processed INTEGER NOT NULL DEFAULT 0,
		needs_approval INTEGER NOT NULL DEFAULT 0,
		rows_skipped INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT 'running'
	)`

	_, err := tx.Exec(query)
	return err
}
