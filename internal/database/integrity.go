package database

import (
	"context"

	"gorm.io/gorm"
)

// IntegrityToggle suspends and resumes foreign-key enforcement for a dialect.
type IntegrityToggle struct {
	suspend string
	resume  string
	// session is issued on the pool once a transaction is gone, since a
	// rollback can leave a session-level setting behind.
	session string
}

// IntegrityFor returns the statements used by the connected dialect.
func IntegrityFor(db *gorm.DB) IntegrityToggle {
	switch db.Dialector.Name() {
	case DriverMySQL:
		return IntegrityToggle{
			suspend: "SET FOREIGN_KEY_CHECKS = 0",
			resume:  "SET FOREIGN_KEY_CHECKS = 1",
			session: "SET FOREIGN_KEY_CHECKS = 1",
		}
	case DriverPostgres:
		return IntegrityToggle{
			suspend: "SET LOCAL session_replication_role = replica",
			resume:  "SET LOCAL session_replication_role = DEFAULT",
			session: "SET session_replication_role = DEFAULT",
		}
	case DriverSQLite:
		return IntegrityToggle{
			suspend: "PRAGMA defer_foreign_keys = ON",
			resume:  "PRAGMA defer_foreign_keys = OFF",
			session: "PRAGMA defer_foreign_keys = OFF",
		}
	default:
		return IntegrityToggle{}
	}
}

// NewIntegrityToggle builds a toggle from raw statements for dialects
// IntegrityFor does not know.
func NewIntegrityToggle(suspend, resume, session string) IntegrityToggle {
	return IntegrityToggle{suspend: suspend, resume: resume, session: session}
}

// Suspend disables enforcement inside tx.
func (t IntegrityToggle) Suspend(tx *gorm.DB) error {
	return t.exec(tx, t.suspend)
}

// Resume re-enables enforcement inside tx.
func (t IntegrityToggle) Resume(tx *gorm.DB) error {
	return t.exec(tx, t.resume)
}

// ResumeSession re-enables enforcement outside of any transaction.
func (t IntegrityToggle) ResumeSession(ctx context.Context, db *gorm.DB) error {
	return t.exec(db.WithContext(ctx), t.session)
}

func (t IntegrityToggle) exec(db *gorm.DB, statement string) error {
	if statement == "" {
		return nil
	}
	return db.Exec(statement).Error
}

// ResetSequence moves an auto-increment sequence past the highest stored id.
// Only PostgreSQL needs it after rows are inserted with explicit ids.
func ResetSequence(tx *gorm.DB, table, column string) error {
	if tx.Dialector.Name() != DriverPostgres {
		return nil
	}
	statement := "SELECT setval(pg_get_serial_sequence(?, ?), COALESCE(MAX(" + column + "), 0) + 1, false) FROM " + table
	return tx.Exec(statement, table, column).Error
}
