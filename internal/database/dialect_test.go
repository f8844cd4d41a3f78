package database

import (
	"testing"
)

func TestDialectSQLite(t *testing.T) {
	dialect := NewSQLiteDialect()

	t.Run("DriverName", func(t *testing.T) {
		result := dialect.DriverName()
		expected := "sqlite3"
		if result != expected {
			t.Errorf("DriverName() = %v, want %v", result, expected)
		}
	})

	t.Run("SupportsLastInsertId", func(t *testing.T) {
		if !dialect.SupportsLastInsertId() {
			t.Error("SupportsLastInsertId() should return true for SQLite")
		}
	})

	t.Run("MigrationsSubdir", func(t *testing.T) {
		result := dialect.MigrationsSubdir()
		expected := "sqlite"
		if result != expected {
			t.Errorf("MigrationsSubdir() = %v, want %v", result, expected)
		}
	})

	t.Run("RowLockClause", func(t *testing.T) {
		// SQLite's writer lock serializes transactions; no clause needed
		if clause := dialect.RowLockClause(); clause != "" {
			t.Errorf("RowLockClause() = %q, want empty", clause)
		}
	})
}

func TestDialectPostgreSQL(t *testing.T) {
	dialect := NewPostgresDialect()

	t.Run("DriverName", func(t *testing.T) {
		result := dialect.DriverName()
		expected := "postgres"
		if result != expected {
			t.Errorf("DriverName() = %v, want %v", result, expected)
		}
	})

	t.Run("SupportsLastInsertId", func(t *testing.T) {
		if dialect.SupportsLastInsertId() {
			t.Error("SupportsLastInsertId() should return false for PostgreSQL")
		}
	})

	t.Run("MigrationsSubdir", func(t *testing.T) {
		result := dialect.MigrationsSubdir()
		expected := "postgres"
		if result != expected {
			t.Errorf("MigrationsSubdir() = %v, want %v", result, expected)
		}
	})

	t.Run("RowLockClause", func(t *testing.T) {
		expected := " FOR UPDATE"
		if clause := dialect.RowLockClause(); clause != expected {
			t.Errorf("RowLockClause() = %q, want %q", clause, expected)
		}
	})
}

func TestDialectMySQL(t *testing.T) {
	dialect := NewMySQLDialect()

	t.Run("DriverName", func(t *testing.T) {
		result := dialect.DriverName()
		expected := "mysql"
		if result != expected {
			t.Errorf("DriverName() = %v, want %v", result, expected)
		}
	})

	t.Run("SupportsLastInsertId", func(t *testing.T) {
		if !dialect.SupportsLastInsertId() {
			t.Error("SupportsLastInsertId() should return true for MySQL")
		}
	})

	t.Run("MigrationsSubdir", func(t *testing.T) {
		result := dialect.MigrationsSubdir()
		expected := "mysql"
		if result != expected {
			t.Errorf("MigrationsSubdir() = %v, want %v", result, expected)
		}
	})

	t.Run("RowLockClause", func(t *testing.T) {
		expected := " FOR UPDATE"
		if clause := dialect.RowLockClause(); clause != expected {
			t.Errorf("RowLockClause() = %q, want %q", clause, expected)
		}
	})
}

func TestRewriteQuery(t *testing.T) {
	tests := []struct {
		name     string
		dialect  Dialect
		query    string
		expected string
	}{
		{
			name:     "SQLite no change",
			dialect:  NewSQLiteDialect(),
			query:    "SELECT * FROM accounts WHERE id = ?",
			expected: "SELECT * FROM accounts WHERE id = ?",
		},
		{
			name:     "MySQL no change",
			dialect:  NewMySQLDialect(),
			query:    "SELECT * FROM accounts WHERE id = ? AND user_id = ?",
			expected: "SELECT * FROM accounts WHERE id = ? AND user_id = ?",
		},
		{
			name:     "PostgreSQL single placeholder",
			dialect:  NewPostgresDialect(),
			query:    "SELECT * FROM accounts WHERE id = ?",
			expected: "SELECT * FROM accounts WHERE id = $1",
		},
		{
			name:     "PostgreSQL multiple placeholders numbered in order",
			dialect:  NewPostgresDialect(),
			query:    "INSERT INTO family_members (family_id, user_id, role, status) VALUES (?, ?, ?, ?)",
			expected: "INSERT INTO family_members (family_id, user_id, role, status) VALUES ($1, $2, $3, $4)",
		},
		{
			name:     "PostgreSQL no placeholders",
			dialect:  NewPostgresDialect(),
			query:    "SELECT COUNT(*) FROM families",
			expected: "SELECT COUNT(*) FROM families",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.dialect.RewriteQuery(tt.query)
			if result != tt.expected {
				t.Errorf("RewriteQuery() = %v, want %v", result, tt.expected)
			}
		})
	}
}
