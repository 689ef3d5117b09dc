package database

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/SlpAus/portfolio-backend/internal/platform/config"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

func TestDialectFor(t *testing.T) {
	cases := map[string]Dialect{
		"postgres://u:p@host/db":   DialectPostgres,
		"postgresql://u:p@host/db": DialectPostgres,
		"portfolio.db":             DialectSQLite,
		"/tmp/x.db":                DialectSQLite,
	}
	for url, want := range cases {
		if got := DialectFor(url); got != want {
			t.Errorf("DialectFor(%q) = %q, want %q", url, got, want)
		}
	}
}

func TestIsDuplicateKeyError(t *testing.T) {
	if !IsDuplicateKeyError(fmt.Errorf("insert: %w", gorm.ErrDuplicatedKey)) {
		t.Error("wrapped gorm.ErrDuplicatedKey not detected")
	}
	if !IsDuplicateKeyError(&pgconn.PgError{Code: "23505"}) {
		t.Error("pg unique violation not detected")
	}
	if IsDuplicateKeyError(&pgconn.PgError{Code: "42P01"}) {
		t.Error("undefined_table reported as duplicate")
	}
	if IsDuplicateKeyError(errors.New("boom")) || IsDuplicateKeyError(nil) {
		t.Error("unrelated error reported as duplicate")
	}
}

func TestOpenSQLite(t *testing.T) {
	db, err := Open(config.DatabaseConfig{URL: filepath.Join(t.TempDir(), "test.db")})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer Close(db)

	var one int
	if err := db.Raw("SELECT 1").Scan(&one).Error; err != nil || one != 1 {
		t.Fatalf("select 1: %v (%d)", err, one)
	}
}

func TestStatus(t *testing.T) {
	var nilStatus *Status
	if !nilStatus.IsRedisHealthy() {
		t.Fatal("nil status should report healthy")
	}

	s := NewStatus()
	if !s.IsRedisHealthy() {
		t.Fatal("new status should start healthy")
	}
	s.UpdateStatus(false)
	if s.IsRedisHealthy() {
		t.Fatal("status not updated")
	}
	s.UpdateStatus(true)
	if !s.IsRedisHealthy() {
		t.Fatal("status not restored")
	}
}
