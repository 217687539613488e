package store

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/localnerve/ops-portal/internal/models"
)

// setupTestDB creates an in-memory SQLite database for testing
func setupTestDB(t *testing.T) *gorm.DB {
	name := strings.ReplaceAll(t.Name(), "/", "_")
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get SQL DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func TestSQLStoreReadAbsent(t *testing.T) {
	s, err := NewSQLStore(setupTestDB(t))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	if _, err := s.Read(context.Background(), Jobs); err != ErrNotExist {
		t.Errorf("Expected ErrNotExist, got %v", err)
	}

	jobs, err := Load(context.Background(), s, Jobs, []models.Job{})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(jobs) != 0 {
		t.Errorf("Expected no jobs, got %d", len(jobs))
	}
}

func TestSQLStoreWriteReplacesAndBumpsVersion(t *testing.T) {
	s, err := NewSQLStore(setupTestDB(t))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	ctx := context.Background()

	if err := Save(ctx, s, Reserves, []models.Reserve{{ID: "r-1", Name: "First"}}); err != nil {
		t.Fatalf("First save failed: %v", err)
	}
	if err := Save(ctx, s, Reserves, []models.Reserve{{ID: "r-2", Name: "Second"}}); err != nil {
		t.Fatalf("Second save failed: %v", err)
	}

	reserves, err := Load(ctx, s, Reserves, []models.Reserve{})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(reserves) != 1 || reserves[0].ID != "r-2" {
		t.Errorf("Expected the second document, got %+v", reserves)
	}

	version, err := s.Version(ctx, Reserves)
	if err != nil {
		t.Fatalf("Version failed: %v", err)
	}
	if version != 2 {
		t.Errorf("Expected version 2, got %d", version)
	}

	var count int64
	s.db.Model(&models.CollectionDocument{}).Count(&count)
	if count != 1 {
		t.Errorf("Expected one row, got %d", count)
	}
}

func TestSQLStorePing(t *testing.T) {
	s, err := NewSQLStore(setupTestDB(t))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	if err := s.Ping(context.Background()); err != nil {
		t.Errorf("Ping failed: %v", err)
	}
}
