// Command inspect_schema prints the SQL schema of the collection store and the
// collections a first run seeds into it.
//
//	go run ./tools/inspect_schema.go
package main

import (
	"context"
	"fmt"
	"log"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/localnerve/ops-portal/internal/logging"
	"github.com/localnerve/ops-portal/internal/models"
	"github.com/localnerve/ops-portal/internal/store"
)

func main() {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		log.Fatal(err)
	}

	// every connection to :memory: is a separate database
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal(err)
	}
	sqlDB.SetMaxOpenConns(1)

	// NewSQLStore migrates the collections table
	s, err := store.NewSQLStore(db)
	if err != nil {
		log.Fatal(err)
	}
	defer s.Close()

	table := models.CollectionDocument{}.TableName()
	var ddl string
	if err := db.Raw("SELECT sql FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&ddl).Error; err != nil {
		log.Fatal(err)
	}
	fmt.Printf("=== Table: %s ===\n%s\n", table, ddl)

	var indexes []string
	db.Raw("SELECT sql FROM sqlite_master WHERE type = 'index' AND tbl_name = ? AND sql IS NOT NULL", table).Scan(&indexes)
	for _, idx := range indexes {
		fmt.Println(idx)
	}

	ctx := context.Background()
	seeded, err := store.Seed(ctx, s, logging.Discard())
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("\n=== Seeded collections ===\n")
	for _, c := range seeded {
		data, err := s.Read(ctx, c)
		if err != nil {
			log.Fatal(err)
		}
		version, err := s.Version(ctx, c)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("%-24s version=%d bytes=%d\n", c, version, len(data))
	}
}
