// connection.go
//
// Operations portal for tabletop mech campaigns
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of ops-portal.
// ops-portal is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// ops-portal is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with ops-portal.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package database

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlserver"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/localnerve/ops-portal/internal/config"
	"github.com/localnerve/ops-portal/internal/models"
)

// Dialector returns the gorm dialector for the configured SQL store type.
func Dialector(cfg *config.Config) (gorm.Dialector, error) {
	switch cfg.StoreType {
	case config.StoreMySQL:
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			cfg.DBUser,
			cfg.DBPassword,
			cfg.DBHost,
			portOr(cfg.DBPort, "3306"),
			cfg.DBDatabase,
		)
		return mysql.Open(dsn), nil

	case config.StorePostgres:
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
			cfg.DBHost,
			cfg.DBUser,
			cfg.DBPassword,
			cfg.DBDatabase,
			portOr(cfg.DBPort, "5432"),
		)
		return postgres.Open(dsn), nil

	case config.StoreSQLite:
		// For SQLite, DBDatabase is the file path. The pure-Go driver keeps the binary cgo free.
		return sqlite.Open(cfg.DBDatabase + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"), nil

	case config.StoreSQLServer:
		dsn := fmt.Sprintf("sqlserver://%s:%s@%s:%s?database=%s",
			cfg.DBUser,
			cfg.DBPassword,
			cfg.DBHost,
			portOr(cfg.DBPort, "1433"),
			cfg.DBDatabase,
		)
		return sqlserver.Open(dsn), nil
	}

	return nil, fmt.Errorf("unsupported database type: %s", cfg.StoreType)
}

// Connect opens the SQL database for the collection store.
func Connect(cfg *config.Config) (*gorm.DB, error) {
	dialector, err := Dialector(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying SQL DB for connection pool configuration
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying SQL DB: %w", err)
	}

	// Set connection pool settings
	limit := cfg.DBConnectionLimit
	if cfg.StoreType == config.StoreSQLite {
		limit = 1
	}
	sqlDB.SetMaxOpenConns(limit)
	sqlDB.SetMaxIdleConns(max(limit/2, 1))
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	slog.Info("Connected to database", slog.String("type", cfg.StoreType), slog.String("database", cfg.DBDatabase))

	return db, nil
}

// AutoMigrate creates or updates the collection table.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&models.CollectionDocument{})
}

// Close closes the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func portOr(port, fallback string) string {
	if port == "" {
		return fallback
	}
	return port
}
