// sql_store.go
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

package store

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/localnerve/ops-portal/internal/database"
	"github.com/localnerve/ops-portal/internal/models"
)

// SQLStore keeps each collection as one row of the collections table.
type SQLStore struct {
	db *gorm.DB
}

// NewSQLStore migrates the collections table and returns the store.
func NewSQLStore(db *gorm.DB) (*SQLStore, error) {
	if err := database.AutoMigrate(db); err != nil {
		return nil, errors.Wrap(err, "failed to migrate collections table")
	}
	return &SQLStore{db: db}, nil
}

// Read returns the stored document, or ErrNotExist.
func (s *SQLStore) Read(ctx context.Context, c Collection) ([]byte, error) {
	var doc models.CollectionDocument
	err := s.db.WithContext(ctx).Where("collection_name = ?", string(c)).Take(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotExist
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read collection %s", c)
	}
	return doc.Body.Bytes(), nil
}

// Write replaces the stored document and bumps its version.
func (s *SQLStore) Write(ctx context.Context, c Collection, data []byte) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.CollectionDocument{}).
			Where("collection_name = ?", string(c)).
			Updates(map[string]any{
				"collection_body":    models.NewJSON(data),
				"collection_version": gorm.Expr("collection_version + ?", 1),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected > 0 {
			return nil
		}
		return tx.Create(&models.CollectionDocument{
			Name:    string(c),
			Version: 1,
			Body:    models.NewJSON(data),
		}).Error
	})
	if err != nil {
		return errors.Wrapf(err, "failed to write collection %s", c)
	}
	return nil
}

// Version returns the write counter of a collection, zero if it was never written.
func (s *SQLStore) Version(ctx context.Context, c Collection) (uint64, error) {
	var doc models.CollectionDocument
	err := s.db.WithContext(ctx).Select("collection_version").Where("collection_name = ?", string(c)).Take(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, errors.Wrapf(err, "failed to read version of %s", c)
	}
	return doc.Version, nil
}

// Ping checks database connectivity.
func (s *SQLStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return errors.Wrap(err, "failed to get underlying SQL DB")
	}
	return errors.Wrap(sqlDB.PingContext(ctx), "database ping failed")
}

// Close closes the connection pool.
func (s *SQLStore) Close() error {
	return database.Close(s.db)
}
