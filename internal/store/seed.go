package store

import (
	"context"
	"io/fs"
	"log/slog"
	"path"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/localnerve/ops-portal/data"
)

// Seed writes the embedded seed document of every collection that does not exist yet.
// Existing collections are never touched. It returns the seeded collections.
func Seed(ctx context.Context, s Store, logger *slog.Logger) ([]Collection, error) {
	return SeedFrom(ctx, s, data.Seed, "seed", logger)
}

// SeedFrom seeds from the JSON files in dir of fsys.
func SeedFrom(ctx context.Context, s Store, fsys fs.FS, dir string, logger *slog.Logger) ([]Collection, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read seed directory")
	}

	seeded := make([]bool, len(entries))
	g, gctx := errgroup.WithContext(ctx)
	for i, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		c := Collection(strings.TrimSuffix(name, ".json"))
		if !c.Valid() {
			logger.Warn("Skipping seed for unknown collection", slog.String("file", name))
			continue
		}

		g.Go(func() error {
			_, err := s.Read(gctx, c)
			if err == nil {
				return nil
			}
			if !errors.Is(err, ErrNotExist) {
				return err
			}
			body, err := fs.ReadFile(fsys, path.Join(dir, name))
			if err != nil {
				return errors.Wrapf(err, "failed to read seed %s", name)
			}
			if err := s.Write(gctx, c, body); err != nil {
				return err
			}
			seeded[i] = true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []Collection
	for i, ok := range seeded {
		if ok {
			c := Collection(strings.TrimSuffix(entries[i].Name(), ".json"))
			logger.Info("Seeded collection", slog.String("collection", string(c)))
			out = append(out, c)
		}
	}
	return out, nil
}
