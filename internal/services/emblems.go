package services

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/localnerve/ops-portal/internal/broadcast"
	"github.com/localnerve/ops-portal/internal/models"
	"github.com/localnerve/ops-portal/internal/store"
	"github.com/localnerve/ops-portal/internal/types"
	"github.com/localnerve/ops-portal/internal/validation"
)

// EventEmblems is published when the emblem library changes.
const EventEmblems = "emblems"

// emblemsKey serializes emblem uploads and deletes. It is a lock key only.
const emblemsKey store.Collection = "emblems"

func (s *Service) emblemExists(name string) bool {
	if s.emblemDir == "" || !validation.ValidEmblemName(name) {
		return false
	}
	info, err := os.Stat(filepath.Join(s.emblemDir, name))
	return err == nil && info.Mode().IsRegular()
}

// EmblemPath returns the file path of an existing emblem.
func (s *Service) EmblemPath(name string) (string, error) {
	if !s.emblemExists(name) {
		return "", types.NotFoundError("emblem %s not found", name)
	}
	return filepath.Join(s.emblemDir, name), nil
}

// ListEmblems returns the emblem file names in lexical order.
func (s *Service) ListEmblems(ctx context.Context) ([]string, error) {
	names := []string{}
	if s.emblemDir == "" {
		return names, nil
	}
	entries, err := os.ReadDir(s.emblemDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return names, nil
		}
		return nil, types.StorageError(err)
	}
	for _, e := range entries {
		if e.Type().IsRegular() && validation.ValidEmblemName(e.Name()) {
			names = append(names, e.Name())
		}
	}
	slices.Sort(names)
	return names, nil
}

// SaveEmblem stores an SVG emblem as-is under a new name.
func (s *Service) SaveEmblem(ctx context.Context, name string, data []byte) (string, error) {
	name = strings.TrimSpace(name)
	if !strings.HasSuffix(strings.ToLower(name), ".svg") {
		name += ".svg"
	}
	if !validation.ValidEmblemName(name) {
		return "", types.ValidationError("emblem name must contain only letters, digits, '-' or '_' and end in .svg")
	}
	if !bytes.Contains(bytes.ToLower(data), []byte("<svg")) {
		return "", types.ValidationError("emblem must be an SVG document")
	}
	if s.emblemDir == "" {
		return "", types.StorageError(errors.New("emblem directory is not configured"))
	}

	err := s.mutate(ctx, "emblem.save", []store.Collection{emblemsKey}, func(*mutation) error {
		f, err := os.OpenFile(filepath.Join(s.emblemDir, name), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err != nil {
			if errors.Is(err, fs.ErrExist) {
				return types.ConflictError("emblem %s already exists", name)
			}
			return types.StorageError(err)
		}
		if _, err := f.Write(data); err != nil {
			f.Close()
			os.Remove(f.Name())
			return types.StorageError(err)
		}
		if err := f.Close(); err != nil {
			os.Remove(f.Name())
			return types.StorageError(err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	s.publishEmblems(ctx)
	return name, nil
}

// DeleteEmblem removes an emblem that no job or faction uses.
func (s *Service) DeleteEmblem(ctx context.Context, name string) error {
	err := s.mutate(ctx, "emblem.delete", []store.Collection{emblemsKey, store.Jobs, store.Factions}, func(*mutation) error {
		path, err := s.EmblemPath(name)
		if err != nil {
			return err
		}
		jobs, err := s.loadJobs(ctx)
		if err != nil {
			return err
		}
		factions, err := s.loadFactions(ctx)
		if err != nil {
			return err
		}
		users := 0
		users += countFunc(jobs, func(j models.Job) bool { return j.Emblem == name })
		users += countFunc(factions, func(f models.Faction) bool { return f.Emblem == name })
		if users > 0 {
			return types.ConflictError("emblem %s is used by %d job(s) or faction(s)", name, users)
		}
		if err := os.Remove(path); err != nil {
			return types.StorageError(err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.publishEmblems(ctx)
	return nil
}

func (s *Service) publishEmblems(ctx context.Context) {
	names, err := s.ListEmblems(ctx)
	if err != nil {
		return
	}
	s.publisher.Publish(broadcast.Event{Type: EventEmblems, Payload: names})
}

func countFunc[T any](items []T, match func(T) bool) int {
	n := 0
	for _, item := range items {
		if match(item) {
			n++
		}
	}
	return n
}
