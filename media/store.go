package media

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rpupo63/portfolio-site-backend/errs"
)

// Folders under the upload root.
const (
	ProjectsFolder = "projects"
	ProfilesFolder = "profiles"
)

// StoredFile describes one object in a folder.
type StoredFile struct {
	Name    string
	ModTime time.Time
}

// Store persists ingested images. Names are relative to a folder and never contain separators.
type Store interface {
	Save(ctx context.Context, folder, name string, data []byte) error
	Remove(ctx context.Context, folder, name string) error
	List(ctx context.Context, folder string) ([]StoredFile, error)
}

// LocalStore keeps files on disk under Root/<folder>/<name>.
type LocalStore struct {
	Root string
}

func NewLocalStore(root string) *LocalStore {
	return &LocalStore{Root: root}
}

func (s *LocalStore) path(folder, name string) (string, error) {
	if err := checkSegment(folder); err != nil {
		return "", err
	}
	if name == "" {
		return filepath.Join(s.Root, folder), nil
	}
	if err := checkSegment(name); err != nil {
		return "", err
	}
	return filepath.Join(s.Root, folder, name), nil
}

// Save creates the folder on demand and writes the file atomically.
func (s *LocalStore) Save(_ context.Context, folder, name string, data []byte) error {
	dst, err := s.path(folder, name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return errs.NewStorageError("create folder", folder, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".upload-*")
	if err != nil {
		return errs.NewStorageError("create", dst, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errs.NewStorageError("write", dst, err)
	}
	if err := tmp.Close(); err != nil {
		return errs.NewStorageError("write", dst, err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return errs.NewStorageError("rename", dst, err)
	}
	return nil
}

// Remove deletes a file; a missing file is not an error.
func (s *LocalStore) Remove(_ context.Context, folder, name string) error {
	dst, err := s.path(folder, name)
	if err != nil {
		return err
	}
	if err := os.Remove(dst); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return errs.NewStorageError("remove", dst, err)
	}
	return nil
}

func (s *LocalStore) List(_ context.Context, folder string) ([]StoredFile, error) {
	dir, err := s.path(folder, "")
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, errs.NewStorageError("list", dir, err)
	}

	files := make([]StoredFile, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, StoredFile{Name: entry.Name(), ModTime: info.ModTime()})
	}
	return files, nil
}

func checkSegment(segment string) error {
	if segment == "" || segment == "." || segment == ".." || strings.ContainsAny(segment, `/\`) {
		return fmt.Errorf("invalid path segment %q", segment)
	}
	return nil
}
