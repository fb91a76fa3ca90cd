package storage

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rogpeppe/go-internal/lockedfile"
	"go.uber.org/zap"

	"github.com/phonecore/phonecore/internal/logging"
)

// ErrOutsideRoot is returned for paths that escape the service root
var ErrOutsideRoot = errors.New("path escapes storage root")

// ErrNoRoot is returned by operations that need a root directory
var ErrNoRoot = errors.New("storage has no root directory")

const (
	dirPerm  fs.FileMode = 0700
	filePerm fs.FileMode = 0600
)

// FileService stores files below a root directory.
// With an empty root, paths are used as given.
type FileService struct {
	root string
}

// New creates a file service rooted at root
func New(root string) *FileService {
	return &FileService{root: root}
}

// Root returns the service root directory
func (s *FileService) Root() string {
	return s.root
}

// resolve maps a service path to a filesystem path
func (s *FileService) resolve(path string) (string, error) {
	if s.root == "" {
		return filepath.Clean(path), nil
	}

	full := filepath.Join(s.root, filepath.FromSlash(path))
	rel, err := filepath.Rel(s.root, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, path)
	}
	return full, nil
}

// Open opens a file with an exclusive (write) or shared (read-only) lock.
// The caller must close the returned file.
func (s *FileService) Open(path string, flag int, perm fs.FileMode) (io.ReadWriteCloser, error) {
	full, err := s.resolve(path)
	if err != nil {
		return nil, err
	}
	f, err := lockedfile.OpenFile(full, flag, perm)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// CreateDirectory creates path and any missing parents
func (s *FileService) CreateDirectory(path string) error {
	full, err := s.resolve(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(full, dirPerm); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	return nil
}

// DirectoryExists reports whether path is an existing directory
func (s *FileService) DirectoryExists(path string) bool {
	full, err := s.resolve(path)
	if err != nil {
		return false
	}
	info, err := os.Stat(full)
	return err == nil && info.IsDir()
}

// FileExists reports whether path is an existing regular file
func (s *FileService) FileExists(path string) bool {
	full, err := s.resolve(path)
	if err != nil {
		return false
	}
	info, err := os.Stat(full)
	return err == nil && info.Mode().IsRegular()
}

// Size returns the size of a regular file in bytes
func (s *FileService) Size(path string) (int64, error) {
	full, err := s.resolve(path)
	if err != nil {
		return 0, err
	}
	info, err := os.Stat(full)
	if err != nil {
		return 0, err
	}
	if !info.Mode().IsRegular() {
		return 0, fmt.Errorf("%s is not a regular file", path)
	}
	return info.Size(), nil
}

// Move moves src to dstName inside dir, replacing any existing file.
// dir is created when missing; an empty dir means the root. A missing
// source is not an error.
func (s *FileService) Move(src, dstName, dir string) error {
	if dir != "" {
		if err := s.CreateDirectory(dir); err != nil {
			return err
		}
	}
	if !s.FileExists(src) {
		logging.Debug("Move skipped, source missing", zap.String("src", src))
		return nil
	}

	from, err := s.resolve(src)
	if err != nil {
		return err
	}
	to, err := s.resolve(filepath.Join(dir, dstName))
	if err != nil {
		return err
	}

	if err := os.Remove(to); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to replace %s: %w", dstName, err)
	}
	if err := os.Rename(from, to); err != nil {
		return fmt.Errorf("failed to move file: %w", err)
	}
	return nil
}

// Delete removes a file. Missing files are ignored.
func (s *FileService) Delete(path string) error {
	full, err := s.resolve(path)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// Read returns the content of a file
func (s *FileService) Read(path string) ([]byte, error) {
	full, err := s.resolve(path)
	if err != nil {
		return nil, err
	}
	return lockedfile.Read(full)
}

// SaveText writes content to path, replacing any existing file
func (s *FileService) SaveText(path string, content string) error {
	return s.SaveStream(path, strings.NewReader(content))
}

// SaveStream copies r into path, replacing any existing file. The data is
// written to a sibling temporary file first so readers never observe a
// partial file. A nil reader produces an empty file.
func (s *FileService) SaveStream(path string, r io.Reader) error {
	full, err := s.resolve(path)
	if err != nil {
		return err
	}
	if r == nil {
		r = bytes.NewReader(nil)
	}

	if err := os.MkdirAll(filepath.Dir(full), dirPerm); err != nil {
		return fmt.Errorf("failed to create parent directory: %w", err)
	}

	tmp := full + ".tmp"
	if err := lockedfile.Write(tmp, r, filePerm); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := os.Rename(tmp, full); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to save file: %w", err)
	}
	return nil
}

// DeleteDirectory removes a directory and everything below it
func (s *FileService) DeleteDirectory(path string) error {
	full, err := s.resolve(path)
	if err != nil {
		return err
	}
	if s.root != "" && filepath.Clean(full) == filepath.Clean(s.root) {
		return s.RemoveAll()
	}
	if err := os.RemoveAll(full); err != nil {
		return fmt.Errorf("failed to delete directory: %w", err)
	}
	return nil
}

// RemoveAll deletes every entry below the root, keeping the root itself
func (s *FileService) RemoveAll() error {
	if s.root == "" {
		return ErrNoRoot
	}
	entries, err := os.ReadDir(s.root)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to list storage root: %w", err)
	}
	for _, entry := range entries {
		if err := os.RemoveAll(filepath.Join(s.root, entry.Name())); err != nil {
			return fmt.Errorf("failed to remove %s: %w", entry.Name(), err)
		}
	}
	return nil
}
