package fileutil

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// RealFS は実ファイルシステムへのアクセスを提供する
type RealFS struct {
	basePath string
}

// NewRealFS は実ファイルシステム用のFileSystemを作成する
func NewRealFS(basePath string) *RealFS {
	return &RealFS{basePath: basePath}
}

// WriteFile writes data under the base path, creating parent directories
// as needed.
func (r *RealFS) WriteFile(name string, data []byte) error {
	path := r.resolvePath(name)
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write file %s: %w", path, err)
	}
	return nil
}

// ReadFile reads the content of a file under the base path. When the
// exact name is missing it falls back to a case-insensitive search, since
// stored names keep whatever casing the writer was given.
func (r *RealFS) ReadFile(name string) ([]byte, error) {
	path := r.resolvePath(name)
	data, err := os.ReadFile(path)
	if err == nil || !errors.Is(err, fs.ErrNotExist) {
		return data, err
	}
	found, ferr := FindFileCaseInsensitive(filepath.Dir(path), filepath.Base(path))
	if ferr != nil {
		return nil, err
	}
	return os.ReadFile(found)
}

// BasePath はベースパスを返す
func (r *RealFS) BasePath() string {
	return r.basePath
}

func (r *RealFS) resolvePath(name string) string {
	if r.basePath == "" {
		return name
	}
	// 先頭の "/" や "\" を除去してベースパス配下に解決する
	cleanName := strings.TrimPrefix(strings.TrimPrefix(name, "/"), "\\")
	return filepath.Join(r.basePath, cleanName)
}

// FindFileCaseInsensitive searches dir for a file whose name matches
// filename ignoring case and returns the actual path.
func FindFileCaseInsensitive(dir, filename string) (string, error) {
	// Normalize the search filename to lowercase for comparison
	searchName := strings.ToLower(filename)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.ToLower(entry.Name()) == searchName {
			return filepath.Join(dir, entry.Name()), nil
		}
	}

	return "", fmt.Errorf("file not found: %s (searched in %s)", filename, dir)
}

// MemFS はメモリ上のファイルシステムを提供する。テストや埋め込み用途で使う
type MemFS struct {
	mu    sync.RWMutex
	files map[string][]byte
}

// NewMemFS はメモリ上のFileSystemを作成する
func NewMemFS() *MemFS {
	return &MemFS{files: make(map[string][]byte)}
}

// WriteFile stores a copy of data under name.
func (m *MemFS) WriteFile(name string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[name] = append([]byte(nil), data...)
	return nil
}

// ReadFile returns a copy of the stored content. A missing name reports
// fs.ErrNotExist.
func (m *MemFS) ReadFile(name string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.files[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", fs.ErrNotExist, name)
	}
	return append([]byte(nil), data...), nil
}

// BasePath returns the empty string; MemFS has no on-disk location.
func (m *MemFS) BasePath() string {
	return ""
}

// Len returns the number of stored files.
func (m *MemFS) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.files)
}
