// Package loader reads configuration layers for follow.
//
// Files may be TOML or YAML, chosen by extension. Environment variables
// with the FOLLOW_ prefix form another layer. Every loader produces a plain
// nested map; layers are combined with DeepMerge.
package loader

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Loader produces one configuration layer. A missing source yields a nil
// map and no error.
type Loader interface {
	Load() (map[string]any, error)
}

// FileLoader is a Loader that can also read other files of its format,
// as @include needs.
type FileLoader interface {
	Loader
	LoadFrom(path string) (map[string]any, error)
}

// FileSystem is what the file loaders and config.Load need from the disk.
type FileSystem interface {
	ReadFile(path string) ([]byte, error)
	Stat(path string) (fs.FileInfo, error)
}

// OSFS reads the real file system.
type OSFS struct{}

func (OSFS) ReadFile(path string) ([]byte, error) { return os.ReadFile(path) }

func (OSFS) Stat(path string) (fs.FileInfo, error) { return os.Stat(path) }

// DefaultFS returns OSFS.
func DefaultFS() FileSystem {
	return OSFS{}
}

// ForPath returns the loader matching the extension of path:
// YAML for .yaml and .yml, TOML otherwise.
func ForPath(fsys FileSystem, path string) FileLoader {
	if fsys == nil {
		fsys = DefaultFS()
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return NewYAMLLoaderWithFS(fsys, path)
	default:
		return NewTOMLLoaderWithFS(fsys, path)
	}
}
