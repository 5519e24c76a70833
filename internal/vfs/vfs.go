// Package vfs provides a virtual file system abstraction, adapted from the
// project file-store layer so the same interface backs both whole-file
// project operations (session restore, config discovery) and the piece
// buffer's random-access chunk loading.
package vfs

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// VFS is a virtual file system abstraction, allowing tests to substitute an
// in-memory backend for the OS file system.
type VFS interface {
	Open(path string) (io.ReadCloser, error)
	ReadFile(path string) ([]byte, error)
	Stat(path string) (FileInfo, error)
	WriteFile(path string, data []byte, perm fs.FileMode) error
	MkdirAll(path string, perm fs.FileMode) error
	Exists(path string) bool
	Abs(path string) (string, error)

	// OpenSource opens path for the random-access reads the piece buffer's
	// lazy chunk loader needs; unlike Open, the returned Source supports
	// seeking to an arbitrary byte offset without reading what precedes it.
	OpenSource(path string) (Source, error)
}

// Source is the narrow random-access interface the piece buffer's lazy
// loader requires from a backing file: its exact size and the ability to
// read any byte range without materializing the whole file.
type Source interface {
	Size() int64
	ReadAt(p []byte, off int64) (int, error)
	Close() error
}

// FileInfo describes a file or directory.
type FileInfo struct {
	path    string
	name    string
	size    int64
	mode    fs.FileMode
	modTime time.Time
	isDir   bool
}

func NewFileInfo(path, name string, size int64, mode fs.FileMode, modTime time.Time, isDir bool) FileInfo {
	return FileInfo{path: path, name: name, size: size, mode: mode, modTime: modTime, isDir: isDir}
}

func (fi FileInfo) Path() string       { return fi.path }
func (fi FileInfo) Name() string       { return fi.name }
func (fi FileInfo) Size() int64        { return fi.size }
func (fi FileInfo) Mode() fs.FileMode  { return fi.mode }
func (fi FileInfo) ModTime() time.Time { return fi.modTime }
func (fi FileInfo) IsDir() bool        { return fi.isDir }

// OSFS is the real file system.
type OSFS struct{}

func NewOSFS() OSFS { return OSFS{} }

func (OSFS) Open(path string) (io.ReadCloser, error) { return os.Open(path) }
func (OSFS) ReadFile(path string) ([]byte, error)    { return os.ReadFile(path) }

func (OSFS) Stat(path string) (FileInfo, error) {
	info, err := os.Stat(path)
	if err != nil {
		return FileInfo{}, err
	}
	return NewFileInfo(path, info.Name(), info.Size(), info.Mode(), info.ModTime(), info.IsDir()), nil
}

func (OSFS) WriteFile(path string, data []byte, perm fs.FileMode) error {
	return os.WriteFile(path, data, perm)
}

func (OSFS) MkdirAll(path string, perm fs.FileMode) error { return os.MkdirAll(path, perm) }

func (OSFS) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (OSFS) Abs(path string) (string, error) { return filepath.Abs(path) }

func (OSFS) OpenSource(path string) (Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	return &osSource{f: f, size: info.Size()}, nil
}

type osSource struct {
	f    *os.File
	size int64
}

func (s *osSource) Size() int64                       { return s.size }
func (s *osSource) ReadAt(p []byte, off int64) (int, error) { return s.f.ReadAt(p, off) }
func (s *osSource) Close() error                      { return s.f.Close() }
