// Package hostfs serves a card that the host has already mounted, such
// as an SD card reader automounted under /media, as a read-only backend.
package hostfs

import (
	"fmt"
	"io"
	"os"

	"github.com/rstms/sdfs"
	"github.com/spf13/afero"
)

// FileSystem is a read-only sdfs.Backend rooted at a mount point.
type FileSystem struct {
	fs   afero.Fs
	root string
}

// ensure FileSystem implements sdfs.Backend
var _ sdfs.Backend = (*FileSystem)(nil)

// New returns a backend serving root of fsys. It fails with
// sdfs.ErrNotMounted unless root is an existing directory.
func New(fsys afero.Fs, root string) (*FileSystem, error) {
	info, err := fsys.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%s: %w", root, sdfs.ErrNotMounted)
	}
	result := &FileSystem{
		fs:   afero.NewReadOnlyFs(afero.NewBasePathFs(fsys, root)),
		root: root,
	}
	return result, nil
}

// NewOs serves a directory of the host filesystem.
func NewOs(root string) (*FileSystem, error) {
	return New(afero.NewOsFs(), root)
}

func (h *FileSystem) Root() string {
	return h.root
}

func clean(path string) string {
	if path == "" {
		return "/"
	}
	return path
}

func (h *FileSystem) Open(path string) (sdfs.File, error) {
	f, err := h.fs.Open(clean(path))
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, Fatal(err)
	}
	result := &File{
		f:     f,
		size:  info.Size(),
		isDir: info.IsDir(),
	}
	if result.isDir {
		result.size = 0
	}
	return result, nil
}

func (h *FileSystem) OpenDir(path string) (sdfs.Dir, error) {
	path = clean(path)
	f, err := h.fs.Open(path)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, Fatal(err)
	}
	result := &Dir{
		fs:    h.fs,
		path:  path,
		f:     f,
		isDir: info.IsDir(),
	}
	return result, nil
}

// File is an open host file.
type File struct {
	f     afero.File
	size  int64
	pos   int64
	isDir bool
}

func (f *File) Read(p []byte) (int, error) {
	if f.f == nil {
		return 0, sdfs.ErrClosed
	}
	if f.isDir {
		return 0, io.EOF
	}
	n, err := f.f.Read(p)
	f.pos += int64(n)
	return n, err
}

func (f *File) SeekTo(offset int64) error {
	if f.f == nil {
		return sdfs.ErrClosed
	}
	if offset < 0 || offset > f.size {
		return sdfs.ErrSeekRange
	}
	pos, err := f.f.Seek(offset, io.SeekStart)
	if err != nil {
		return Fatal(err)
	}
	f.pos = pos
	return nil
}

func (f *File) Position() int64 {
	return f.pos
}

func (f *File) Available() int64 {
	if f.f == nil || f.pos >= f.size {
		return 0
	}
	return f.size - f.pos
}

func (f *File) IsDir() bool {
	return f.isDir
}

func (f *File) Close() error {
	if f.f == nil {
		return sdfs.ErrClosed
	}
	err := f.f.Close()
	f.f = nil
	if err != nil {
		return Fatal(err)
	}
	return nil
}

// Dir iterates a host directory one entry at a time.
type Dir struct {
	fs    afero.Fs
	path  string
	f     afero.File
	isDir bool
}

func (d *Dir) IsDir() bool {
	return d.isDir
}

// Rewind reopens the directory so iteration restarts at the first entry.
func (d *Dir) Rewind() error {
	if d.f == nil {
		return sdfs.ErrClosed
	}
	if !d.isDir {
		return sdfs.ErrNotDir
	}
	f, err := d.fs.Open(d.path)
	if err != nil {
		return Fatal(err)
	}
	d.f.Close()
	d.f = f
	return nil
}

func (d *Dir) Next() (sdfs.Entry, error) {
	if d.f == nil {
		return nil, sdfs.ErrClosed
	}
	if !d.isDir {
		return nil, sdfs.ErrNotDir
	}
	infos, err := d.f.Readdir(1)
	if err == io.EOF || (err == nil && len(infos) == 0) {
		return nil, nil
	}
	if err != nil {
		return nil, Fatal(err)
	}
	return &Entry{info: infos[0]}, nil
}

func (d *Dir) Close() error {
	if d.f == nil {
		return sdfs.ErrClosed
	}
	err := d.f.Close()
	d.f = nil
	if err != nil {
		return Fatal(err)
	}
	return nil
}

// Entry is one directory entry handed out by Dir.Next.
type Entry struct {
	info   os.FileInfo
	closed bool
}

func (e *Entry) Name() string {
	return e.info.Name()
}

func (e *Entry) IsDir() bool {
	return e.info.IsDir()
}

func (e *Entry) Close() error {
	if e.closed {
		return sdfs.ErrClosed
	}
	e.closed = true
	return nil
}
