package sdfs

import "io"

// A FileSystem provides read-only access to a tree hierarchy of
// directories and files on a card volume.
type FileSystem interface {
	Backend
	// RootDir returns the single root directory.
	RootDir() (Directory, error)
	Info() (map[string]any, error)
	FATType() (int, error)
	OEMName() (string, error)
	VolumeLabel() (string, error)
}

// Backend is the removable-media API the toolkit driver is built on.
// Paths are slash separated and relative to the volume root.
type Backend interface {
	// Open opens the named file for reading. A missing path returns an
	// error wrapping fs.ErrNotExist.
	Open(path string) (File, error)

	// OpenDir opens the named path for directory iteration. An existing
	// path that is not a directory still yields a Dir, with IsDir false;
	// the caller must close it.
	OpenDir(path string) (Dir, error)
}

// File is an open, positioned, read-only resource.
type File interface {
	io.Reader
	// SeekTo moves the cursor to an absolute offset from the start.
	SeekTo(offset int64) error
	Position() int64
	// Available reports the bytes remaining after the cursor.
	Available() int64
	IsDir() bool
	Close() error
}

// Dir is an open directory cursor.
type Dir interface {
	IsDir() bool
	Rewind() error
	// Next returns the next entry in native order, or nil, nil once the
	// directory is exhausted.
	Next() (Entry, error)
	Close() error
}
