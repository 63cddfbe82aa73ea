// Package sdcard is the storage adapter between the toolkit file layer
// and a removable card. It maps the toolkit's opaque handles to backend
// files and directories, enforces read-only access, and releases every
// backend resource exactly once.
package sdcard

import (
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/rstms/sdfs"
	"github.com/rstms/sdfs/lvfs"
)

// Driver implements lvfs.Callbacks over an sdfs.Backend. Like the
// toolkit that calls it, it is single threaded.
type Driver struct {
	backend     sdfs.Backend
	files       map[uuid.UUID]sdfs.File
	dirs        map[uuid.UUID]sdfs.Dir
	maxFilename int
	logger      *slog.Logger
}

// ensure Driver implements lvfs.Callbacks
var _ lvfs.Callbacks = (*Driver)(nil)

type Option func(*Driver)

func WithLogger(logger *slog.Logger) Option {
	return func(d *Driver) {
		d.logger = logger
	}
}

// WithMaxFilename bounds the names DirRead writes, NUL included.
func WithMaxFilename(n int) Option {
	return func(d *Driver) {
		if n > 1 {
			d.maxFilename = n
		}
	}
}

func NewDriver(backend sdfs.Backend, opts ...Option) *Driver {
	d := &Driver{
		backend:     backend,
		files:       make(map[uuid.UUID]sdfs.File),
		dirs:        make(map[uuid.UUID]sdfs.Dir),
		maxFilename: lvfs.MaxFilenameLength,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// OpenFiles returns the number of live file handles.
func (d *Driver) OpenFiles() int {
	return len(d.files)
}

// OpenDirs returns the number of live directory handles.
func (d *Driver) OpenDirs() int {
	return len(d.dirs)
}

// CloseAll releases every handle still open and returns how many there
// were. Callers that pair their opens and closes never leave any.
func (d *Driver) CloseAll() int {
	count := 0
	for id, f := range d.files {
		d.logger.Warn("sdcard: releasing leaked file handle", "handle", id)
		d.closeResource(f)
		delete(d.files, id)
		count++
	}
	for id, dir := range d.dirs {
		d.logger.Warn("sdcard: releasing leaked dir handle", "handle", id)
		d.closeResource(dir)
		delete(d.dirs, id)
		count++
	}
	return count
}

func (d *Driver) closeResource(c io.Closer) {
	if err := c.Close(); err != nil {
		d.logger.Warn("sdcard: close failed", "error", err)
	}
}

// guard owns a backend resource until it is handed to a handle; any
// return before that releases it.
type guard struct {
	d     *Driver
	c     io.Closer
	owned bool
}

func (d *Driver) hold(c io.Closer) *guard {
	return &guard{d: d, c: c}
}

func (g *guard) keep() {
	g.owned = true
}

func (g *guard) release() {
	if !g.owned {
		g.d.closeResource(g.c)
	}
}
