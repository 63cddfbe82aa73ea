// Package sdtest provides a scripted sdfs.Backend that counts the
// resources it hands out, for testing drivers without a card.
package sdtest

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"strings"

	"github.com/rstms/sdfs"
)

var ErrInjected = errors.New("injected read error")

// Node is one scripted directory entry.
type Node struct {
	Name string
	Dir  bool
}

func F(name string) Node {
	return Node{Name: name}
}

func D(name string) Node {
	return Node{Name: name, Dir: true}
}

// Backend serves scripted files and directories. Directory entries come
// back in the order they were added.
type Backend struct {
	files        map[string][]byte
	dirs         map[string][]Node
	failAfter    map[string]int
	calls        int
	live         int
	doubleCloses int
}

// ensure Backend implements sdfs.Backend
var _ sdfs.Backend = (*Backend)(nil)

func New() *Backend {
	return &Backend{
		files:     make(map[string][]byte),
		dirs:      map[string][]Node{"/": nil},
		failAfter: make(map[string]int),
	}
}

func clean(p string) string {
	if p == "" {
		return "/"
	}
	p = path.Clean(p)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}

// AddDir scripts the entries of directory p. Entries are only names;
// script their contents with AddFile and AddDir.
func (b *Backend) AddDir(p string, entries ...Node) *Backend {
	b.dirs[clean(p)] = entries
	return b
}

func (b *Backend) AddFile(p string, data []byte) *Backend {
	b.files[clean(p)] = data
	return b
}

// FailAfter makes iteration of directory p fail once n entries have
// been returned.
func (b *Backend) FailAfter(p string, n int) *Backend {
	b.failAfter[clean(p)] = n
	return b
}

// Calls returns how many times Open or OpenDir was called.
func (b *Backend) Calls() int {
	return b.calls
}

// Live returns the number of files, directories and entries handed out
// and not yet closed.
func (b *Backend) Live() int {
	return b.live
}

// DoubleCloses returns how many times a resource was closed twice.
func (b *Backend) DoubleCloses() int {
	return b.doubleCloses
}

func (b *Backend) Open(p string) (sdfs.File, error) {
	b.calls++
	p = clean(p)
	if _, ok := b.dirs[p]; ok {
		b.live++
		return &file{res: resource{b: b}, isDir: true}, nil
	}
	data, ok := b.files[p]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: p, Err: fs.ErrNotExist}
	}
	b.live++
	return &file{res: resource{b: b}, data: data}, nil
}

func (b *Backend) OpenDir(p string) (sdfs.Dir, error) {
	b.calls++
	p = clean(p)
	if entries, ok := b.dirs[p]; ok {
		b.live++
		limit, fail := b.failAfter[p]
		if !fail {
			limit = -1
		}
		return &dir{res: resource{b: b}, entries: entries, failAfter: limit, isDir: true}, nil
	}
	if _, ok := b.files[p]; ok {
		b.live++
		return &dir{res: resource{b: b}, failAfter: -1}, nil
	}
	return nil, &fs.PathError{Op: "opendir", Path: p, Err: fs.ErrNotExist}
}

type resource struct {
	b      *Backend
	closed bool
}

func (r *resource) Close() error {
	if r.closed {
		r.b.doubleCloses++
		return sdfs.ErrClosed
	}
	r.closed = true
	r.b.live--
	return nil
}

type file struct {
	res   resource
	data  []byte
	pos   int64
	isDir bool
}

func (f *file) Read(p []byte) (int, error) {
	if f.res.closed {
		return 0, sdfs.ErrClosed
	}
	if f.pos >= int64(len(f.data)) {
		return 0, io.EOF
	}
	n := copy(p, f.data[f.pos:])
	f.pos += int64(n)
	return n, nil
}

func (f *file) SeekTo(pos int64) error {
	if pos < 0 || pos > int64(len(f.data)) {
		return fmt.Errorf("%w: %d", sdfs.ErrSeekRange, pos)
	}
	f.pos = pos
	return nil
}

func (f *file) Position() int64 {
	return f.pos
}

func (f *file) Available() int64 {
	return int64(len(f.data)) - f.pos
}

func (f *file) IsDir() bool {
	return f.isDir
}

func (f *file) Close() error {
	return f.res.Close()
}

type dir struct {
	res       resource
	entries   []Node
	next      int
	failAfter int
	isDir     bool
}

func (d *dir) IsDir() bool {
	return d.isDir
}

func (d *dir) Rewind() error {
	d.next = 0
	return nil
}

func (d *dir) Next() (sdfs.Entry, error) {
	if d.res.closed {
		return nil, sdfs.ErrClosed
	}
	if d.failAfter >= 0 && d.next >= d.failAfter {
		return nil, ErrInjected
	}
	if d.next >= len(d.entries) {
		return nil, nil
	}
	n := d.entries[d.next]
	d.next++
	d.res.b.live++
	return &entry{res: resource{b: d.res.b}, node: n}, nil
}

func (d *dir) Close() error {
	return d.res.Close()
}

type entry struct {
	res  resource
	node Node
}

func (e *entry) Name() string {
	return e.node.Name
}

func (e *entry) IsDir() bool {
	return e.node.Dir
}

func (e *entry) Close() error {
	return e.res.Close()
}
