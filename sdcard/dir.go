package sdcard

import (
	"unicode/utf8"

	"github.com/rstms/sdfs/lvfs"
)

// DirOpen opens path for iteration, positioned at the first entry.
func (d *Driver) DirOpen(path string) (lvfs.DirHandle, lvfs.Result) {
	dir, err := d.backend.OpenDir(path)
	if err != nil {
		d.logger.Debug("sdcard: dir open failed", "path", path, "error", err)
		return lvfs.DirHandle{}, lvfs.ResUnknown
	}
	g := d.hold(dir)
	defer g.release()

	if !dir.IsDir() {
		d.logger.Debug("sdcard: dir open failed, not a directory", "path", path)
		return lvfs.DirHandle{}, lvfs.ResUnknown
	}
	if err := dir.Rewind(); err != nil {
		d.logger.Debug("sdcard: rewind failed", "path", path, "error", err)
		return lvfs.DirHandle{}, lvfs.ResUnknown
	}

	h := lvfs.NewDirHandle()
	d.dirs[h.ID()] = dir
	g.keep()
	return h, lvfs.ResOK
}

// DirRead writes the next entry name into fn, NUL terminated and
// truncated to fit. Directories get a leading '/'. At the end of the
// directory fn holds the empty name and the result is still ResOK. An
// entry whose name does not fit at all reports ResUnknown, so the empty
// name always means the end.
func (d *Driver) DirRead(h lvfs.DirHandle, fn []byte) lvfs.Result {
	dir, ok := d.dirs[h.ID()]
	if !ok || len(fn) == 0 {
		return lvfs.ResUnknown
	}

	entry, err := dir.Next()
	if err != nil {
		d.logger.Debug("sdcard: dir read failed", "handle", h, "error", err)
		return lvfs.ResUnknown
	}
	if entry == nil {
		fn[0] = 0
		return lvfs.ResOK
	}
	defer d.closeResource(entry)

	name := entry.Name()
	if entry.IsDir() {
		name = string(lvfs.DirPrefix) + name
	}
	if copyName(fn, name, d.maxFilename) == 0 && name != "" {
		d.logger.Debug("sdcard: dir read failed, name does not fit", "handle", h, "name", name, "size", len(fn))
		return lvfs.ResUnknown
	}
	return lvfs.ResOK
}

// copyName copies name into dst as a NUL terminated string of at most
// limit bytes, cutting on a rune boundary. It returns the number of name
// bytes written.
func copyName(dst []byte, name string, limit int) int {
	if len(dst) < limit {
		limit = len(dst)
	}
	n := len(name)
	if n > limit-1 {
		n = limit - 1
		for n > 0 && !utf8.RuneStart(name[n]) {
			n--
		}
	}
	copy(dst, name[:n])
	dst[n] = 0
	return n
}

// DirClose closes the directory behind h. A null or unknown handle
// reports ResUnknown and changes nothing.
func (d *Driver) DirClose(h lvfs.DirHandle) lvfs.Result {
	dir, ok := d.dirs[h.ID()]
	if !h.IsValid() || !ok {
		return lvfs.ResUnknown
	}
	delete(d.dirs, h.ID())
	d.closeResource(dir)
	return lvfs.ResOK
}
