package sdcard

import (
	"errors"
	"io"

	"github.com/rstms/sdfs/lvfs"
)

// FileOpen opens path for reading. Any mode but read is refused before
// the card is touched. Directories and files with nothing to read are
// refused too, and the backend file is released before returning.
func (d *Driver) FileOpen(path string, mode lvfs.Mode) (lvfs.FileHandle, lvfs.Result) {
	if mode != lvfs.ModeRead {
		d.logger.Debug("sdcard: open refused, read only", "path", path, "mode", mode)
		return lvfs.FileHandle{}, lvfs.ResUnknown
	}

	f, err := d.backend.Open(path)
	if err != nil {
		d.logger.Debug("sdcard: open failed", "path", path, "error", err)
		return lvfs.FileHandle{}, lvfs.ResUnknown
	}
	g := d.hold(f)
	defer g.release()

	if f.IsDir() {
		d.logger.Debug("sdcard: open failed, not a file", "path", path)
		return lvfs.FileHandle{}, lvfs.ResUnknown
	}
	if f.Available() == 0 {
		d.logger.Debug("sdcard: open failed, nothing to read", "path", path)
		return lvfs.FileHandle{}, lvfs.ResUnknown
	}

	h := lvfs.NewFileHandle()
	d.files[h.ID()] = f
	g.keep()
	return h, lvfs.ResOK
}

// FileClose closes the file behind h. A null or unknown handle reports
// ResUnknown and changes nothing.
func (d *Driver) FileClose(h lvfs.FileHandle) lvfs.Result {
	f, ok := d.files[h.ID()]
	if !h.IsValid() || !ok {
		return lvfs.ResUnknown
	}
	delete(d.files, h.ID())
	d.closeResource(f)
	return lvfs.ResOK
}

// FileRead reads up to len(buf) bytes. Reading nothing, at the end of
// the file, reports ResUnknown with a zero count.
func (d *Driver) FileRead(h lvfs.FileHandle, buf []byte) (int, lvfs.Result) {
	f, ok := d.files[h.ID()]
	if !ok {
		return 0, lvfs.ResUnknown
	}
	n, err := f.Read(buf)
	if err != nil && !errors.Is(err, io.EOF) {
		d.logger.Debug("sdcard: read failed", "handle", h, "error", err)
	}
	if n > 0 {
		return n, lvfs.ResOK
	}
	return 0, lvfs.ResUnknown
}

func (d *Driver) FileTell(h lvfs.FileHandle) (int64, lvfs.Result) {
	f, ok := d.files[h.ID()]
	if !ok {
		return 0, lvfs.ResUnknown
	}
	return f.Position(), lvfs.ResOK
}

// FileSeek supports absolute offsets only.
func (d *Driver) FileSeek(h lvfs.FileHandle, pos int64, whence lvfs.Whence) lvfs.Result {
	if whence != lvfs.SeekSet {
		return lvfs.ResNotImp
	}
	f, ok := d.files[h.ID()]
	if !ok {
		return lvfs.ResUnknown
	}
	if err := f.SeekTo(pos); err != nil {
		d.logger.Debug("sdcard: seek failed", "handle", h, "pos", pos, "error", err)
		return lvfs.ResUnknown
	}
	return lvfs.ResOK
}
