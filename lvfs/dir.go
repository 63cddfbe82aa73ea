package lvfs

import "bytes"

// Dir is an open directory as the toolkit sees it.
type Dir struct {
	drive *Drive
	h     DirHandle
	path  string
}

// DirOpen opens a toolkit directory path such as "S:/images/".
func (r *Registry) DirOpen(path string) (*Dir, Result) {
	d, rel, err := r.Resolve(path)
	if err != nil {
		r.logger.Debug("lvfs: dir open", "path", path, "error", err)
		return nil, ResUnknown
	}
	h, res := d.Callbacks.DirOpen(rel)
	if res != ResOK {
		return nil, res
	}
	if !h.IsValid() {
		return nil, ResUnknown
	}
	return &Dir{drive: d, h: h, path: path}, ResOK
}

func (d *Dir) Path() string {
	return d.path
}

func (d *Dir) Handle() DirHandle {
	return d.h
}

// Read fills fn with the next NUL terminated entry name.
func (d *Dir) Read(fn []byte) Result {
	return d.drive.Callbacks.DirRead(d.h, fn)
}

// ReadName returns the next entry name; "" with ResOK is the end.
func (d *Dir) ReadName() (string, Result) {
	var fn [MaxFilenameLength]byte
	res := d.Read(fn[:])
	if res != ResOK {
		return "", res
	}
	return CString(fn[:]), ResOK
}

func (d *Dir) Close() Result {
	res := d.drive.Callbacks.DirClose(d.h)
	d.h = DirHandle{}
	return res
}

// CString returns the bytes of buf up to the first NUL.
func CString(buf []byte) string {
	if i := bytes.IndexByte(buf, 0); i >= 0 {
		return string(buf[:i])
	}
	return string(buf)
}
