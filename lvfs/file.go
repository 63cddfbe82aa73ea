package lvfs

// File is an open file as the toolkit sees it: the drive that opened it
// and the driver's handle.
type File struct {
	drive *Drive
	h     FileHandle
	path  string
}

// Open opens a toolkit path such as "S:/images/a.bin".
func (r *Registry) Open(path string, mode Mode) (*File, Result) {
	d, rel, err := r.Resolve(path)
	if err != nil {
		r.logger.Debug("lvfs: open", "path", path, "error", err)
		return nil, ResUnknown
	}
	h, res := d.Callbacks.FileOpen(rel, mode)
	if res != ResOK {
		return nil, res
	}
	if !h.IsValid() {
		return nil, ResUnknown
	}
	return &File{drive: d, h: h, path: path}, ResOK
}

func (f *File) Path() string {
	return f.path
}

func (f *File) Handle() FileHandle {
	return f.h
}

func (f *File) Read(buf []byte) (int, Result) {
	return f.drive.Callbacks.FileRead(f.h, buf)
}

func (f *File) SeekTo(pos int64, whence Whence) Result {
	return f.drive.Callbacks.FileSeek(f.h, pos, whence)
}

func (f *File) Tell() (int64, Result) {
	return f.drive.Callbacks.FileTell(f.h)
}

// Close closes the file. The handle is cleared, so a second Close
// reaches the driver as a null handle.
func (f *File) Close() Result {
	res := f.drive.Callbacks.FileClose(f.h)
	f.h = FileHandle{}
	return res
}
