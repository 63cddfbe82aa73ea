package lvfs

// Callbacks is the set of operations a driver installs for its drive.
// Paths arrive with the drive prefix already stripped.
type Callbacks interface {
	FileOpen(path string, mode Mode) (FileHandle, Result)
	FileClose(h FileHandle) Result
	FileRead(h FileHandle, buf []byte) (int, Result)
	FileSeek(h FileHandle, pos int64, whence Whence) Result
	FileTell(h FileHandle) (int64, Result)

	DirOpen(path string) (DirHandle, Result)
	// DirRead writes the next entry name into fn as a NUL terminated
	// string. An empty name with ResOK marks the end of the directory.
	DirRead(h DirHandle, fn []byte) Result
	DirClose(h DirHandle) Result
}
