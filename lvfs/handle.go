package lvfs

import "github.com/google/uuid"

// FileHandle is the opaque reference the toolkit holds for an open file.
// The zero value is the null handle.
type FileHandle struct {
	id uuid.UUID
}

// DirHandle is the opaque reference the toolkit holds for an open
// directory. It is a distinct type so it can never be passed to a file
// operation.
type DirHandle struct {
	id uuid.UUID
}

func NewFileHandle() FileHandle {
	return FileHandle{id: uuid.New()}
}

func NewDirHandle() DirHandle {
	return DirHandle{id: uuid.New()}
}

func (h FileHandle) ID() uuid.UUID {
	return h.id
}

func (h FileHandle) IsValid() bool {
	return h.id != uuid.Nil
}

func (h FileHandle) String() string {
	return "file:" + h.id.String()
}

func (h DirHandle) ID() uuid.UUID {
	return h.id
}

func (h DirHandle) IsValid() bool {
	return h.id != uuid.Nil
}

func (h DirHandle) String() string {
	return "dir:" + h.id.String()
}
