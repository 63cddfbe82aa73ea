// Package lvfs is the toolkit side of the file layer: the result codes,
// open modes and opaque handles the UI toolkit understands, the drive
// registry that routes drive-letter paths to a registered driver, and
// the directory listing helper built on top of it.
package lvfs

import "fmt"

// Result is the status a driver callback reports to the toolkit. The
// toolkit recognizes only these classes.
type Result int

const (
	ResOK      Result = 0
	ResNotImp  Result = 9
	ResUnknown Result = 12
)

func (r Result) String() string {
	switch r {
	case ResOK:
		return "OK"
	case ResNotImp:
		return "NOT_IMP"
	case ResUnknown:
		return "UNKNOWN"
	}
	return fmt.Sprintf("Result(%d)", int(r))
}

// Mode is the open intent requested by the toolkit.
type Mode uint8

const (
	ModeWrite     Mode = 0x01
	ModeRead      Mode = 0x02
	ModeReadWrite      = ModeWrite | ModeRead
)

func (m Mode) String() string {
	switch m {
	case ModeRead:
		return "r"
	case ModeWrite:
		return "w"
	case ModeReadWrite:
		return "rw"
	}
	return fmt.Sprintf("Mode(%#x)", uint8(m))
}

// Whence is the origin of a seek.
type Whence int

const (
	SeekSet Whence = iota
	SeekCur
	SeekEnd
)

// MaxFilenameLength bounds directory entry names handed to the toolkit,
// including the terminating NUL.
const MaxFilenameLength = 256

// DirPrefix marks directory entries in names returned by a driver.
const DirPrefix = '/'
