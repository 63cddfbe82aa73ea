package sdfs

import (
	"io"
	"os"
)

const SectorSize = 512

// BlockDevice is a random-access, read-only view of a storage device.
type BlockDevice interface {
	io.ReaderAt
	// Len returns the device size in bytes.
	Len() int64
	SectorSize() int
	Close() error
}

// FileDisk is a BlockDevice backed by a file: a card reader device node
// or a raw image dump of a card.
type FileDisk struct {
	f    *os.File
	size int64
}

// NewFileDisk wraps an already opened file.
func NewFileDisk(f *os.File) (*FileDisk, error) {
	size, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, Fatal(err)
	}
	return &FileDisk{f: f, size: size}, nil
}

func (d *FileDisk) ReadAt(p []byte, off int64) (int, error) {
	return d.f.ReadAt(p, off)
}

func (d *FileDisk) Len() int64 {
	return d.size
}

func (d *FileDisk) SectorSize() int {
	return SectorSize
}

// Close releases the disk; the underlying file is owned by the caller.
func (d *FileDisk) Close() error {
	d.f = nil
	return nil
}

// MemDisk is a BlockDevice over a byte slice.
type MemDisk struct {
	data []byte
}

func NewMemDisk(data []byte) *MemDisk {
	return &MemDisk{data: data}
}

func (d *MemDisk) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, ErrSeekRange
	}
	if off >= int64(len(d.data)) {
		return 0, io.EOF
	}
	n := copy(p, d.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (d *MemDisk) Len() int64 {
	return int64(len(d.data))
}

func (d *MemDisk) SectorSize() int {
	return SectorSize
}

func (d *MemDisk) Close() error {
	return nil
}

// SectionDisk exposes a window of another device, such as one partition
// of a card.
type SectionDisk struct {
	dev BlockDevice
	sr  *io.SectionReader
}

func NewSectionDisk(dev BlockDevice, offset, length int64) *SectionDisk {
	return &SectionDisk{
		dev: dev,
		sr:  io.NewSectionReader(dev, offset, length),
	}
}

func (d *SectionDisk) ReadAt(p []byte, off int64) (int, error) {
	return d.sr.ReadAt(p, off)
}

func (d *SectionDisk) Len() int64 {
	return d.sr.Size()
}

// Offset returns where the window starts on the parent device.
func (d *SectionDisk) Offset() int64 {
	_, off, _ := d.sr.Outer()
	return off
}

func (d *SectionDisk) SectorSize() int {
	return d.dev.SectorSize()
}

// Close closes the parent device.
func (d *SectionDisk) Close() error {
	return d.dev.Close()
}
