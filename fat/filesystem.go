package fat

import (
	"io/fs"
	"strings"

	"github.com/rstms/sdfs"
)

// FileSystem is the implementation of sdfs.FileSystem that can read a
// FAT filesystem.
type FileSystem struct {
	bs      *BootSectorCommon
	device  sdfs.BlockDevice
	fat     *FAT
	rootDir *DirectoryCluster
}

// ensure FileSystem implements sdfs.FileSystem
var _ sdfs.FileSystem = (*FileSystem)(nil)

// New returns a new FileSystem for accessing a previously created
// FAT filesystem.
func New(device sdfs.BlockDevice) (*FileSystem, error) {
	bs, err := DecodeBootSector(device)
	if err != nil {
		return nil, Fatal(err)
	}

	fat, err := DecodeFAT(device, bs, 0)
	if err != nil {
		return nil, Fatal(err)
	}

	var rootDir *DirectoryCluster
	if bs.FATType() == FAT32 {
		rootDir, err = DecodeFAT32RootDirectoryCluster(device, fat)
		if err != nil {
			return nil, Fatal(err)
		}
	} else {
		rootDir, err = DecodeFAT16RootDirectoryCluster(device, bs)
		if err != nil {
			return nil, Fatal(err)
		}
	}

	result := &FileSystem{
		bs:      bs,
		device:  device,
		fat:     fat,
		rootDir: rootDir,
	}

	return result, nil
}

func (f *FileSystem) RootDir() (sdfs.Directory, error) {
	return f.rootDirectory(), nil
}

func (f *FileSystem) rootDirectory() *Directory {
	return &Directory{
		fs:         f,
		dirCluster: f.rootDir,
	}
}

func (f *FileSystem) Info() (map[string]any, error) {
	info := map[string]any{
		"fat_type":            int(f.bs.FATType()),
		"oem_name":            f.bs.OEMName,
		"volume_label":        f.bs.VolumeLabel,
		"volume_id":           f.bs.VolumeID,
		"bytes_per_sector":    f.bs.BytesPerSector,
		"sectors_per_cluster": f.bs.SectorsPerCluster,
		"total_sectors":       f.bs.TotalSectors,
		"cluster_count":       f.bs.ClusterCount(),
		"fat_count":           f.bs.NumFATs,
	}
	return info, nil
}

func (f *FileSystem) FATType() (int, error) {
	return int(f.bs.FATType()), nil
}

func (f *FileSystem) OEMName() (string, error) {
	return f.bs.OEMName, nil
}

// VolumeLabel prefers the label entry in the root directory over the
// boot sector copy, which formatters often leave as "NO NAME".
func (f *FileSystem) VolumeLabel() (string, error) {
	for _, entry := range f.rootDir.entries {
		if entry.IsVolumeId() && !entry.deleted {
			return strings.TrimSpace(entry.name + entry.ext), nil
		}
	}
	return f.bs.VolumeLabel, nil
}

// lookup walks path from the root. The root itself is returned as a nil
// entry.
func (f *FileSystem) lookup(op, path string) (*DirectoryEntry, error) {
	name := strings.Trim(path, "/")
	if name == "" {
		return nil, nil
	}

	dir := f.rootDirectory()
	parts := strings.Split(name, "/")
	for i, part := range parts {
		found := dir.Entry(part)
		if found == nil {
			return nil, &fs.PathError{Op: op, Path: path, Err: fs.ErrNotExist}
		}
		entry := found.(*DirectoryEntry)
		if i == len(parts)-1 {
			return entry, nil
		}
		if !entry.IsDir() {
			return nil, &fs.PathError{Op: op, Path: path, Err: sdfs.ErrNotDir}
		}
		next, err := entry.Dir()
		if err != nil {
			return nil, Fatal(err)
		}
		dir = next.(*Directory)
	}
	return nil, &fs.PathError{Op: op, Path: path, Err: fs.ErrNotExist}
}

// Open implements sdfs.Backend. Opening a directory yields a File with
// IsDir set and nothing to read.
func (f *FileSystem) Open(path string) (sdfs.File, error) {
	entry, err := f.lookup("open", path)
	if err != nil {
		return nil, err
	}
	if entry == nil || entry.IsDir() {
		return &File{fs: f, isDir: true}, nil
	}
	return entry.File()
}

// OpenDir implements sdfs.Backend.
func (f *FileSystem) OpenDir(path string) (sdfs.Dir, error) {
	entry, err := f.lookup("opendir", path)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return newDirCursor(f.rootDirectory()), nil
	}
	if !entry.IsDir() {
		return &dirCursor{}, nil
	}
	dir, err := entry.Dir()
	if err != nil {
		return nil, Fatal(err)
	}
	return newDirCursor(dir.(*Directory)), nil
}

// dirCursor iterates a directory in on-disk order.
type dirCursor struct {
	dir     *Directory
	entries []*DirectoryEntry
	pos     int
	closed  bool
}

func newDirCursor(dir *Directory) *dirCursor {
	return &dirCursor{
		dir:     dir,
		entries: dir.decodeEntries(),
	}
}

func (c *dirCursor) IsDir() bool {
	return c.dir != nil
}

func (c *dirCursor) Rewind() error {
	if c.closed {
		return sdfs.ErrClosed
	}
	if c.dir == nil {
		return sdfs.ErrNotDir
	}
	c.pos = 0
	return nil
}

func (c *dirCursor) Next() (sdfs.Entry, error) {
	if c.closed {
		return nil, sdfs.ErrClosed
	}
	if c.dir == nil {
		return nil, sdfs.ErrNotDir
	}
	if c.pos >= len(c.entries) {
		return nil, nil
	}
	entry := c.entries[c.pos]
	c.pos++
	return entry, nil
}

func (c *dirCursor) Close() error {
	if c.closed {
		return sdfs.ErrClosed
	}
	c.closed = true
	c.entries = nil
	return nil
}
