package image

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/rstms/sdfs"
	"github.com/rstms/sdfs/fat"
)

type FileRecord struct {
	Name      string
	ShortName string
	Dir       bool
	Hidden    bool
	System    bool
	ReadOnly  bool
	Size      int64
	Attr      sdfs.DirectoryAttr
}

// Image is a card image or raw card device opened read only.
type Image struct {
	Filename string
	file     *os.File
	disk     *sdfs.FileDisk
	volume   sdfs.BlockDevice
	fs       *fat.FileSystem
}

func OpenImage(filename string) (*Image, error) {
	i := Image{Filename: filename}
	var err error
	i.file, err = os.Open(filename)
	if err != nil {
		return nil, Fatal(err)
	}
	i.disk, err = sdfs.NewFileDisk(i.file)
	if err != nil {
		i.Close()
		return nil, Fatal(err)
	}
	i.volume, err = fat.FindVolume(i.disk)
	if err != nil {
		i.Close()
		return nil, Fatal(err)
	}
	i.fs, err = fat.New(i.volume)
	if err != nil {
		i.Close()
		return nil, Fatal(err)
	}
	slog.Debug("image: opened", "filename", filename, "size", i.disk.Len(), "volume", i.volume.Len())
	return &i, nil
}

// FileSystem returns the FAT volume, which serves as an sdfs.Backend.
func (i *Image) FileSystem() *fat.FileSystem {
	return i.fs
}

func (i *Image) closeFile() error {
	if i.file != nil {
		err := i.file.Close()
		if err != nil {
			return Fatal(err)
		}
		i.file = nil
	}
	return nil
}

func (i *Image) closeDisk() error {
	if i.disk != nil {
		err := i.disk.Close()
		if err != nil {
			return Fatal(err)
		}
		i.disk = nil
		i.volume = nil
	}
	return nil
}

func (i *Image) Close() error {
	err := i.closeDisk()
	if ferr := i.closeFile(); err == nil {
		err = ferr
	}
	return err
}

func (i *Image) ScanFiles() ([]FileRecord, error) {

	ret := []FileRecord{}

	imgRoot, err := i.fs.RootDir()
	if err != nil {
		return ret, Fatal(err)
	}

	records, err := walk("/", imgRoot)
	if err != nil {
		return ret, Fatal(err)
	}

	return records, nil
}

// searchDir returns the directory at name, or nil if some element of
// the path is missing or is not a directory.
func (i *Image) searchDir(name string) (sdfs.Directory, error) {
	dir, err := i.fs.RootDir()
	if err != nil {
		return nil, Fatal(err)
	}
	name = strings.Trim(filepath.ToSlash(name), "/")
	if name == "" {
		return dir, nil
	}
	for _, sub := range strings.Split(name, "/") {
		entry := dir.Entry(sub)
		if entry == nil {
			slog.Debug("image: not found", "path", name, "element", sub)
			return nil, nil
		}
		if !entry.IsDir() {
			slog.Debug("image: not a directory", "path", name, "element", entry.Name())
			return nil, nil
		}
		dir, err = entry.Dir()
		if err != nil {
			return nil, Fatal(err)
		}
	}
	return dir, nil
}

func (i *Image) getDir(name string) (sdfs.Directory, error) {
	dir, err := i.searchDir(name)
	if err != nil {
		return nil, Fatal(err)
	}
	if dir == nil {
		return nil, Fatalf("directory not found: %s", name)
	}
	return dir, nil
}

func (i *Image) getEntry(filename string) (sdfs.DirectoryEntry, error) {
	path, name := filepath.Split(filename)
	dir, err := i.getDir(path)
	if err != nil {
		return nil, Fatal(err)
	}
	entry := dir.Entry(name)
	if entry == nil {
		return nil, Fatalf("not found: %s", filename)
	}
	return entry, nil
}

func (i *Image) IsDir(name string) (bool, error) {
	dir, err := i.searchDir(name)
	if err != nil {
		return false, Fatal(err)
	}
	return dir != nil, nil
}

func walk(path string, dir sdfs.Directory) ([]FileRecord, error) {
	records := []FileRecord{}
	for _, entry := range dir.Entries() {
		switch {
		case entry.Name() == ".":
		case entry.Name() == "..":
		case entry.IsVolumeId():
		default:
			attr := entry.Attr()
			record := FileRecord{
				Name:      filepath.Join(path, entry.Name()),
				ShortName: entry.ShortName(),
				Dir:       attr&sdfs.AttrDirectory == sdfs.AttrDirectory,
				Hidden:    attr&sdfs.AttrHidden == sdfs.AttrHidden,
				System:    attr&sdfs.AttrSystem == sdfs.AttrSystem,
				ReadOnly:  attr&sdfs.AttrReadOnly == sdfs.AttrReadOnly,
				Attr:      attr,
			}
			if sized, ok := entry.(interface{ Size() int64 }); ok && !record.Dir {
				record.Size = sized.Size()
			}
			records = append(records, record)
			if entry.IsDir() {
				subdir, err := entry.Dir()
				if err != nil {
					return []FileRecord{}, Fatal(err)
				}
				subRecords, err := walk(filepath.Join(path, entry.Name()), subdir)
				if err != nil {
					return []FileRecord{}, Fatal(err)
				}
				records = append(records, subRecords...)
			}
		}
	}
	return records, nil
}

func (i *Image) ReadFile(filename string) ([]byte, error) {
	entry, err := i.getEntry(filename)
	if err != nil {
		return []byte{}, Fatal(err)
	}
	if entry.IsDir() {
		return []byte{}, Fatalf("%s: %v", filename, sdfs.ErrIsDir)
	}
	src, err := entry.File()
	if err != nil {
		return []byte{}, Fatal(err)
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return []byte{}, Fatal(err)
	}
	slog.Debug("image: read", "filename", filename, "bytes", len(data))
	return data, nil
}

func (i *Image) GetAttr(filename string) (sdfs.DirectoryAttr, error) {
	entry, err := i.getEntry(filename)
	if err != nil {
		return 0, Fatal(err)
	}
	return entry.Attr(), nil
}

func (i *Image) VolumeLabel() (string, error) {
	return i.fs.VolumeLabel()
}

func (i *Image) OEMName() (string, error) {
	return i.fs.OEMName()
}

func (i *Image) Info() (map[string]any, error) {
	info, err := i.fs.Info()
	if err != nil {
		return nil, Fatal(err)
	}
	info["filename"] = i.Filename
	info["image_size"] = i.disk.Len()
	info["volume_offset"] = int64(0)
	if section, ok := i.volume.(*sdfs.SectionDisk); ok {
		info["volume_offset"] = section.Offset()
	}
	return info, nil
}
