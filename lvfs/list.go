package lvfs

import (
	"log/slog"
	"strings"
)

// HiddenPrefix marks platform metadata files, such as the AppleDouble
// files macOS leaves on removable media.
const HiddenPrefix = "._"

// DirOpener opens toolkit directory paths. Registry implements it.
type DirOpener interface {
	DirOpen(path string) (*Dir, Result)
}

// IsListable reports whether a name returned by a directory read is a
// plain, visible file.
func IsListable(name string) bool {
	switch {
	case name == "", name == ".", name == "..":
		return false
	case name[0] == DirPrefix:
		return false
	case strings.HasPrefix(name, HiddenPrefix):
		return false
	}
	return true
}

// ReadDirectoryFileList returns the plain file names directly under
// path, in the order the driver reports them. Subdirectories, "." and
// "..", and hidden metadata files are left out. A directory that cannot
// be opened yields an empty list.
func ReadDirectoryFileList(o DirOpener, path string) []string {
	return readDirectoryFileList(o, path, slog.Default())
}

func readDirectoryFileList(o DirOpener, path string, logger *slog.Logger) []string {
	files := []string{}

	dir, res := o.DirOpen(path)
	if res != ResOK {
		logger.Warn("lvfs: error opening directory", "path", path, "result", res)
		return files
	}
	defer dir.Close()

	logger.Debug("lvfs: reading directory", "path", path)

	var fn [MaxFilenameLength]byte
	for {
		res = dir.Read(fn[:])
		if res != ResOK {
			logger.Warn("lvfs: error reading directory entry", "path", path, "result", res)
			break
		}

		name := CString(fn[:])
		if name == "" {
			break
		}

		if IsListable(name) {
			files = append(files, name)
			logger.Debug("lvfs: found", "name", name)
		}
	}

	logger.Debug("lvfs: finished reading directory", "path", path, "files", len(files))
	return files
}

// ReadDirectoryFileList lists path using the registry's logger.
func (r *Registry) ReadDirectoryFileList(path string) []string {
	return readDirectoryFileList(r, path, r.logger)
}
