package fat

import (
	"io"

	"github.com/rstms/sdfs"
)

// File is a read-only cursor over the cluster chain of one file.
type File struct {
	fs       *FileSystem
	clusters []uint32
	size     int64
	pos      int64
	isDir    bool
	closed   bool
}

// ensure File implements sdfs.File
var _ sdfs.File = (*File)(nil)

func (f *File) Read(p []byte) (int, error) {
	if f.closed {
		return 0, sdfs.ErrClosed
	}
	if f.pos >= f.size {
		return 0, io.EOF
	}

	clusterBytes := int64(f.fs.bs.BytesPerCluster())
	n := 0
	for n < len(p) && f.pos < f.size {
		index := f.pos / clusterBytes
		offset := f.pos % clusterBytes
		count := clusterBytes - offset
		if remain := f.size - f.pos; count > remain {
			count = remain
		}
		if want := int64(len(p) - n); count > want {
			count = want
		}

		at := f.fs.bs.ClusterOffset(f.clusters[index]) + offset
		read, err := f.fs.device.ReadAt(p[n:n+int(count)], at)
		n += read
		f.pos += int64(read)
		if err != nil && read < int(count) {
			return n, Fatal(err)
		}
	}
	return n, nil
}

func (f *File) SeekTo(offset int64) error {
	if f.closed {
		return sdfs.ErrClosed
	}
	if offset < 0 || offset > f.size {
		return sdfs.ErrSeekRange
	}
	f.pos = offset
	return nil
}

func (f *File) Position() int64 {
	return f.pos
}

func (f *File) Available() int64 {
	if f.closed {
		return 0
	}
	return f.size - f.pos
}

func (f *File) Size() int64 {
	return f.size
}

func (f *File) IsDir() bool {
	return f.isDir
}

func (f *File) Close() error {
	if f.closed {
		return sdfs.ErrClosed
	}
	f.closed = true
	f.clusters = nil
	return nil
}
