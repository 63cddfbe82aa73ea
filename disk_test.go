package sdfs

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemDisk(t *testing.T) {
	d := NewMemDisk([]byte("0123456789"))
	require.Equal(t, int64(10), d.Len())
	require.Equal(t, SectorSize, d.SectorSize())

	buf := make([]byte, 4)
	n, err := d.ReadAt(buf, 2)
	require.Nil(t, err)
	require.Equal(t, "2345", string(buf[:n]))

	n, err = d.ReadAt(buf, 8)
	require.ErrorIs(t, err, io.EOF)
	require.Equal(t, "89", string(buf[:n]))

	_, err = d.ReadAt(buf, -1)
	require.ErrorIs(t, err, ErrSeekRange)
}

func TestSectionDisk(t *testing.T) {
	parent := NewMemDisk([]byte("headerVOLUMEtrailer"))
	d := NewSectionDisk(parent, 6, 6)
	require.Equal(t, int64(6), d.Len())
	require.Equal(t, int64(6), d.Offset())

	buf := make([]byte, 6)
	n, err := d.ReadAt(buf, 0)
	require.Nil(t, err)
	require.Equal(t, "VOLUME", string(buf[:n]))

	n, err = d.ReadAt(buf, 4)
	require.ErrorIs(t, err, io.EOF)
	require.Equal(t, "ME", string(buf[:n]))
	require.Nil(t, d.Close())
}

func TestSectionDiskOffset(t *testing.T) {
	parent := NewMemDisk([]byte("mbrVOLUMEtail"))
	d := NewSectionDisk(parent, 3, 6)
	require.Equal(t, int64(3), d.Offset())
	require.Equal(t, int64(6), d.Len())

	nested := NewSectionDisk(d, 2, 4)
	require.Equal(t, int64(2), nested.Offset())
	buf := make([]byte, 4)
	n, err := nested.ReadAt(buf, 0)
	require.Nil(t, err)
	require.Equal(t, "LUME", string(buf[:n]))
}

func TestFileDisk(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "disk.img")
	require.Nil(t, os.WriteFile(filename, make([]byte, 2*SectorSize), 0o600))
	f, err := os.Open(filename)
	require.Nil(t, err)
	defer f.Close()

	d, err := NewFileDisk(f)
	require.Nil(t, err)
	require.Equal(t, int64(2*SectorSize), d.Len())
	buf := make([]byte, SectorSize)
	n, err := d.ReadAt(buf, SectorSize)
	require.Nil(t, err)
	require.Equal(t, SectorSize, n)
	require.Nil(t, d.Close())
}
