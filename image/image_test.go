package image

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rstms/sdfs"
	"github.com/rstms/sdfs/internal/fattest"
	"github.com/stretchr/testify/require"
)

func writeImage(t *testing.T, opts fattest.Options) string {
	t.Helper()
	img := fattest.Build(opts,
		fattest.File("README.TXT", "read me"),
		fattest.Dir("EFI",
			fattest.Dir("BOOT", fattest.File("BOOTX64.EFI", "efi")),
		),
		fattest.Node{Name: "hidden.sys", Data: []byte("x"), Attr: sdfs.AttrHidden | sdfs.AttrSystem},
		fattest.Node{Name: "LOCKED", Data: []byte("ro"), Attr: sdfs.AttrReadOnly},
	)
	filename := filepath.Join(t.TempDir(), "card.img")
	require.Nil(t, os.WriteFile(filename, img, 0600))
	return filename
}

func openTestImage(t *testing.T) *Image {
	t.Helper()
	i, err := OpenImage(writeImage(t, fattest.Options{Label: "CARD", OEMName: "SDFS"}))
	require.Nil(t, err)
	t.Cleanup(func() { i.Close() })
	return i
}

func TestImageListFiles(t *testing.T) {
	i := openTestImage(t)
	records, err := i.ScanFiles()
	require.Nil(t, err)

	names := []string{}
	for _, record := range records {
		names = append(names, record.Name)
	}
	require.Equal(t, []string{
		"/README.TXT",
		"/EFI",
		"/EFI/BOOT",
		"/EFI/BOOT/BOOTX64.EFI",
		"/hidden.sys",
		"/LOCKED",
	}, names)

	require.Equal(t, "README.TXT", records[0].ShortName)
	require.Equal(t, int64(7), records[0].Size)
	require.True(t, records[1].Dir)
	require.True(t, records[2].Dir)
	require.Equal(t, int64(0), records[2].Size)
	require.Equal(t, int64(3), records[3].Size)
	require.True(t, records[4].Hidden)
	require.True(t, records[4].System)
	require.False(t, records[4].ReadOnly)
	require.True(t, records[5].ReadOnly)
	require.False(t, records[5].Hidden)
}

func TestImageIsDir(t *testing.T) {
	i := openTestImage(t)

	ret, err := i.IsDir("/")
	require.Nil(t, err)
	require.True(t, ret)

	ret, err = i.IsDir("/foo")
	require.Nil(t, err)
	require.False(t, ret)

	ret, err = i.IsDir("foo/bar/baz")
	require.Nil(t, err)
	require.False(t, ret)

	ret, err = i.IsDir("README.TXT")
	require.Nil(t, err)
	require.False(t, ret)

	ret, err = i.IsDir("EFI")
	require.Nil(t, err)
	require.True(t, ret)

	ret, err = i.IsDir("efi/boot")
	require.Nil(t, err)
	require.True(t, ret)

	ret, err = i.IsDir("EFI/BOOT/GROOT")
	require.Nil(t, err)
	require.False(t, ret)
}

func TestImageReadFile(t *testing.T) {
	i := openTestImage(t)

	data, err := i.ReadFile("/EFI/BOOT/BOOTX64.EFI")
	require.Nil(t, err)
	require.Equal(t, "efi", string(data))

	data, err = i.ReadFile("README.TXT")
	require.Nil(t, err)
	require.Equal(t, "read me", string(data))

	_, err = i.ReadFile("/EFI")
	require.NotNil(t, err)

	_, err = i.ReadFile("/nope.txt")
	require.NotNil(t, err)
}

func TestImageAttrAndLabels(t *testing.T) {
	i := openTestImage(t)

	attr, err := i.GetAttr("LOCKED")
	require.Nil(t, err)
	require.Equal(t, sdfs.AttrReadOnly, attr&sdfs.AttrReadOnly)

	label, err := i.VolumeLabel()
	require.Nil(t, err)
	require.Equal(t, "CARD", label)

	oem, err := i.OEMName()
	require.Nil(t, err)
	require.Equal(t, "SDFS", oem)

	info, err := i.Info()
	require.Nil(t, err)
	require.Equal(t, 12, info["fat_type"])
	require.Equal(t, int64(0), info["volume_offset"])
}

func TestImagePartitioned(t *testing.T) {
	filename := writeImage(t, fattest.Options{Label: "PART", MBR: true})
	i, err := OpenImage(filename)
	require.Nil(t, err)
	defer i.Close()

	info, err := i.Info()
	require.Nil(t, err)
	require.Equal(t, int64(8*sdfs.SectorSize), info["volume_offset"])

	data, err := i.ReadFile("README.TXT")
	require.Nil(t, err)
	require.Equal(t, "read me", string(data))
}

func TestImageServesBackend(t *testing.T) {
	i := openTestImage(t)
	var backend sdfs.Backend = i.FileSystem()

	dir, err := backend.OpenDir("/EFI/BOOT/")
	require.Nil(t, err)
	defer dir.Close()
	require.True(t, dir.IsDir())
	entry, err := dir.Next()
	require.Nil(t, err)
	require.Equal(t, ".", entry.Name())
}

func TestOpenImageErrors(t *testing.T) {
	_, err := OpenImage(filepath.Join(t.TempDir(), "missing.img"))
	require.NotNil(t, err)

	junk := filepath.Join(t.TempDir(), "junk.img")
	require.Nil(t, os.WriteFile(junk, make([]byte, 4096), 0600))
	_, err = OpenImage(junk)
	require.NotNil(t, err)
}
