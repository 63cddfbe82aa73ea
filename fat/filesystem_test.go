package fat

import (
	"io"
	"io/fs"
	"strings"
	"testing"

	"github.com/rstms/sdfs"
	"github.com/rstms/sdfs/internal/fattest"
	"github.com/stretchr/testify/require"
)

func TestFileSystemImplementsFileSystem(t *testing.T) {
	var raw interface{}
	raw = new(FileSystem)
	if _, ok := raw.(sdfs.FileSystem); !ok {
		t.Fatal("FileSystem should be a FileSystem")
	}
}

func testImage() []byte {
	return fattest.Build(fattest.Options{Label: "CARD", OEMName: "MSDOS5.0"},
		fattest.File("README.TXT", "read me"),
		fattest.Dir("images",
			fattest.File("a.txt", "alpha"),
			fattest.File("b.txt", "bravo"),
			fattest.Node{Name: "._meta", Data: []byte("apple"), Attr: sdfs.AttrHidden},
			fattest.Dir("sub", fattest.File("deep.bin", "deep")),
		),
		fattest.Node{Name: "gone.txt", Data: []byte("deleted"), Deleted: true},
		fattest.File("empty.txt", ""),
		fattest.Node{Name: "big.bin", Data: pattern(1500)},
	)
}

func pattern(n int) []byte {
	data := make([]byte, n)
	for i := range data {
		data[i] = byte(i % 251)
	}
	return data
}

func openTestFS(t *testing.T) *FileSystem {
	t.Helper()
	f, err := New(sdfs.NewMemDisk(testImage()))
	require.Nil(t, err)
	return f
}

func names(t *testing.T, d sdfs.Dir) []string {
	t.Helper()
	var result []string
	for {
		entry, err := d.Next()
		require.Nil(t, err)
		if entry == nil {
			return result
		}
		result = append(result, entry.Name())
		require.Nil(t, entry.Close())
	}
}

func TestFileSystemInfo(t *testing.T) {
	f := openTestFS(t)

	fatType, err := f.FATType()
	require.Nil(t, err)
	require.Equal(t, 12, fatType)

	oem, err := f.OEMName()
	require.Nil(t, err)
	require.Equal(t, "MSDOS5.0", oem)

	label, err := f.VolumeLabel()
	require.Nil(t, err)
	require.Equal(t, "CARD", label)

	info, err := f.Info()
	require.Nil(t, err)
	require.Equal(t, uint16(512), info["bytes_per_sector"])
}

func TestFileSystemRootEntries(t *testing.T) {
	f := openTestFS(t)
	root, err := f.RootDir()
	require.Nil(t, err)

	var got []string
	for _, entry := range root.Entries() {
		got = append(got, entry.Name())
	}
	// volume label and deleted entries are not listed
	require.Equal(t, []string{"README.TXT", "images", "empty.txt", "big.bin"}, got)

	entry := root.Entry("readme.txt")
	require.NotNil(t, entry)
	require.False(t, entry.IsDir())
	require.Equal(t, "README.TXT", entry.ShortName())

	entry = root.Entry("IMAGES")
	require.NotNil(t, entry)
	require.True(t, entry.IsDir())

	require.Nil(t, root.Entry("gone.txt"))
}

func TestFileSystemOpenDirNativeOrder(t *testing.T) {
	f := openTestFS(t)
	d, err := f.OpenDir("/images")
	require.Nil(t, err)
	require.True(t, d.IsDir())
	require.Nil(t, d.Rewind())

	require.Equal(t, []string{".", "..", "a.txt", "b.txt", "._meta", "sub"}, names(t, d))

	// exhausted cursor keeps reporting the end
	entry, err := d.Next()
	require.Nil(t, err)
	require.Nil(t, entry)

	require.Nil(t, d.Rewind())
	require.Len(t, names(t, d), 6)
	require.Nil(t, d.Close())
}

func TestFileSystemOpenDirEntryKinds(t *testing.T) {
	f := openTestFS(t)
	d, err := f.OpenDir("images")
	require.Nil(t, err)
	defer d.Close()

	kinds := map[string]bool{}
	for {
		entry, err := d.Next()
		require.Nil(t, err)
		if entry == nil {
			break
		}
		kinds[entry.Name()] = entry.IsDir()
	}
	require.True(t, kinds["sub"])
	require.True(t, kinds["."])
	require.False(t, kinds["a.txt"])
}

func TestFileSystemOpenDirOnFile(t *testing.T) {
	f := openTestFS(t)
	d, err := f.OpenDir("README.TXT")
	require.Nil(t, err)
	require.False(t, d.IsDir())
	require.NotNil(t, d.Rewind())
	require.Nil(t, d.Close())
}

func TestFileSystemOpenMissing(t *testing.T) {
	f := openTestFS(t)
	_, err := f.Open("/images/nope.txt")
	require.ErrorIs(t, err, fs.ErrNotExist)

	_, err = f.OpenDir("/nope")
	require.ErrorIs(t, err, fs.ErrNotExist)

	_, err = f.Open("/README.TXT/child")
	require.ErrorIs(t, err, sdfs.ErrNotDir)
}

func TestFileSystemReadFile(t *testing.T) {
	f := openTestFS(t)
	file, err := f.Open("/images/sub/deep.bin")
	require.Nil(t, err)
	require.False(t, file.IsDir())
	require.Equal(t, int64(4), file.Available())

	data, err := io.ReadAll(file)
	require.Nil(t, err)
	require.Equal(t, "deep", string(data))
	require.Equal(t, int64(0), file.Available())
	require.Nil(t, file.Close())
	require.ErrorIs(t, file.Close(), sdfs.ErrClosed)
}

func TestFileSystemReadAcrossClusters(t *testing.T) {
	f := openTestFS(t)
	file, err := f.Open("big.bin")
	require.Nil(t, err)
	defer file.Close()

	want := pattern(1500)
	buf := make([]byte, 700)
	n, err := file.Read(buf)
	require.Nil(t, err)
	require.Equal(t, 700, n)
	require.Equal(t, want[:700], buf)
	require.Equal(t, int64(700), file.Position())

	require.Nil(t, file.SeekTo(1400))
	n, err = file.Read(buf)
	require.Nil(t, err)
	require.Equal(t, 100, n)
	require.Equal(t, want[1400:], buf[:n])

	n, err = file.Read(buf)
	require.Equal(t, 0, n)
	require.ErrorIs(t, err, io.EOF)
	require.Equal(t, int64(1500), file.Position())

	require.ErrorIs(t, file.SeekTo(1501), sdfs.ErrSeekRange)
	require.Equal(t, int64(1500), file.Position())
}

func TestFileSystemOpenDirectoryAsFile(t *testing.T) {
	f := openTestFS(t)
	file, err := f.Open("/images")
	require.Nil(t, err)
	require.True(t, file.IsDir())
	require.Equal(t, int64(0), file.Available())
	require.Nil(t, file.Close())
}

func TestFileSystemEmptyFile(t *testing.T) {
	f := openTestFS(t)
	file, err := f.Open("empty.txt")
	require.Nil(t, err)
	require.Equal(t, int64(0), file.Available())
	require.Nil(t, file.Close())
}

func TestFileSystemParentOfFirstLevel(t *testing.T) {
	f := openTestFS(t)
	root, err := f.RootDir()
	require.Nil(t, err)
	images, err := root.Entry("images").Dir()
	require.Nil(t, err)
	parent, err := images.Entry("..").Dir()
	require.Nil(t, err)
	require.NotNil(t, parent.Entry("README.TXT"))
}

func TestFileSystemAttributes(t *testing.T) {
	f := openTestFS(t)
	root, err := f.RootDir()
	require.Nil(t, err)
	images, err := root.Entry("images").Dir()
	require.Nil(t, err)

	meta := images.Entry("._meta").(*DirectoryEntry)
	require.True(t, meta.IsHidden())
	require.False(t, meta.IsSystem())
	require.Equal(t, int64(5), meta.Size())
	require.Equal(t, 2025, meta.ModTime().Year())
}

func TestFindVolumePartitioned(t *testing.T) {
	img := fattest.Build(fattest.Options{Label: "PART", MBR: true},
		fattest.File("HELLO.TXT", "hello"),
	)
	volume, err := FindVolume(sdfs.NewMemDisk(img))
	require.Nil(t, err)
	require.Equal(t, int64(len(img)-8*512), volume.Len())

	f, err := New(volume)
	require.Nil(t, err)
	file, err := f.Open("hello.txt")
	require.Nil(t, err)
	data, err := io.ReadAll(file)
	require.Nil(t, err)
	require.Equal(t, "hello", string(data))
}

func TestFindVolumeSuperFloppy(t *testing.T) {
	disk := sdfs.NewMemDisk(testImage())
	volume, err := FindVolume(disk)
	require.Nil(t, err)
	require.Equal(t, sdfs.BlockDevice(disk), volume)
}

func TestFindVolumeGarbage(t *testing.T) {
	_, err := FindVolume(sdfs.NewMemDisk(make([]byte, 4096)))
	require.NotNil(t, err)
}

func TestDecodeBootSectorRejectsBadGeometry(t *testing.T) {
	img := testImage()
	img[13] = 3 // sectors per cluster must be a power of two
	_, err := DecodeBootSector(sdfs.NewMemDisk(img))
	require.NotNil(t, err)
}

func slotsFor(short string, long string, sum uint8) []*DirectoryClusterEntry {
	entry := &DirectoryClusterEntry{name: strings.TrimSpace(short[:8]), ext: strings.TrimSpace(short[8:])}
	copy(entry.rawName[:], short)
	if sum == 0 {
		sum = entry.checksum()
	}
	lfn := &DirectoryClusterEntry{attr: sdfs.AttrLongName, longOrd: 1, longSum: sum, longName: []rune(long)}
	return []*DirectoryClusterEntry{lfn, entry}
}

func TestLongNameChecksum(t *testing.T) {
	var slots []*DirectoryClusterEntry
	slots = append(slots, slotsFor("NOTES~1 TXT", "notes.text", 0)...)
	good := slots[1].checksum()
	slots = append(slots, slotsFor("STALE~1 TXT", "stale name.txt", good)...)
	d := &Directory{dirCluster: &DirectoryCluster{entries: slots}}

	entries := d.Entries()
	require.Len(t, entries, 2)
	require.Equal(t, "notes.text", entries[0].Name())
	require.Equal(t, "NOTES~1.TXT", entries[0].ShortName())
	require.Equal(t, "STALE~1.TXT", entries[1].Name())
	require.NotNil(t, d.Entry("NOTES.TEXT"))
	require.NotNil(t, d.Entry("notes~1.txt"))
	require.Nil(t, d.Entry("stale name.txt"))
}
