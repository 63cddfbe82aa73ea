package fat

import (
	"strings"
	"time"

	"github.com/rstms/sdfs"
)

// Directory implements sdfs.Directory over the slots of one FAT
// directory.
type Directory struct {
	fs         *FileSystem
	dirCluster *DirectoryCluster
}

// ensure Directory implements sdfs.Directory
var _ sdfs.Directory = (*Directory)(nil)

// DirectoryEntry is one live file or subdirectory: its short slot plus
// the long name slots, if any, that precede it.
type DirectoryEntry struct {
	dir   *Directory
	entry *DirectoryClusterEntry
	name  string
}

// ensure DirectoryEntry implements sdfs.DirectoryEntry and sdfs.Entry
var (
	_ sdfs.DirectoryEntry = (*DirectoryEntry)(nil)
	_ sdfs.Entry          = (*DirectoryEntry)(nil)
)

// longName collects a run of long name slots. Slots are stored last
// part first, each numbered by its ordinal.
type longName struct {
	parts [][]rune
	sum   uint8
	next  uint8
}

func (l *longName) reset() {
	l.parts = l.parts[:0]
	l.next = 0
}

// add appends a slot to the run, restarting the run when the slot does
// not continue it.
func (l *longName) add(slot *DirectoryClusterEntry) {
	if slot.longOrd == 0 {
		l.reset()
		return
	}
	if len(l.parts) == 0 || slot.longSum != l.sum || slot.longOrd != l.next {
		l.reset()
		l.sum = slot.longSum
	}
	l.parts = append(l.parts, slot.longName)
	l.next = slot.longOrd - 1
}

// resolve returns the long name for short, or "" when the collected
// run is incomplete or belongs to another entry.
func (l *longName) resolve(short *DirectoryClusterEntry) string {
	if len(l.parts) == 0 || l.next != 0 || l.sum != short.checksum() {
		return ""
	}
	var name []rune
	for i := len(l.parts) - 1; i >= 0; i-- {
		name = append(name, l.parts[i]...)
	}
	return string(name)
}

// decodeEntries turns the raw slots of d into entries, in on-disk
// order. Deleted slots, the volume label, and orphaned long name slots
// are dropped.
func (d *Directory) decodeEntries() []*DirectoryEntry {
	var result []*DirectoryEntry
	var run longName
	for _, slot := range d.dirCluster.entries {
		switch {
		case slot.deleted:
			run.reset()
		case slot.IsLong():
			run.add(slot)
		case slot.IsVolumeId():
			run.reset()
		default:
			name := run.resolve(slot)
			if name == "" {
				name = shortForm(slot.name, slot.ext)
			}
			result = append(result, &DirectoryEntry{dir: d, entry: slot, name: name})
			run.reset()
		}
	}
	return result
}

func shortForm(name, ext string) string {
	if ext == "" {
		return name
	}
	return name + "." + ext
}

func (d *DirectoryEntry) Dir() (sdfs.Directory, error) {
	if !d.IsDir() {
		return nil, Fatal(sdfs.ErrNotDir)
	}

	// ".." of a first level directory points at cluster 0, the root
	if d.entry.cluster == 0 {
		return d.dir.fs.RootDir()
	}

	dirCluster, err := DecodeDirectoryCluster(d.entry.cluster, d.dir.fs.device, d.dir.fs.fat)
	if err != nil {
		return nil, Fatal(err)
	}
	return &Directory{fs: d.dir.fs, dirCluster: dirCluster}, nil
}

func (d *DirectoryEntry) File() (sdfs.File, error) {
	if d.IsDir() {
		return nil, Fatal(sdfs.ErrIsDir)
	}

	chain, err := d.dir.fs.fat.Chain(d.entry.cluster)
	if err != nil {
		return nil, Fatal(err)
	}
	size := int64(d.entry.fileSize)
	if size > int64(len(chain))*int64(d.dir.fs.bs.BytesPerCluster()) {
		return nil, Fatalf("%s: size %d exceeds cluster chain", d.name, size)
	}
	return &File{fs: d.dir.fs, clusters: chain, size: size}, nil
}

func (d *DirectoryEntry) has(attr sdfs.DirectoryAttr) bool {
	return d.entry.attr&attr == attr
}

func (d *DirectoryEntry) IsDir() bool {
	return d.has(sdfs.AttrDirectory)
}

func (d *DirectoryEntry) IsVolumeId() bool {
	return d.has(sdfs.AttrVolumeId)
}

func (d *DirectoryEntry) IsReadOnly() bool {
	return d.has(sdfs.AttrReadOnly)
}

func (d *DirectoryEntry) IsSystem() bool {
	return d.has(sdfs.AttrSystem)
}

func (d *DirectoryEntry) IsHidden() bool {
	return d.has(sdfs.AttrHidden)
}

func (d *DirectoryEntry) Name() string {
	return d.name
}

func (d *DirectoryEntry) Attr() sdfs.DirectoryAttr {
	return d.entry.attr
}

func (d *DirectoryEntry) Size() int64 {
	return int64(d.entry.fileSize)
}

func (d *DirectoryEntry) ModTime() time.Time {
	return d.entry.writeTime
}

// ShortName returns the 8.3 name as stored, upper case.
func (d *DirectoryEntry) ShortName() string {
	return strings.ToUpper(shortForm(d.entry.name, d.entry.ext))
}

// Close is a no-op; entries hold no device resources.
func (d *DirectoryEntry) Close() error {
	return nil
}

func (d *Directory) Entries() []sdfs.DirectoryEntry {
	decoded := d.decodeEntries()
	result := make([]sdfs.DirectoryEntry, len(decoded))
	for i, entry := range decoded {
		result[i] = entry
	}
	return result
}

// Entry finds name, matching either the long or the short name without
// regard to case.
func (d *Directory) Entry(name string) sdfs.DirectoryEntry {
	for _, entry := range d.decodeEntries() {
		if strings.EqualFold(entry.name, name) || strings.EqualFold(entry.ShortName(), name) {
			return entry
		}
	}
	return nil
}
