package sdfs

// DirectoryAttr is the DOS attribute byte of a directory entry.
type DirectoryAttr uint8

const (
	AttrReadOnly  DirectoryAttr = 0x01
	AttrHidden    DirectoryAttr = 0x02
	AttrSystem    DirectoryAttr = 0x04
	AttrVolumeId  DirectoryAttr = 0x08
	AttrDirectory DirectoryAttr = 0x10
	AttrArchive   DirectoryAttr = 0x20

	// AttrLongName marks a VFAT long name slot.
	AttrLongName = AttrReadOnly | AttrHidden | AttrSystem | AttrVolumeId
)

// String renders the attributes as fixed position flags, "drhsa" with
// '-' for each one not set.
func (a DirectoryAttr) String() string {
	flags := []byte("-----")
	for i, bit := range []DirectoryAttr{AttrDirectory, AttrReadOnly, AttrHidden, AttrSystem, AttrArchive} {
		if a&bit == bit {
			flags[i] = "drhsa"[i]
		}
	}
	return string(flags)
}

// Directory is a decoded directory of a volume, for random access by
// name. Backend.OpenDir is the cursor form the driver uses.
type Directory interface {
	Entry(name string) DirectoryEntry
	Entries() []DirectoryEntry
}

// DirectoryEntry is a file or subdirectory within a Directory.
type DirectoryEntry interface {
	Name() string
	ShortName() string
	IsDir() bool
	Dir() (Directory, error)
	File() (File, error)
	IsVolumeId() bool
	Attr() DirectoryAttr
}

// Entry is the transient record produced by Dir.Next. It must be closed
// before the next one is requested.
type Entry interface {
	Name() string
	IsDir() bool
	Close() error
}
