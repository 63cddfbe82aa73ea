package fat

import (
	"encoding/binary"
	"strings"
	"time"
	"unicode/utf16"

	"github.com/rstms/sdfs"
)

const DirectoryEntrySize = 32

const (
	entryEnd     = 0x00
	entryDeleted = 0xE5
	entryKanji   = 0x05 // first byte is really 0xE5

	ntLowerBase = 0x08
	ntLowerExt  = 0x10
)

// DirectoryClusterEntry is one decoded 32-byte slot of a directory.
type DirectoryClusterEntry struct {
	name       string
	ext        string
	attr       sdfs.DirectoryAttr
	ntRes      uint8
	cluster    uint32
	fileSize   uint32
	createTime time.Time
	accessTime time.Time
	writeTime  time.Time
	deleted    bool

	// raw 8.3 name bytes, which long name slots checksum
	rawName [11]byte

	// long name slot fields
	longOrd  uint8
	longSum  uint8
	longName []rune
}

// DirectoryCluster holds every slot of one directory, in on-disk order.
type DirectoryCluster struct {
	startCluster uint32
	entries      []*DirectoryClusterEntry
}

func (e *DirectoryClusterEntry) IsLong() bool {
	return e.attr&0x3F == sdfs.AttrLongName
}

func (e *DirectoryClusterEntry) IsVolumeId() bool {
	return !e.IsLong() && e.attr&sdfs.AttrVolumeId == sdfs.AttrVolumeId
}

// DecodeDirectoryClusterEntry decodes a single slot. The second result
// is false once the end-of-directory marker is reached.
func DecodeDirectoryClusterEntry(data []byte) (*DirectoryClusterEntry, bool) {
	if data[0] == entryEnd {
		return nil, false
	}

	result := &DirectoryClusterEntry{
		attr: sdfs.DirectoryAttr(data[11]),
	}
	if data[0] == entryDeleted {
		result.deleted = true
	}

	if result.IsLong() {
		result.longOrd = data[0] & 0x1F
		result.longSum = data[13]
		result.longName = decodeLongNameSlot(data)
		return result, true
	}

	copy(result.rawName[:], data[0:11])
	name := make([]byte, 8)
	copy(name, data[0:8])
	if name[0] == entryKanji {
		name[0] = entryDeleted
	}
	result.name = strings.TrimRight(string(name), " ")
	result.ext = strings.TrimRight(string(data[8:11]), " ")
	result.ntRes = data[12]
	if result.ntRes&ntLowerBase != 0 {
		result.name = strings.ToLower(result.name)
	}
	if result.ntRes&ntLowerExt != 0 {
		result.ext = strings.ToLower(result.ext)
	}

	hi := uint32(binary.LittleEndian.Uint16(data[20:22]))
	lo := uint32(binary.LittleEndian.Uint16(data[26:28]))
	result.cluster = hi<<16 | lo
	result.fileSize = binary.LittleEndian.Uint32(data[28:32])

	result.createTime = decodeTime(
		binary.LittleEndian.Uint16(data[16:18]), binary.LittleEndian.Uint16(data[14:16]))
	result.accessTime = decodeTime(binary.LittleEndian.Uint16(data[18:20]), 0)
	result.writeTime = decodeTime(
		binary.LittleEndian.Uint16(data[24:26]), binary.LittleEndian.Uint16(data[22:24]))

	return result, true
}

// checksum is the value every long name slot belonging to this short
// entry carries.
func (e *DirectoryClusterEntry) checksum() uint8 {
	var sum uint8
	for _, b := range e.rawName {
		sum = (sum&1)<<7 + sum>>1 + b
	}
	return sum
}

func decodeLongNameSlot(data []byte) []rune {
	units := make([]uint16, 0, 13)
	for _, span := range [][2]int{{1, 11}, {14, 26}, {28, 32}} {
		for i := span[0]; i < span[1]; i += 2 {
			u := binary.LittleEndian.Uint16(data[i:])
			if u == 0x0000 {
				return utf16.Decode(units)
			}
			if u == 0xFFFF {
				continue
			}
			units = append(units, u)
		}
	}
	return utf16.Decode(units)
}

func decodeTime(date, clock uint16) time.Time {
	if date == 0 {
		return time.Time{}
	}
	year := int(date>>9) + 1980
	month := time.Month((date >> 5) & 0x0F)
	day := int(date & 0x1F)
	hour := int(clock >> 11)
	minute := int((clock >> 5) & 0x3F)
	sec := int(clock&0x1F) * 2
	return time.Date(year, month, day, hour, minute, sec, 0, time.Local)
}

func decodeDirectoryCluster(start uint32, data []byte) *DirectoryCluster {
	result := &DirectoryCluster{startCluster: start}
	for off := 0; off+DirectoryEntrySize <= len(data); off += DirectoryEntrySize {
		entry, ok := DecodeDirectoryClusterEntry(data[off : off+DirectoryEntrySize])
		if !ok {
			break
		}
		result.entries = append(result.entries, entry)
	}
	return result
}

// DecodeDirectoryCluster reads the directory stored in the cluster chain
// beginning at startCluster.
func DecodeDirectoryCluster(startCluster uint32, device sdfs.BlockDevice, fat *FAT) (*DirectoryCluster, error) {
	chain, err := fat.Chain(startCluster)
	if err != nil {
		return nil, Fatal(err)
	}
	if len(chain) == 0 {
		return nil, Fatalf("directory has no clusters")
	}

	size := int(fat.bs.BytesPerCluster())
	data := make([]byte, size*len(chain))
	for i, cluster := range chain {
		if _, err := device.ReadAt(data[i*size:(i+1)*size], fat.bs.ClusterOffset(cluster)); err != nil {
			return nil, Fatal(err)
		}
	}
	return decodeDirectoryCluster(startCluster, data), nil
}

// DecodeFAT16RootDirectoryCluster reads the fixed root directory region
// used by FAT12 and FAT16 volumes.
func DecodeFAT16RootDirectoryCluster(device sdfs.BlockDevice, bs *BootSectorCommon) (*DirectoryCluster, error) {
	data := make([]byte, bs.RootDirSize())
	if _, err := device.ReadAt(data, bs.RootDirOffset()); err != nil {
		return nil, Fatal(err)
	}
	return decodeDirectoryCluster(0, data), nil
}

// DecodeFAT32RootDirectoryCluster reads the root directory cluster chain
// of a FAT32 volume.
func DecodeFAT32RootDirectoryCluster(device sdfs.BlockDevice, fat *FAT) (*DirectoryCluster, error) {
	dir, err := DecodeDirectoryCluster(fat.bs.RootCluster, device, fat)
	if err != nil {
		return nil, Fatal(err)
	}
	return dir, nil
}
