// Package fattest builds small FAT12 card images in memory for tests.
package fattest

import (
	"encoding/binary"
	"fmt"
	"strings"
	"unicode/utf16"

	"github.com/rstms/sdfs"
)

const (
	sectorSize     = 512
	rootEntries    = 64
	reservedSector = 1
	fatCopies      = 2
	slotSize       = 32
	partitionStart = 8

	// 2025-10-05 12:00:00
	fixedDate = uint16((2025-1980)<<9 | 10<<5 | 5)
	fixedTime = uint16(12 << 11)
)

// Node describes one file or directory to place on the image. Children
// are written in order, which becomes the native enumeration order.
type Node struct {
	Name     string
	Data     []byte
	Dir      bool
	Attr     sdfs.DirectoryAttr
	Deleted  bool
	Children []Node
}

// Options controls the volume geometry and labels.
type Options struct {
	Label   string
	OEMName string
	// Sectors is the volume size in 512 byte sectors, default 256.
	Sectors int
	// MBR places the volume in the first partition of a partition table.
	MBR bool
}

// File is a convenience constructor for a file node.
func File(name, data string) Node {
	return Node{Name: name, Data: []byte(data)}
}

// Dir is a convenience constructor for a directory node.
func Dir(name string, children ...Node) Node {
	return Node{Name: name, Dir: true, Children: children}
}

type builder struct {
	img         []byte
	fat         []uint32
	nextFree    uint32
	dataStart   int
	clusterSize int
}

// Build returns a complete FAT12 image holding the nodes in its root
// directory. It panics if the nodes do not fit.
func Build(opts Options, nodes ...Node) []byte {
	total := opts.Sectors
	if total == 0 {
		total = 256
	}
	if opts.OEMName == "" {
		opts.OEMName = "SDFS"
	}

	fatBytes := (total + 2) * 3 / 2
	fatSectors := (fatBytes + sectorSize - 1) / sectorSize
	rootSectors := rootEntries * slotSize / sectorSize
	firstData := reservedSector + fatCopies*fatSectors + rootSectors
	clusters := total - firstData
	if clusters <= 0 || clusters >= 4085 {
		panic(fmt.Sprintf("fattest: unsupported sector count %d", total))
	}

	b := &builder{
		img:         make([]byte, total*sectorSize),
		fat:         make([]uint32, clusters+2),
		nextFree:    2,
		dataStart:   firstData * sectorSize,
		clusterSize: sectorSize,
	}
	b.fat[0] = 0xFF8
	b.fat[1] = 0xFFF

	b.bootSector(opts, total, fatSectors)

	var root []byte
	if opts.Label != "" {
		root = append(root, labelSlot(opts.Label)...)
	}
	root = append(root, b.entries(nodes, 0, 0, false)...)
	if len(root) > rootEntries*slotSize {
		panic("fattest: root directory overflow")
	}
	rootOffset := (reservedSector + fatCopies*fatSectors) * sectorSize
	copy(b.img[rootOffset:], root)

	for n := 0; n < fatCopies; n++ {
		b.writeFAT((reservedSector + n*fatSectors) * sectorSize)
	}

	if !opts.MBR {
		return b.img
	}
	return wrapMBR(b.img)
}

func (b *builder) bootSector(opts Options, total, fatSectors int) {
	bs := b.img[:sectorSize]
	copy(bs[0:3], []byte{0xEB, 0x3C, 0x90})
	copy(bs[3:11], pad(opts.OEMName, 8))
	binary.LittleEndian.PutUint16(bs[11:], sectorSize)
	bs[13] = 1
	binary.LittleEndian.PutUint16(bs[14:], reservedSector)
	bs[16] = fatCopies
	binary.LittleEndian.PutUint16(bs[17:], rootEntries)
	binary.LittleEndian.PutUint16(bs[19:], uint16(total))
	bs[21] = 0xF8
	binary.LittleEndian.PutUint16(bs[22:], uint16(fatSectors))
	bs[38] = 0x29
	binary.LittleEndian.PutUint32(bs[39:], 0x5D0C0FFE)
	label := opts.Label
	if label == "" {
		label = "NO NAME"
	}
	copy(bs[43:54], pad(strings.ToUpper(label), 11))
	copy(bs[54:62], pad("FAT12", 8))
	bs[510] = 0x55
	bs[511] = 0xAA
}

func (b *builder) writeFAT(offset int) {
	table := b.img[offset:]
	for n, v := range b.fat {
		off := n + n/2
		if n%2 == 0 {
			table[off] = byte(v)
			table[off+1] = table[off+1]&0xF0 | byte(v>>8)&0x0F
		} else {
			table[off] = table[off]&0x0F | byte(v<<4)&0xF0
			table[off+1] = byte(v >> 4)
		}
	}
}

// alloc reserves a chain of count clusters and returns its first cluster.
func (b *builder) alloc(count int) uint32 {
	if count == 0 {
		return 0
	}
	first := b.nextFree
	if int(first)+count > len(b.fat) {
		panic("fattest: image full")
	}
	for i := 0; i < count; i++ {
		c := first + uint32(i)
		if i == count-1 {
			b.fat[c] = 0xFFF
		} else {
			b.fat[c] = c + 1
		}
	}
	b.nextFree += uint32(count)
	return first
}

func (b *builder) write(cluster uint32, data []byte) {
	off := b.dataStart + int(cluster-2)*b.clusterSize
	copy(b.img[off:], data)
}

func (b *builder) clustersFor(size int) int {
	return (size + b.clusterSize - 1) / b.clusterSize
}

// entries encodes the directory slots for nodes, allocating and writing
// their contents.
func (b *builder) entries(nodes []Node, self, parent uint32, sub bool) []byte {
	var out []byte
	if sub {
		out = append(out, shortSlot(".          ", sdfs.AttrDirectory, self, 0)...)
		out = append(out, shortSlot("..         ", sdfs.AttrDirectory, parent, 0)...)
	}

	seq := 0
	for _, node := range nodes {
		short, long := shortName(node.Name)
		if long {
			seq++
			short = aliasName(node.Name, seq)
		}

		var cluster uint32
		var size uint32
		attr := node.Attr
		if node.Dir {
			attr |= sdfs.AttrDirectory
			slots := 2
			for _, child := range node.Children {
				slots += slotCount(child.Name)
			}
			cluster = b.alloc(b.clustersFor(slots * slotSize))
			data := b.entries(node.Children, cluster, self, true)
			b.write(cluster, data)
		} else {
			cluster = b.alloc(b.clustersFor(len(node.Data)))
			if cluster != 0 {
				b.write(cluster, node.Data)
			}
			size = uint32(len(node.Data))
		}

		var slots []byte
		if long {
			slots = append(slots, lfnSlots(node.Name, short)...)
		}
		slots = append(slots, shortSlot(short, attr, cluster, size)...)
		if node.Deleted {
			for i := 0; i < len(slots); i += slotSize {
				slots[i] = 0xE5
			}
		}
		out = append(out, slots...)
	}
	return out
}

func slotCount(name string) int {
	if _, long := shortName(name); long {
		return 1 + (len(utf16.Encode([]rune(name)))+12)/13
	}
	return 1
}

const shortChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789_-~!#$%&'()@^`{}"

// shortName returns the padded 11 byte 8.3 form, and whether the name
// needs long name slots.
func shortName(name string) (string, bool) {
	base, ext := name, ""
	if i := strings.LastIndex(name, "."); i >= 0 {
		base, ext = name[:i], name[i+1:]
	}
	if base == "" || len(base) > 8 || len(ext) > 3 || strings.Contains(base, ".") {
		return "", true
	}
	for _, r := range base + ext {
		if !strings.ContainsRune(shortChars, r) {
			return "", true
		}
	}
	return string(pad(base, 8)) + string(pad(ext, 3)), false
}

func aliasName(name string, seq int) string {
	base, ext := name, ""
	if i := strings.LastIndex(name, "."); i > 0 {
		base, ext = name[:i], name[i+1:]
	}
	clean := func(s string, limit int) string {
		var sb strings.Builder
		for _, r := range strings.ToUpper(s) {
			if sb.Len() == limit {
				break
			}
			if strings.ContainsRune(shortChars, r) && r != '~' {
				sb.WriteRune(r)
			}
		}
		return sb.String()
	}
	b := clean(base, 6)
	if b == "" {
		b = "X"
	}
	return string(pad(fmt.Sprintf("%s~%d", b, seq), 8)) + string(pad(clean(ext, 3), 3))
}

func checksum(short string) byte {
	var sum byte
	for i := 0; i < 11; i++ {
		sum = (sum&1)<<7 + sum>>1 + short[i]
	}
	return sum
}

func lfnSlots(name, short string) []byte {
	units := utf16.Encode([]rune(name))
	count := (len(units) + 12) / 13
	if len(units)%13 != 0 {
		units = append(units, 0x0000)
	}
	for len(units) < count*13 {
		units = append(units, 0xFFFF)
	}

	sum := checksum(short)
	var out []byte
	for ord := count; ord >= 1; ord-- {
		slot := make([]byte, slotSize)
		slot[0] = byte(ord)
		if ord == count {
			slot[0] |= 0x40
		}
		slot[11] = byte(sdfs.AttrLongName)
		slot[13] = sum
		chars := units[(ord-1)*13 : ord*13]
		positions := []int{1, 3, 5, 7, 9, 14, 16, 18, 20, 22, 24, 28, 30}
		for i, pos := range positions {
			binary.LittleEndian.PutUint16(slot[pos:], chars[i])
		}
		out = append(out, slot...)
	}
	return out
}

func shortSlot(short string, attr sdfs.DirectoryAttr, cluster, size uint32) []byte {
	slot := make([]byte, slotSize)
	copy(slot[0:11], short)
	slot[11] = byte(attr)
	binary.LittleEndian.PutUint16(slot[14:], fixedTime)
	binary.LittleEndian.PutUint16(slot[16:], fixedDate)
	binary.LittleEndian.PutUint16(slot[18:], fixedDate)
	binary.LittleEndian.PutUint16(slot[20:], uint16(cluster>>16))
	binary.LittleEndian.PutUint16(slot[22:], fixedTime)
	binary.LittleEndian.PutUint16(slot[24:], fixedDate)
	binary.LittleEndian.PutUint16(slot[26:], uint16(cluster))
	binary.LittleEndian.PutUint32(slot[28:], size)
	return slot
}

func labelSlot(label string) []byte {
	return shortSlot(string(pad(strings.ToUpper(label), 11)), sdfs.AttrVolumeId, 0, 0)
}

func pad(s string, n int) []byte {
	out := []byte(strings.Repeat(" ", n))
	copy(out, s)
	return out
}

// wrapMBR prefixes the volume with a partition table whose first entry
// points at it.
func wrapMBR(volume []byte) []byte {
	img := make([]byte, partitionStart*sectorSize+len(volume))
	entry := img[0x1BE:]
	entry[4] = 0x01
	binary.LittleEndian.PutUint32(entry[8:], partitionStart)
	binary.LittleEndian.PutUint32(entry[12:], uint32(len(volume)/sectorSize))
	img[510] = 0x55
	img[511] = 0xAA
	copy(img[partitionStart*sectorSize:], volume)
	return img
}
