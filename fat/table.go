package fat

import (
	"encoding/binary"

	"github.com/rstms/sdfs"
)

// FAT is one decoded copy of the file allocation table.
type FAT struct {
	bs      *BootSectorCommon
	entries []uint32
}

// DecodeFAT loads the numbered FAT copy from the device.
func DecodeFAT(device sdfs.BlockDevice, bs *BootSectorCommon, n int) (*FAT, error) {
	if n < 0 || n >= int(bs.NumFATs) {
		return nil, Fatalf("FAT %d out of range", n)
	}

	data := make([]byte, int64(bs.SectorsPerFat)*int64(bs.BytesPerSector))
	if _, err := device.ReadAt(data, bs.FATOffset(n)); err != nil {
		return nil, Fatal(err)
	}

	count := int(bs.ClusterCount()) + 2
	entries := make([]uint32, count)
	for i := range entries {
		var v uint32
		switch bs.FATType() {
		case FAT12:
			off := i + i/2
			if off+1 >= len(data) {
				return nil, Fatalf("FAT too small for %d clusters", count)
			}
			raw := uint32(binary.LittleEndian.Uint16(data[off:]))
			if i%2 == 1 {
				v = raw >> 4
			} else {
				v = raw & 0x0FFF
			}
		case FAT16:
			off := i * 2
			if off+2 > len(data) {
				return nil, Fatalf("FAT too small for %d clusters", count)
			}
			v = uint32(binary.LittleEndian.Uint16(data[off:]))
		case FAT32:
			off := i * 4
			if off+4 > len(data) {
				return nil, Fatalf("FAT too small for %d clusters", count)
			}
			v = binary.LittleEndian.Uint32(data[off:]) & 0x0FFFFFFF
		}
		entries[i] = v
	}

	return &FAT{bs: bs, entries: entries}, nil
}

func (f *FAT) badCluster() uint32 {
	switch f.bs.FATType() {
	case FAT12:
		return 0xFF7
	case FAT16:
		return 0xFFF7
	}
	return 0x0FFFFFF7
}

// IsEoc reports whether the value marks the end of a cluster chain.
func (f *FAT) IsEoc(v uint32) bool {
	return v > f.badCluster()
}

// Next returns the FAT entry for cluster.
func (f *FAT) Next(cluster uint32) (uint32, error) {
	if cluster < 2 || int(cluster) >= len(f.entries) {
		return 0, Fatalf("cluster %d out of range", cluster)
	}
	return f.entries[cluster], nil
}

// Chain follows the allocation chain starting at start.
func (f *FAT) Chain(start uint32) ([]uint32, error) {
	if start == 0 {
		return nil, nil
	}
	chain := make([]uint32, 0, 8)
	cluster := start
	for {
		if len(chain) >= len(f.entries) {
			return nil, Fatalf("cluster chain loop at %d", start)
		}
		next, err := f.Next(cluster)
		if err != nil {
			return nil, Fatal(err)
		}
		chain = append(chain, cluster)
		switch {
		case f.IsEoc(next):
			return chain, nil
		case next == f.badCluster():
			return nil, Fatalf("bad cluster in chain at %d", cluster)
		case next < 2:
			return nil, Fatalf("free cluster in chain at %d", cluster)
		}
		cluster = next
	}
}
