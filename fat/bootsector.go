package fat

import (
	"encoding/binary"
	"strings"

	"github.com/rstms/sdfs"
)

type FATType int

const (
	FAT12 FATType = 12
	FAT16 FATType = 16
	FAT32 FATType = 32
)

const (
	maxFAT12Clusters = 4085
	maxFAT16Clusters = 65525
)

// BootSectorCommon holds the BIOS parameter block fields shared by all
// FAT variants, plus the few FAT32 extensions the reader needs.
type BootSectorCommon struct {
	OEMName             string
	BytesPerSector      uint16
	SectorsPerCluster   uint8
	ReservedSectorCount uint16
	NumFATs             uint8
	RootEntryCount      uint16
	TotalSectors        uint32
	Media               uint8
	SectorsPerFat       uint32
	RootCluster         uint32
	VolumeID            uint32
	VolumeLabel         string
	FileSystemTypeLabel string

	fatType FATType
}

// DecodeBootSector reads and validates sector 0 of the device.
func DecodeBootSector(device sdfs.BlockDevice) (*BootSectorCommon, error) {
	var sector [512]byte
	if _, err := device.ReadAt(sector[:], 0); err != nil {
		return nil, Fatal(err)
	}
	return decodeBootSector(sector[:])
}

func decodeBootSector(data []byte) (*BootSectorCommon, error) {
	if len(data) < 512 {
		return nil, Fatalf("boot sector too short: %d", len(data))
	}
	if data[510] != 0x55 || data[511] != 0xAA {
		return nil, Fatalf("missing boot sector signature")
	}

	bs := &BootSectorCommon{
		OEMName:             strings.TrimRight(string(data[3:11]), " \x00"),
		BytesPerSector:      binary.LittleEndian.Uint16(data[11:13]),
		SectorsPerCluster:   data[13],
		ReservedSectorCount: binary.LittleEndian.Uint16(data[14:16]),
		NumFATs:             data[16],
		RootEntryCount:      binary.LittleEndian.Uint16(data[17:19]),
		Media:               data[21],
	}

	switch bs.BytesPerSector {
	case 512, 1024, 2048, 4096:
	default:
		return nil, Fatalf("invalid bytes per sector: %d", bs.BytesPerSector)
	}
	spc := bs.SectorsPerCluster
	if spc == 0 || spc&(spc-1) != 0 {
		return nil, Fatalf("invalid sectors per cluster: %d", spc)
	}
	if bs.ReservedSectorCount == 0 {
		return nil, Fatalf("invalid reserved sector count")
	}
	if bs.NumFATs == 0 {
		return nil, Fatalf("invalid FAT count")
	}

	bs.TotalSectors = uint32(binary.LittleEndian.Uint16(data[19:21]))
	if bs.TotalSectors == 0 {
		bs.TotalSectors = binary.LittleEndian.Uint32(data[32:36])
	}
	bs.SectorsPerFat = uint32(binary.LittleEndian.Uint16(data[22:24]))

	var ext []byte
	if bs.SectorsPerFat == 0 {
		// FAT32 extended BPB
		bs.SectorsPerFat = binary.LittleEndian.Uint32(data[36:40])
		bs.RootCluster = binary.LittleEndian.Uint32(data[44:48])
		ext = data[64:90]
	} else {
		ext = data[36:62]
	}
	if bs.SectorsPerFat == 0 {
		return nil, Fatalf("invalid sectors per FAT")
	}
	if bs.TotalSectors == 0 {
		return nil, Fatalf("invalid total sector count")
	}

	// extended boot signature: volume id, label and type string are valid
	if ext[2] == 0x29 {
		bs.VolumeID = binary.LittleEndian.Uint32(ext[3:7])
		bs.VolumeLabel = strings.TrimRight(string(ext[7:18]), " \x00")
		bs.FileSystemTypeLabel = strings.TrimRight(string(ext[18:26]), " \x00")
	}

	if bs.firstDataSector() >= bs.TotalSectors {
		return nil, Fatalf("no data region: first data sector %d, total %d",
			bs.firstDataSector(), bs.TotalSectors)
	}

	clusters := bs.ClusterCount()
	switch {
	case clusters < maxFAT12Clusters:
		bs.fatType = FAT12
	case clusters < maxFAT16Clusters:
		bs.fatType = FAT16
	default:
		bs.fatType = FAT32
	}
	if bs.fatType == FAT32 && bs.RootCluster < 2 {
		return nil, Fatalf("invalid FAT32 root cluster: %d", bs.RootCluster)
	}
	if bs.fatType != FAT32 && bs.RootEntryCount == 0 {
		return nil, Fatalf("invalid root entry count")
	}

	return bs, nil
}

func (b *BootSectorCommon) FATType() FATType {
	return b.fatType
}

// BytesPerCluster is the allocation unit size.
func (b *BootSectorCommon) BytesPerCluster() uint32 {
	return uint32(b.SectorsPerCluster) * uint32(b.BytesPerSector)
}

func (b *BootSectorCommon) rootDirSectors() uint32 {
	bps := uint32(b.BytesPerSector)
	return (uint32(b.RootEntryCount)*DirectoryEntrySize + bps - 1) / bps
}

// FATOffset returns the byte offset of the numbered FAT copy.
func (b *BootSectorCommon) FATOffset(n int) int64 {
	sector := uint32(b.ReservedSectorCount) + uint32(n)*b.SectorsPerFat
	return int64(sector) * int64(b.BytesPerSector)
}

// RootDirOffset returns the byte offset of the fixed FAT12/16 root
// directory region.
func (b *BootSectorCommon) RootDirOffset() int64 {
	return b.FATOffset(int(b.NumFATs))
}

// RootDirSize returns the byte size of the fixed root directory region.
func (b *BootSectorCommon) RootDirSize() int64 {
	return int64(b.rootDirSectors()) * int64(b.BytesPerSector)
}

func (b *BootSectorCommon) firstDataSector() uint32 {
	return uint32(b.ReservedSectorCount) + uint32(b.NumFATs)*b.SectorsPerFat + b.rootDirSectors()
}

// ClusterCount returns the number of data clusters on the volume.
func (b *BootSectorCommon) ClusterCount() uint32 {
	return (b.TotalSectors - b.firstDataSector()) / uint32(b.SectorsPerCluster)
}

// ClusterOffset returns the byte offset of a data cluster.
func (b *BootSectorCommon) ClusterOffset(cluster uint32) int64 {
	sector := (cluster-2)*uint32(b.SectorsPerCluster) + b.firstDataSector()
	return int64(sector) * int64(b.BytesPerSector)
}
