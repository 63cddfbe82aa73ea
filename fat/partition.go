package fat

import (
	"encoding/binary"

	"github.com/rstms/sdfs"
)

const (
	partitionTableOffset = 0x1BE
	partitionEntrySize   = 16
	partitionCount       = 4
)

// partition types that carry a FAT volume
var fatPartitionTypes = map[byte]bool{
	0x01: true, // FAT12
	0x04: true, // FAT16 < 32M
	0x06: true, // FAT16
	0x0B: true, // FAT32 CHS
	0x0C: true, // FAT32 LBA
	0x0E: true, // FAT16 LBA
}

// FindVolume returns the device window holding the FAT volume. Cards
// formatted as a super floppy have the boot sector at sector 0; most
// cards carry an MBR whose first FAT partition holds the volume.
func FindVolume(device sdfs.BlockDevice) (sdfs.BlockDevice, error) {
	var sector [512]byte
	if _, err := device.ReadAt(sector[:], 0); err != nil {
		return nil, Fatal(err)
	}
	if _, err := decodeBootSector(sector[:]); err == nil {
		return device, nil
	}
	if sector[510] != 0x55 || sector[511] != 0xAA {
		return nil, Fatalf("no boot sector or partition table found")
	}

	sectorSize := int64(device.SectorSize())
	for i := 0; i < partitionCount; i++ {
		entry := sector[partitionTableOffset+i*partitionEntrySize:]
		if !fatPartitionTypes[entry[4]] {
			continue
		}
		start := int64(binary.LittleEndian.Uint32(entry[8:12])) * sectorSize
		length := int64(binary.LittleEndian.Uint32(entry[12:16])) * sectorSize
		if start == 0 || length == 0 || start+length > device.Len() {
			continue
		}
		return sdfs.NewSectionDisk(device, start, length), nil
	}
	return nil, Fatalf("no FAT partition found")
}
