// Package bpb parses the Boot Parameter Block of a FAT32 volume: the first sector of
// the image, carrying the geometry constants every other layer of the engine builds
// on. Geometry is read once at mount and is immutable afterward.
package bpb

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/hashicorp/go-multierror"

	fserrors "github.com/gofat32/fat32shell/errors"
)

// RawSector is the on-disk layout of the first 90 bytes of a FAT32 volume, up to and
// including the fields this engine cares about. Fields the engine never writes back
// keep their on-disk name for traceability but are otherwise opaque.
type RawSector struct {
	JmpBoot           [3]byte
	OEMName           [8]byte
	BytesPerSector    uint16
	SectorsPerCluster uint8
	ReservedSectors   uint16
	NumFATs           uint8
	RootEntryCount    uint16
	TotalSectors16    uint16
	Media             uint8
	SectorsPerFAT16   uint16
	SectorsPerTrack   uint16
	NumHeads          uint16
	HiddenSectors     uint32
	TotalSectors32    uint32
	SectorsPerFAT32   uint32
	ExtFlags          uint16
	FSVersionMinor    uint8
	FSVersionMajor    uint8
	RootCluster       uint32
	FSInfoSector      uint16
	BackupBootSector  uint16
	_                 [12]byte
	DriveNumber       uint8
	NTReserved        uint8
	ExBootSignature   uint8
	VolumeID          uint32
	VolumeLabel       [11]byte
	FileSystemType    [8]byte
}

// BPB holds the geometry constants of a mounted FAT32 volume, plus the values derived
// from them per spec section 3. Every field is immutable after Parse returns.
type BPB struct {
	BytesPerSector    uint32
	SectorsPerCluster uint32
	ReservedSectors   uint32
	NumFATs           uint32
	SectorsPerFAT     uint32
	RootCluster       uint32

	// ClusterSize is bytes_per_sector * sectors_per_cluster.
	ClusterSize uint32
	// FATRegionOffset is bytes_per_sector * reserved_sectors.
	FATRegionOffset uint32
	// FATSizeBytes is bytes_per_sector * sectors_per_fat, the size of ONE FAT copy.
	FATSizeBytes uint32
	// DataRegionOffset is FATRegionOffset + num_fats * FATSizeBytes.
	DataRegionOffset uint32
	// TotalSectors is the volume's total sector count, used only for the advisory
	// size label returned by Volume.SizeLabel; no engine arithmetic depends on it.
	TotalSectors uint32
}

// ClusterOffset returns the absolute byte offset of cluster n's data within the image.
// Cluster indexing starts at 2; indices 0 and 1 are reserved.
func (b *BPB) ClusterOffset(n uint32) int64 {
	return int64(b.DataRegionOffset) + int64(n-2)*int64(b.ClusterSize)
}

// DirentsPerCluster is the number of 32-byte directory entry slots in one cluster.
func (b *BPB) DirentsPerCluster() int {
	return int(b.ClusterSize) / 32
}

// SizeBytes returns the volume's total size as recorded in the BPB.
func (b *BPB) SizeBytes() int64 {
	return int64(b.TotalSectors) * int64(b.BytesPerSector)
}

// Parse reads the first sector of reader and derives a BPB. Every geometry
// inconsistency found is collected (not just the first) via multierror, the way a
// driver reports every problem with a bad image in a single diagnostic.
func Parse(reader io.Reader) (*BPB, error) {
	raw := RawSector{}
	if err := binary.Read(reader, binary.LittleEndian, &raw); err != nil {
		return nil, fserrors.ErrIOFailed.Wrap(err)
	}

	var problems *multierror.Error

	switch raw.BytesPerSector {
	case 512, 1024, 2048, 4096:
	default:
		problems = multierror.Append(problems, fmt.Errorf(
			"bad BytesPerSector: need 512, 1024, 2048, or 4096, got %d", raw.BytesPerSector))
	}

	switch raw.SectorsPerCluster {
	case 1, 2, 4, 8, 16, 32, 64, 128:
	default:
		problems = multierror.Append(problems, fmt.Errorf(
			"bad SectorsPerCluster: must be a power of 2 in [1, 128], got %d", raw.SectorsPerCluster))
	}

	if raw.NumFATs == 0 {
		problems = multierror.Append(problems, fmt.Errorf("NumFATs must be at least 1"))
	}

	if raw.SectorsPerFAT16 != 0 {
		problems = multierror.Append(problems, fmt.Errorf(
			"SectorsPerFAT16 is nonzero (%d): this is not a FAT32 volume", raw.SectorsPerFAT16))
	}

	if raw.SectorsPerFAT32 == 0 {
		problems = multierror.Append(problems, fmt.Errorf("SectorsPerFAT32 must be nonzero on a FAT32 volume"))
	}

	if raw.RootEntryCount != 0 {
		problems = multierror.Append(problems, fmt.Errorf(
			"RootEntryCount is nonzero (%d): FAT32 stores the root directory in the data region", raw.RootEntryCount))
	}

	if raw.RootCluster < 2 {
		problems = multierror.Append(problems, fmt.Errorf(
			"RootCluster must be >= 2, got %d", raw.RootCluster))
	}

	if problems.ErrorOrNil() != nil {
		return nil, fserrors.ErrInvalidFileSystem.Wrap(problems)
	}

	totalSectors := uint32(raw.TotalSectors16)
	if totalSectors == 0 {
		totalSectors = raw.TotalSectors32
	}

	out := &BPB{
		BytesPerSector:    uint32(raw.BytesPerSector),
		SectorsPerCluster: uint32(raw.SectorsPerCluster),
		ReservedSectors:   uint32(raw.ReservedSectors),
		NumFATs:           uint32(raw.NumFATs),
		SectorsPerFAT:     raw.SectorsPerFAT32,
		RootCluster:       raw.RootCluster,
		TotalSectors:      totalSectors,
	}
	out.ClusterSize = out.BytesPerSector * out.SectorsPerCluster
	out.FATRegionOffset = out.BytesPerSector * out.ReservedSectors
	out.FATSizeBytes = out.BytesPerSector * out.SectorsPerFAT
	out.DataRegionOffset = out.FATRegionOffset + out.NumFATs*out.FATSizeBytes

	return out, nil
}
