package volume_test

import (
	"encoding/binary"
	"testing"

	"github.com/xaionaro-go/bytesextra"

	"github.com/gofat32/fat32shell/volume"
)

// buildImage hand-assembles a minimal FAT32 image: one BPB sector, two FAT copies
// sized to cover totalClusters, and a zeroed data region with an empty root directory
// at cluster 2. It stands in for a real `mkfs.fat`-produced image in tests.
func buildImage(t *testing.T, totalClusters uint32) []byte {
	t.Helper()

	const bytesPerSector = 512
	const sectorsPerCluster = 1
	const reservedSectors = 1
	const numFATs = 2
	clusterSize := uint32(bytesPerSector * sectorsPerCluster)

	fatEntries := totalClusters + 2
	fatSizeBytes := fatEntries * 4
	// Round the FAT size up to a whole number of sectors.
	fatSectors := (fatSizeBytes + bytesPerSector - 1) / bytesPerSector
	fatSizeBytes = fatSectors * bytesPerSector

	dataRegionOffset := reservedSectors*bytesPerSector + numFATs*fatSizeBytes
	totalSize := dataRegionOffset + totalClusters*clusterSize

	image := make([]byte, totalSize)

	sector := struct {
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
		reserved          [12]byte
		DriveNumber       uint8
		NTReserved        uint8
		ExBootSignature   uint8
		VolumeID          uint32
		VolumeLabel       [11]byte
		FileSystemType    [8]byte
	}{
		BytesPerSector:    bytesPerSector,
		SectorsPerCluster: sectorsPerCluster,
		ReservedSectors:   reservedSectors,
		NumFATs:           numFATs,
		SectorsPerFAT32:   fatSectors,
		RootCluster:       2,
		TotalSectors32:    totalSize / bytesPerSector,
	}

	headerBuf := make([]byte, 0, 128)
	w := newSliceWriter(&headerBuf)
	if err := binary.Write(w, binary.LittleEndian, sector); err != nil {
		t.Fatalf("encoding BPB: %s", err)
	}
	copy(image[0:], headerBuf)

	// Reserved FAT entries 0 and 1 get the conventional non-free sentinel values;
	// entry 2 (root) is marked end-of-chain since the root directory is one cluster.
	setFATEntry := func(copyIndex, index, value uint32) {
		offset := reservedSectors*bytesPerSector + copyIndex*fatSizeBytes + index*4
		binary.LittleEndian.PutUint32(image[offset:offset+4], value)
	}
	for c := uint32(0); c < numFATs; c++ {
		setFATEntry(c, 0, 0x0FFFFFF8)
		setFATEntry(c, 1, 0x0FFFFFFF)
		setFATEntry(c, 2, 0x0FFFFFF8)
	}

	return image
}

func newSliceWriter(buf *[]byte) *sliceWriter { return &sliceWriter{buf: buf} }

type sliceWriter struct{ buf *[]byte }

func (w *sliceWriter) Write(p []byte) (int, error) {
	*w.buf = append(*w.buf, p...)
	return len(p), nil
}

func mountFixture(t *testing.T, totalClusters uint32) (*volume.Volume, []byte) {
	t.Helper()
	raw := buildImage(t, totalClusters)
	stream := bytesextra.NewReadWriteSeeker(raw)
	v, err := volume.Mount(stream)
	if err != nil {
		t.Fatalf("mount: %s", err)
	}
	return v, raw
}
