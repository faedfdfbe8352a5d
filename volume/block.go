package volume

import (
	"encoding/binary"
	"io"

	fserrors "github.com/gofat32/fat32shell/errors"
)

// endOfChain is the minimum value that denotes "no further cluster" in a FAT32 chain.
// Only the low 28 bits of any FAT entry are meaningful.
const endOfChain uint32 = 0x0FFFFFF8
const clusterMask uint32 = 0x0FFFFFFF

// fatRead returns the FAT entry at cluster index i with the top 4 bits masked off, per
// spec section 3's FAT entry definition. It reads from the first FAT copy; all copies
// are kept identical by fatWrite.
func (v *Volume) fatRead(i uint32) (uint32, error) {
	buf := make([]byte, 4)
	offset := int64(v.geo.FATRegionOffset) + int64(i)*4
	if _, err := v.image.ReadAt(buf, offset); err != nil {
		return 0, fserrors.ErrIOFailed.Wrap(err)
	}
	return binary.LittleEndian.Uint32(buf) & clusterMask, nil
}

// fatWrite writes value into FAT entry i in every FAT copy, preserving the top 4
// reserved bits of whatever is already on disk. A crash between copies is tolerated
// (not recovered) per spec section 4.1/5.
func (v *Volume) fatWrite(i uint32, value uint32) error {
	for copyIndex := uint32(0); copyIndex < v.geo.NumFATs; copyIndex++ {
		offset := int64(v.geo.FATRegionOffset) + int64(copyIndex)*int64(v.geo.FATSizeBytes) + int64(i)*4

		existing := make([]byte, 4)
		if _, err := v.image.ReadAt(existing, offset); err != nil {
			return fserrors.ErrIOFailed.Wrap(err)
		}
		reservedBits := binary.LittleEndian.Uint32(existing) &^ clusterMask

		buf := make([]byte, 4)
		binary.LittleEndian.PutUint32(buf, (value&clusterMask)|reservedBits)
		if _, err := v.image.WriteAt(buf, offset); err != nil {
			return fserrors.ErrIOFailed.Wrap(err)
		}
	}
	return nil
}

// clusterRead returns the full cluster_size payload of cluster n.
func (v *Volume) clusterRead(n uint32) ([]byte, error) {
	buf := make([]byte, v.geo.ClusterSize)
	if _, err := v.image.ReadAt(buf, v.geo.ClusterOffset(n)); err != nil && err != io.EOF {
		return nil, fserrors.ErrIOFailed.Wrap(err)
	}
	return buf, nil
}

// clusterWrite overwrites cluster n. payload must be exactly cluster_size bytes.
func (v *Volume) clusterWrite(n uint32, payload []byte) error {
	if uint32(len(payload)) != v.geo.ClusterSize {
		return fserrors.ErrInvalidArgument.WithMessage("cluster payload size mismatch")
	}
	if _, err := v.image.WriteAt(payload, v.geo.ClusterOffset(n)); err != nil {
		return fserrors.ErrIOFailed.Wrap(err)
	}
	return nil
}

// isEndOfChain reports whether cluster is the end-of-chain sentinel.
func isEndOfChain(cluster uint32) bool {
	return cluster >= endOfChain
}

// isFreeCluster reports whether cluster is the free sentinel (0x00000000).
func isFreeCluster(cluster uint32) bool {
	return cluster == 0
}
