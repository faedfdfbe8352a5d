// Package volume implements the FAT32 volume engine: the block layer, cluster chain
// iterator, directory entry codec (short name + long file name), path resolver,
// cluster allocator, and entry splicer described by the specification. It is usable
// standalone, without any REPL or tokenizer.
package volume

import (
	"io"

	"github.com/boljen/go-bitmap"

	"github.com/gofat32/fat32shell/bpb"
	"github.com/gofat32/fat32shell/geometry"
)

// RootCluster is the fixed first cluster of the root directory. Spec section 3 numbers
// data clusters starting at 2; the root directory always begins there.
const RootCluster uint32 = 2

// ImageFile is the minimal surface the engine needs from the mounted disk image.
type ImageFile interface {
	io.ReaderAt
	io.WriterAt
}

// Volume is a mounted FAT32 image, holding the image handle and its immutable
// geometry. All operations are synchronous; see spec section 5 for the concurrency
// model (none).
type Volume struct {
	image ImageFile
	geo   *bpb.BPB
}

// Mount parses the BPB from the start of image and returns a ready Volume. image must
// support both ReadAt and WriteAt (e.g. an *os.File opened O_RDWR, or an in-memory
// bytesextra.ReadWriteSeeker in tests).
func Mount(image ImageFile) (*Volume, error) {
	// The BPB lives entirely within the first reserved sector; a section reader
	// keeps bpb.Parse from needing to know the image's total size.
	sectionReader := io.NewSectionReader(image, 0, 512)
	geo, err := bpb.Parse(sectionReader)
	if err != nil {
		return nil, err
	}
	return &Volume{image: image, geo: geo}, nil
}

// Geometry exposes the volume's parsed BPB for callers that need raw constants (tests,
// diagnostics).
func (v *Volume) Geometry() *bpb.BPB {
	return v.geo
}

// SizeLabel returns a human-readable advisory label for the volume's recorded total
// size (e.g. "256 MiB (CompactFlash / SD)"), or ok=false if it doesn't match any known
// preset. Purely informational: it never influences parsed geometry.
func (v *Volume) SizeLabel() (label string, ok bool) {
	return geometry.Describe(v.geo.SizeBytes())
}

// FreeClusterBitmap returns a snapshot of which clusters are currently allocated,
// built fresh from a linear scan of the FAT every time it's called. It is a read-only
// diagnostic: the allocator itself never consults or maintains this bitmap, honoring
// spec section 4.5's "no bitmap cache" requirement for the allocation path.
func (v *Volume) FreeClusterBitmap() (bitmap.Bitmap, error) {
	total := v.geo.FATSizeBytes / 4
	bm := bitmap.New(int(total))

	for i := uint32(0); i < total; i++ {
		entry, err := v.fatRead(i)
		if err != nil {
			return nil, err
		}
		if !isFreeCluster(entry) {
			bm.Set(int(i), true)
		}
	}
	return bm, nil
}

// Check walks the volume from the root directory and verifies the testable properties
// of spec section 8 that hold across the whole tree: FAT mirror equality, cluster
// chain termination, LFN checksum consistency, and the parent back-pointer invariant.
// It is not required by any shell command; it exists so those invariants have a single
// place to be asserted from tests. Every violation found is reported, not just the
// first.
func (v *Volume) Check() error {
	checker := &consistencyChecker{v: v, visited: map[uint32]bool{}}
	checker.checkFATMirrors()
	checker.checkDirectory(RootCluster, RootCluster)
	return checker.problems.ErrorOrNil()
}

// resolveClusterID reconstructs the raw 32-bit cluster ID from the split
// first-cluster-high / first-cluster-low fields stored in an 8.3 entry. Spec section
// 4.4 step 3's "otherwise" bullet defines this combination with no substitution: every
// matched child (file or directory) resolves to exactly this value, including the 0
// every plain file's unused cluster fields hold. Only a dedicated `..` read applies the
// root-cluster substitution; see parentCluster in resolve.go.
func resolveClusterID(eaIndex, firstCluster uint16) uint32 {
	return (uint32(eaIndex) << 16) | uint32(firstCluster)
}

// splitClusterID is the inverse of resolveClusterID: it produces the
// (first-cluster-high, first-cluster-low) pair to store in an 8.3 entry for the given
// cluster ID.
func splitClusterID(id uint32) (eaIndex, firstCluster uint16) {
	return uint16(id >> 16), uint16(id & 0xFFFF)
}
