package volume

import fserrors "github.com/gofat32/fat32shell/errors"

// allocateFreeCluster performs a linear scan of the FAT starting from index 0 and
// returns the first index whose entry reads as free (0). Per spec section 4.5, no
// bitmap cache is maintained here: worst case cost is linear in the size of the FAT on
// every call. The caller is responsible for writing an end-of-chain marker (or a link
// to a predecessor) into the returned index before it's considered allocated.
func (v *Volume) allocateFreeCluster() (uint32, error) {
	total := v.geo.FATSizeBytes / 4

	for i := uint32(0); i < total; i++ {
		entry, err := v.fatRead(i)
		if err != nil {
			return 0, err
		}
		if isFreeCluster(entry) {
			return i, nil
		}
	}
	return 0, fserrors.ErrNoSpaceOnDevice
}
