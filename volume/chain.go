package volume

// clusterChain returns every cluster reachable from start by following FAT links,
// starting with start itself and stopping once a link reads as end-of-chain. Per spec
// section 4.2, a cyclic chain is trusted not to occur; this iterator does not guard
// against one and will not terminate if it does.
func (v *Volume) clusterChain(start uint32) ([]uint32, error) {
	chain := []uint32{start}
	current := start

	for {
		next, err := v.fatRead(current)
		if err != nil {
			return nil, err
		}
		if isEndOfChain(next) {
			return chain, nil
		}
		chain = append(chain, next)
		current = next
	}
}

// extendChain allocates a fresh cluster, zeroes it, links it onto the end of the chain
// whose current last cluster is tail, and returns the new cluster's ID. Used by the
// entry splicer (spec section 4.6 step 3) when a directory's existing clusters don't
// have room for a new entry run.
func (v *Volume) extendChain(tail uint32) (uint32, error) {
	next, err := v.allocateFreeCluster()
	if err != nil {
		return 0, err
	}

	zero := make([]byte, v.geo.ClusterSize)
	if err := v.clusterWrite(next, zero); err != nil {
		return 0, err
	}
	if err := v.fatWrite(next, endOfChain); err != nil {
		return 0, err
	}
	if err := v.fatWrite(tail, next); err != nil {
		return 0, err
	}
	return next, nil
}
