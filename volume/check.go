package volume

import (
	"encoding/binary"
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// consistencyChecker accumulates every violation Check finds, rather than stopping at
// the first, mirroring the BPB validation aggregation of bpb.Parse.
type consistencyChecker struct {
	v        *Volume
	visited  map[uint32]bool
	problems *multierror.Error
}

// checkFATMirrors verifies testable property 1: every FAT copy reads identically at
// every index.
func (c *consistencyChecker) checkFATMirrors() {
	total := c.v.geo.FATSizeBytes / 4
	primary := make([]byte, c.v.geo.FATSizeBytes)
	if _, err := c.v.image.ReadAt(primary, int64(c.v.geo.FATRegionOffset)); err != nil {
		c.problems = multierror.Append(c.problems, fmt.Errorf("reading primary FAT: %w", err))
		return
	}

	for copyIndex := uint32(1); copyIndex < c.v.geo.NumFATs; copyIndex++ {
		offset := int64(c.v.geo.FATRegionOffset) + int64(copyIndex)*int64(c.v.geo.FATSizeBytes)
		mirror := make([]byte, c.v.geo.FATSizeBytes)
		if _, err := c.v.image.ReadAt(mirror, offset); err != nil {
			c.problems = multierror.Append(c.problems, fmt.Errorf("reading FAT copy %d: %w", copyIndex, err))
			continue
		}

		for i := uint32(0); i < total; i++ {
			a := binary.LittleEndian.Uint32(primary[i*4:]) & clusterMask
			b := binary.LittleEndian.Uint32(mirror[i*4:]) & clusterMask
			if a != b {
				c.problems = multierror.Append(c.problems, fmt.Errorf(
					"FAT copy %d disagrees with primary at index %d: %#x != %#x", copyIndex, i, b, a))
			}
		}
	}
}

// checkDirectory recursively walks a directory, verifying testable properties 2
// (chain termination), 4 (checksum consistency), and 5 (parent back-pointer), for
// itself and every subdirectory reachable from it.
func (c *consistencyChecker) checkDirectory(cluster, expectedParent uint32) {
	if c.visited[cluster] {
		c.problems = multierror.Append(c.problems, fmt.Errorf(
			"cluster chain re-entry detected at cluster %d", cluster))
		return
	}
	c.visited[cluster] = true

	if cluster != RootCluster {
		parent, err := c.v.parentCluster(cluster)
		if err != nil {
			c.problems = multierror.Append(c.problems, fmt.Errorf(
				"reading parent pointer of cluster %d: %w", cluster, err))
		} else if parent != expectedParent {
			c.problems = multierror.Append(c.problems, fmt.Errorf(
				"cluster %d's .. entry names parent %d, expected %d", cluster, parent, expectedParent))
		}
	}

	// clusterChain does not terminate on a cyclic chain, so look for a cycle first.
	seen := map[uint32]bool{}
	for current := cluster; !isEndOfChain(current); {
		if seen[current] {
			c.problems = multierror.Append(c.problems, fmt.Errorf(
				"cluster chain from %d re-enters cluster %d", cluster, current))
			return
		}
		seen[current] = true
		next, err := c.v.fatRead(current)
		if err != nil {
			break // reported by the clusterChain call below
		}
		current = next
	}

	chain, err := c.v.clusterChain(cluster)
	if err != nil {
		c.problems = multierror.Append(c.problems, fmt.Errorf(
			"walking cluster chain from %d: %w", cluster, err))
		return
	}

	c.checkChecksums(chain)

	groups, err := c.v.enumerateDir(cluster)
	if err != nil {
		c.problems = multierror.Append(c.problems, fmt.Errorf(
			"enumerating directory at cluster %d: %w", cluster, err))
		return
	}

	for _, g := range groups {
		if g.isDirectory() {
			c.checkDirectory(g.short.clusterID(), cluster)
		}
	}
}

// checkChecksums verifies that every LFN fragment's checksum byte matches the
// checksum computed from the short name of the 8.3 entry it precedes.
func (c *consistencyChecker) checkChecksums(chain []uint32) {
	slots := c.v.geo.DirentsPerCluster()
	var pending []longEntry

	for _, cluster := range chain {
		data, err := c.v.clusterRead(cluster)
		if err != nil {
			c.problems = multierror.Append(c.problems, fmt.Errorf(
				"reading cluster %d: %w", cluster, err))
			return
		}

		for i := 0; i < slots; i++ {
			slot := data[i*direntSize : (i+1)*direntSize]
			switch {
			case slot[0] == sentinelFree:
				return
			case slot[0] == sentinelDeleted, slot[0] == sentinelDot:
				pending = nil
			case entryAttributes(slot) == attrLongName:
				pending = append(pending, decodeLongEntry(slot))
			default:
				short := decodeShortEntry(slot)
				want := shortNameChecksum(short.name)
				for _, frag := range pending {
					if frag.checksum != want {
						c.problems = multierror.Append(c.problems, fmt.Errorf(
							"LFN fragment checksum %#x does not match short name checksum %#x for %q",
							frag.checksum, want, trimShortName(short.name)))
					}
				}
				pending = nil
			}
		}
	}
}
