package volume

import (
	"strconv"
	"time"

	"github.com/noxer/bytewriter"

	fserrors "github.com/gofat32/fat32shell/errors"
)

// CreateDirectory creates a new subdirectory named name inside the directory at
// (parentCluster, parentPath), per spec section 4.6. The caller must already have
// verified via Resolve that no entry named name exists there.
func (v *Volume) CreateDirectory(parentCluster uint32, parentPath, name string) (Location, error) {
	return v.createEntry(parentCluster, parentPath, name, true)
}

// CreateFile creates a new empty file named name inside the directory at
// (parentCluster, parentPath), per spec section 4.6. The caller must already have
// verified via Resolve that no entry named name exists there.
func (v *Volume) CreateFile(parentCluster uint32, parentPath, name string) (Location, error) {
	return v.createEntry(parentCluster, parentPath, name, false)
}

func (v *Volume) createEntry(parentCluster uint32, parentPath, name string, isDir bool) (Location, error) {
	if len(name) == 0 {
		return Location{}, fserrors.ErrInvalidArgument.WithMessage("empty name")
	}
	if len(name) > maxNameLength {
		return Location{}, fserrors.ErrNameTooLong.WithMessage(name)
	}

	existingGroups, err := v.enumerateDir(parentCluster)
	if err != nil {
		return Location{}, err
	}
	shortName := "~" + strconv.Itoa(len(existingGroups)+1)

	now := time.Now()
	var contentCluster uint32
	if isDir {
		contentCluster, err = v.allocateFreeCluster()
		if err != nil {
			return Location{}, err
		}
		if err := v.fatWrite(contentCluster, endOfChain); err != nil {
			return Location{}, err
		}
		parentRefForDotDot := parentCluster
		if parentPath == "/" {
			parentRefForDotDot = 0
		}
		if err := v.seedDirectoryCluster(contentCluster, contentCluster, parentRefForDotDot); err != nil {
			return Location{}, err
		}
	}

	short := shortEntry{name: encodeShortName(shortName)}
	if isDir {
		short.attributes = attrDirectory
		short.setClusterID(contentCluster)
	} else {
		short.attributes = attrFile
		short.setClusterID(0)
	}
	short.createdDate = dateToFAT(now)
	short.createdTime = timeToFAT(now)
	short.modifiedDate = short.createdDate
	short.modifiedTime = short.createdTime
	short.fileSize = 0

	checksum := shortNameChecksum(short.name)
	fragments := buildLFNFragments(name, checksum)

	cluster, index, chain, err := v.findInsertionPoint(parentCluster)
	if err != nil {
		return Location{}, err
	}

	if err := v.writeEntryRun(parentCluster, cluster, index, chain, fragments, short); err != nil {
		return Location{}, err
	}

	if _, err := v.ResolveAndTouchParent(RootCluster, "/", parentPath); err != nil {
		return Location{}, err
	}

	childPath := "/" + name
	if parentPath != "/" {
		childPath = parentPath + "/" + name
	}

	childCluster := uint32(0)
	if isDir {
		childCluster = contentCluster
	}
	return Location{Cluster: childCluster, Path: childPath}, nil
}

// seedDirectoryCluster zeroes a freshly allocated directory cluster and writes the
// `.` and `..` entries at slots 0 and 1, per spec section 4.6 step 4. dotDotCluster is
// 0 when the new directory's parent is root (spec section 3's parent back-pointer
// invariant), else the parent's own first cluster.
func (v *Volume) seedDirectoryCluster(cluster, selfCluster, dotDotCluster uint32) error {
	data := make([]byte, v.geo.ClusterSize)

	dot := shortEntry{name: encodeShortName("."), attributes: attrDirectory}
	dot.setClusterID(selfCluster)
	dot.encode(data[0*direntSize : 1*direntSize])

	dotdot := shortEntry{name: encodeShortName(".."), attributes: attrDirectory}
	dotdot.setClusterID(dotDotCluster)
	dotdot.encode(data[1*direntSize : 2*direntSize])

	return v.clusterWrite(cluster, data)
}

// writeEntryRun writes fragments (in on-disk, text-last-first order) followed by
// short starting at (cluster, index), extending the parent's cluster chain as needed
// (spec section 4.6 steps 3 and 6). parentCluster is not used: the chain is extended
// from the last cluster in chain, and entries always spill into freshly allocated
// clusters starting at index 0.
func (v *Volume) writeEntryRun(
	parentCluster, cluster uint32, index int, chain []uint32, fragments []longEntry, short shortEntry,
) error {
	records := make([][]byte, 0, len(fragments)+1)
	for _, frag := range fragments {
		buf := make([]byte, direntSize)
		frag.encode(buf)
		records = append(records, buf)
	}
	shortBuf := make([]byte, direntSize)
	short.encode(shortBuf)
	records = append(records, shortBuf)

	slots := v.geo.DirentsPerCluster()
	currentCluster := cluster
	currentIndex := index
	chainTail := chain[len(chain)-1]

	data, err := v.clusterRead(currentCluster)
	if err != nil {
		return err
	}
	writer := bytewriter.New(data[currentIndex*direntSize:])

	for _, record := range records {
		if currentIndex >= slots {
			if err := v.clusterWrite(currentCluster, data); err != nil {
				return err
			}

			next, err := v.extendChain(chainTail)
			if err != nil {
				return err
			}
			chainTail = next

			currentCluster = next
			currentIndex = 0
			data, err = v.clusterRead(currentCluster)
			if err != nil {
				return err
			}
			writer = bytewriter.New(data[0:])
		}

		if _, err := writer.Write(record); err != nil {
			return fserrors.ErrIOFailed.Wrap(err)
		}
		currentIndex++
	}

	return v.clusterWrite(currentCluster, data)
}
