package volume

import (
	"strings"
	"time"

	fserrors "github.com/gofat32/fat32shell/errors"
)

// Location is a resolved (cluster, canonical path) pair, the result of walking a path
// per spec section 4.4.
type Location struct {
	Cluster uint32
	Path    string
}

// Resolve walks target starting from (startCluster, startPath) and returns the
// resulting location, following the `.` / `..` semantics and absolute/relative rules
// of spec section 4.4. Returns ErrNotFound if any path component fails to resolve.
func (v *Volume) Resolve(startCluster uint32, startPath, target string) (Location, error) {
	return v.walk(startCluster, startPath, target, false)
}

// ResolveAndTouchParent performs the same walk as Resolve, but immediately before
// descending into the final matched segment's entry, overwrites that entry's
// LastModified timestamp with the current wall-clock time and persists the cluster it
// lives in. Callers use this on a directory's own path right after creating a child
// inside it, so the containing directory's entry in ITS parent reflects the mutation
// (spec section 4.4).
func (v *Volume) ResolveAndTouchParent(startCluster uint32, startPath, target string) (Location, error) {
	return v.walk(startCluster, startPath, target, true)
}

func (v *Volume) walk(startCluster uint32, startPath, target string, touchFinal bool) (Location, error) {
	cluster := startCluster
	path := startPath

	segments, absolute := splitPath(target)
	if absolute {
		cluster = RootCluster
		path = "/"
	}

	for i, segment := range segments {
		isLast := i == len(segments)-1

		switch segment {
		case ".":
			// no-op

		case "..":
			if path == "/" {
				// root has no parent
				continue
			}
			next, err := v.parentCluster(cluster)
			if err != nil {
				return Location{}, err
			}
			cluster = next
			path = trimLastPathComponent(path)

		default:
			groups, err := v.enumerateDir(cluster)
			if err != nil {
				return Location{}, err
			}
			group, ok := findByName(groups, segment)
			if !ok {
				return Location{}, fserrors.ErrNotFound.WithMessage(segment)
			}

			if touchFinal && isLast {
				if err := v.touchEntry(&group, time.Now()); err != nil {
					return Location{}, err
				}
			}

			cluster = group.short.clusterID()
			if path == "/" {
				path = "/" + segment
			} else {
				path = path + "/" + segment
			}
		}
	}

	return Location{Cluster: cluster, Path: path}, nil
}

// splitPath splits a target path on '/', dropping the empty leading segment an
// absolute path produces, and reports whether target was absolute.
func splitPath(target string) (segments []string, absolute bool) {
	absolute = strings.HasPrefix(target, "/")
	for _, part := range strings.Split(target, "/") {
		if part == "" {
			continue
		}
		segments = append(segments, part)
	}
	return segments, absolute
}

// trimLastPathComponent removes the last "/component" from a canonical path, leaving
// "/" if nothing remains.
func trimLastPathComponent(path string) string {
	idx := strings.LastIndex(path, "/")
	if idx <= 0 {
		return "/"
	}
	return path[:idx]
}

// parentCluster reads the `..` entry (directory entry slot index 1) of the directory
// at cluster and returns the cluster ID it names, substituting the root cluster when
// the stored value is 0 per spec section 3's parent back-pointer invariant. This
// substitution is scoped to this dedicated `..` read; the generic path walk in
// resolveClusterID never applies it (spec section 4.4 step 3's "otherwise" bullet).
func (v *Volume) parentCluster(cluster uint32) (uint32, error) {
	data, err := v.clusterRead(cluster)
	if err != nil {
		return 0, err
	}
	dotdot := decodeShortEntry(data[1*direntSize : 2*direntSize])
	id := dotdot.clusterID()
	if id == 0 {
		return RootCluster, nil
	}
	return id, nil
}

// touchEntry overwrites group's 8.3 entry's modified time/date with now and persists
// the cluster it lives in.
func (v *Volume) touchEntry(group *entryGroup, now time.Time) error {
	group.short.modifiedDate = dateToFAT(now)
	group.short.modifiedTime = timeToFAT(now)

	data, err := v.clusterRead(group.cluster)
	if err != nil {
		return err
	}
	group.short.encode(data[group.index*direntSize : (group.index+1)*direntSize])
	return v.clusterWrite(group.cluster, data)
}
