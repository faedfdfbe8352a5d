package volume

import fserrors "github.com/gofat32/fat32shell/errors"

// ReadFile streams the full contents of the file at (parentCluster, parentPath)/name,
// per spec section 4.9. fileSize is treated as authoritative: reading stops once
// fileSize bytes have been emitted, regardless of what's left in the final cluster.
// This supersedes the original implementation's quirk of also stopping early on a
// 0xFF byte (spec section 9, open question 1) -- that heuristic is not implemented
// here.
func (v *Volume) ReadFile(parentCluster uint32, name string) ([]byte, error) {
	groups, err := v.enumerateDir(parentCluster)
	if err != nil {
		return nil, err
	}
	group, ok := findByName(groups, name)
	if !ok {
		return nil, fserrors.ErrNotFound.WithMessage(name)
	}
	if group.isDirectory() {
		return nil, fserrors.ErrIsADirectory.WithMessage(name)
	}

	size := group.short.fileSize
	if size == 0 {
		return []byte{}, nil
	}

	out := make([]byte, 0, size)
	remaining := size

	chain, err := v.clusterChain(group.short.clusterID())
	if err != nil {
		return nil, err
	}

	for _, cluster := range chain {
		if remaining == 0 {
			break
		}
		data, err := v.clusterRead(cluster)
		if err != nil {
			return nil, err
		}
		take := uint32(len(data))
		if take > remaining {
			take = remaining
		}
		out = append(out, data[:take]...)
		remaining -= take
	}

	return out, nil
}
