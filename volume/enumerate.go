package volume

// entryGroup is one decoded live file group: a directory or file's 8.3 entry, plus
// the reconstructed long name (falling back to the raw short name when there was no
// LFN run), plus where on disk the 8.3 entry itself lives so it can be rewritten in
// place later (resolveAndTouchParent, and tests asserting section 8's invariants).
type entryGroup struct {
	name    string
	short   shortEntry
	cluster uint32
	index   int
}

func (g *entryGroup) isDirectory() bool { return g.short.isDirectory() }

// enumerateDir walks the cluster chain of a directory and decodes every live file
// group in it, implementing the state machine of spec section 4.3. `.` and `..` are
// skipped; enumeration stops at the first free (0x00) slot.
func (v *Volume) enumerateDir(startCluster uint32) ([]entryGroup, error) {
	chain, err := v.clusterChain(startCluster)
	if err != nil {
		return nil, err
	}

	var groups []entryGroup
	var pending []longEntry

	for _, cluster := range chain {
		data, err := v.clusterRead(cluster)
		if err != nil {
			return nil, err
		}

		slots := v.geo.DirentsPerCluster()
		for i := 0; i < slots; i++ {
			slot := data[i*direntSize : (i+1)*direntSize]
			firstByte := slot[0]

			switch {
			case firstByte == sentinelFree:
				return groups, nil

			case firstByte == sentinelDeleted:
				pending = nil
				continue

			case entryAttributes(slot) == attrLongName:
				pending = append(pending, decodeLongEntry(slot))
				continue

			case firstByte == sentinelDot:
				pending = nil
				continue

			default:
				short := decodeShortEntry(slot)
				name := decodeLFNName(pending)
				if name == "" {
					name = trimShortName(short.name)
				}
				groups = append(groups, entryGroup{
					name:    name,
					short:   short,
					cluster: cluster,
					index:   i,
				})
				pending = nil
			}
		}
	}

	return groups, nil
}

// trimShortName strips the trailing space padding from an 11-byte 8.3 short name.
func trimShortName(raw [11]byte) string {
	end := len(raw)
	for end > 0 && raw[end-1] == ' ' {
		end--
	}
	return string(raw[:end])
}

// findByName returns the entryGroup in dir whose decoded name matches target
// byte-for-byte, or ok=false if none does. Per spec section 8 property 3, names are
// compared over the printable ASCII subset the engine accepts.
func findByName(groups []entryGroup, target string) (entryGroup, bool) {
	for _, g := range groups {
		if g.name == target {
			return g, true
		}
	}
	return entryGroup{}, false
}

// findInsertionPoint walks dir's cluster chain looking for the first slot whose first
// byte is 0x00 (spec section 4.6 step 2), returning the cluster it's in, the
// in-cluster index, and the full chain walked so far (so the splicer can decide
// whether it needs to extend the chain).
func (v *Volume) findInsertionPoint(startCluster uint32) (cluster uint32, index int, chain []uint32, err error) {
	chain, err = v.clusterChain(startCluster)
	if err != nil {
		return 0, 0, nil, err
	}

	slots := v.geo.DirentsPerCluster()
	for _, c := range chain {
		data, err := v.clusterRead(c)
		if err != nil {
			return 0, 0, nil, err
		}
		for i := 0; i < slots; i++ {
			if data[i*direntSize] == sentinelFree {
				return c, i, chain, nil
			}
		}
	}

	// Every existing cluster is full; the splicer will extend the chain starting at
	// index 0 of a freshly allocated cluster.
	return chain[len(chain)-1], slots, chain, nil
}
