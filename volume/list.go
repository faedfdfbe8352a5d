package volume

import "fmt"

// monthNames is a static lookup table for the month nibble packed into a FAT date
// field, per spec section 9's guidance to use a table rather than a conditional
// chain. Index 0 is unused so the 1..12 nibble can index directly.
var monthNames = [...]string{
	"", "January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// ListEntry is one line of output for the `ls` operation.
type ListEntry struct {
	Name       string
	IsDir      bool
	Size       uint32
	ModifiedAt modifiedStamp
}

// modifiedStamp is the decoded (month, day, hour, minute) of a directory entry's
// LastModified field, kept separate from time.Time so malformed/zero dates (e.g. on
// freshly-formatted images this engine never wrote) don't need a full calendar.
type modifiedStamp struct {
	month  int
	day    int
	hour   int
	minute int
}

// List returns the decoded entries of the directory at cluster, in on-disk order, for
// both the plain and long (`-l`) `ls` modes of spec section 4.10.
func (v *Volume) List(cluster uint32) ([]ListEntry, error) {
	groups, err := v.enumerateDir(cluster)
	if err != nil {
		return nil, err
	}

	out := make([]ListEntry, len(groups))
	for i, g := range groups {
		out[i] = ListEntry{
			Name:  g.name,
			IsDir: g.isDirectory(),
			Size:  g.short.fileSize,
			ModifiedAt: modifiedStamp{
				day:    int(g.short.modifiedDate & 0x1F),
				month:  int((g.short.modifiedDate >> 5) & 0x0F),
				hour:   int(g.short.modifiedTime >> 11),
				minute: int((g.short.modifiedTime >> 5) & 0x3F),
			},
		}
	}
	return out, nil
}

// FormatPlain renders entries the way plain `ls` does: decoded names separated by
// single spaces, terminated by a newline.
func FormatPlain(entries []ListEntry) string {
	out := ""
	for _, e := range entries {
		out += e.Name + " "
	}
	return out + "\n"
}

// FormatLong renders entries the way `ls -l` does: one line per entry with a
// type-dependent header, size, month name, zero-padded day, zero-padded HH:MM, and the
// decoded name.
func FormatLong(entries []ListEntry) string {
	out := ""
	for _, e := range entries {
		header := "-rwx------ 1 root root "
		if e.IsDir {
			header = "drwx------ 1 root root "
		}

		size := e.Size
		if e.IsDir {
			size = 0
		}

		month := monthNames[e.ModifiedAt.month%13]
		out += fmt.Sprintf(
			"%s%d %s %02d %02d:%02d %s\n",
			header, size, month, e.ModifiedAt.day, e.ModifiedAt.hour, e.ModifiedAt.minute, e.Name)
	}
	return out
}
