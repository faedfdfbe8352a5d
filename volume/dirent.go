package volume

import (
	"encoding/binary"
	"time"
)

// direntSize is the size in bytes of a single directory entry slot, in either of its
// two variants (spec section 3).
const direntSize = 32

// Directory entry attribute flags (offset 11 of the on-disk record).
const (
	attrDirectory = 0x10
	attrFile      = 0x20
	attrLongName  = 0x0F
)

// First-byte sentinels in the entry stream (spec section 3).
const (
	sentinelFree    = 0x00
	sentinelDeleted = 0xE5
	sentinelDot     = 0x2E
)

// shortEntry is the decoded 8.3 directory entry variant.
type shortEntry struct {
	name             [11]byte
	attributes       uint8
	reserved         uint8
	createdTimeTens  uint8
	createdTime      uint16
	createdDate      uint16
	lastAccessedDate uint16
	firstClusterHigh uint16
	modifiedTime     uint16
	modifiedDate     uint16
	firstClusterLow  uint16
	fileSize         uint32
}

func (e *shortEntry) isDirectory() bool { return e.attributes&attrDirectory != 0 }
func (e *shortEntry) clusterID() uint32 { return resolveClusterID(e.firstClusterHigh, e.firstClusterLow) }

func (e *shortEntry) setClusterID(id uint32) {
	e.firstClusterHigh, e.firstClusterLow = splitClusterID(id)
}

func decodeShortEntry(data []byte) shortEntry {
	var e shortEntry
	copy(e.name[:], data[0:11])
	e.attributes = data[11]
	e.reserved = data[12]
	e.createdTimeTens = data[13]
	e.createdTime = binary.LittleEndian.Uint16(data[14:16])
	e.createdDate = binary.LittleEndian.Uint16(data[16:18])
	e.lastAccessedDate = binary.LittleEndian.Uint16(data[18:20])
	e.firstClusterHigh = binary.LittleEndian.Uint16(data[20:22])
	e.modifiedTime = binary.LittleEndian.Uint16(data[22:24])
	e.modifiedDate = binary.LittleEndian.Uint16(data[24:26])
	e.firstClusterLow = binary.LittleEndian.Uint16(data[26:28])
	e.fileSize = binary.LittleEndian.Uint32(data[28:32])
	return e
}

func (e *shortEntry) encode(data []byte) {
	copy(data[0:11], e.name[:])
	data[11] = e.attributes
	data[12] = e.reserved
	data[13] = e.createdTimeTens
	binary.LittleEndian.PutUint16(data[14:16], e.createdTime)
	binary.LittleEndian.PutUint16(data[16:18], e.createdDate)
	binary.LittleEndian.PutUint16(data[18:20], e.lastAccessedDate)
	binary.LittleEndian.PutUint16(data[20:22], e.firstClusterHigh)
	binary.LittleEndian.PutUint16(data[22:24], e.modifiedTime)
	binary.LittleEndian.PutUint16(data[24:26], e.modifiedDate)
	binary.LittleEndian.PutUint16(data[26:28], e.firstClusterLow)
	binary.LittleEndian.PutUint32(data[28:32], e.fileSize)
}

// longEntry is the decoded LFN directory entry variant: one fragment of up to 13
// UCS-2 characters of a long name.
type longEntry struct {
	sequence  uint8
	name1     [5]uint16
	checksum  uint8
	name2     [6]uint16
	name3     [2]uint16
}

// lastLogicalFlag marks the text-last fragment of an LFN run (the first one written
// on disk).
const lastLogicalFlag = 0x40

func decodeLongEntry(data []byte) longEntry {
	var e longEntry
	e.sequence = data[0]
	for i := 0; i < 5; i++ {
		e.name1[i] = binary.LittleEndian.Uint16(data[1+2*i : 3+2*i])
	}
	// byte 11 is the attribute (0x0F), byte 12 is reserved (always 0)
	e.checksum = data[13]
	for i := 0; i < 6; i++ {
		e.name2[i] = binary.LittleEndian.Uint16(data[14+2*i : 16+2*i])
	}
	// bytes 26-27 are the first-cluster field, always 0 for LFN entries
	for i := 0; i < 2; i++ {
		e.name3[i] = binary.LittleEndian.Uint16(data[28+2*i : 30+2*i])
	}
	return e
}

func (e *longEntry) encode(data []byte) {
	data[0] = e.sequence
	for i := 0; i < 5; i++ {
		binary.LittleEndian.PutUint16(data[1+2*i:3+2*i], e.name1[i])
	}
	data[11] = attrLongName
	data[12] = 0
	data[13] = e.checksum
	for i := 0; i < 6; i++ {
		binary.LittleEndian.PutUint16(data[14+2*i:16+2*i], e.name2[i])
	}
	binary.LittleEndian.PutUint16(data[26:28], 0)
	for i := 0; i < 2; i++ {
		binary.LittleEndian.PutUint16(data[28+2*i:30+2*i], e.name3[i])
	}
}

// entryAttributes peeks the attribute byte of a raw 32-byte slot without fully
// decoding it, to decide which variant to parse.
func entryAttributes(data []byte) uint8 { return data[11] }

// dateFromFAT converts a FAT date field into a time.Time (midnight, local time), per
// spec section 3's encoding: (year-1980)<<9 | month<<5 | day.
func dateFromFAT(value uint16) time.Time {
	day := int(value & 0x1F)
	month := time.Month((value >> 5) & 0x0F)
	year := 1980 + int(value>>9)
	if day == 0 {
		day = 1
	}
	if month == 0 {
		month = time.January
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.Local)
}

// timeFromFAT converts a FAT time field into hour/minute/second components, per spec
// section 3: hour<<11 | minute<<5 | seconds/2.
func timeFromFAT(value uint16) (hour, minute, second int) {
	second = int(value&0x1F) * 2
	minute = int((value >> 5) & 0x3F)
	hour = int(value >> 11)
	return
}

// dateToFAT encodes a time.Time's date into the FAT date field.
func dateToFAT(t time.Time) uint16 {
	return uint16((t.Year()-1980)<<9) | uint16(t.Month())<<5 | uint16(t.Day())
}

// timeToFAT encodes a time.Time's time-of-day into the FAT time field.
func timeToFAT(t time.Time) uint16 {
	return uint16(t.Hour())<<11 | uint16(t.Minute())<<5 | uint16(t.Second()/2)
}

// timestampFromFAT combines a FAT date+time pair into a single time.Time.
func timestampFromFAT(date, clock uint16) time.Time {
	d := dateFromFAT(date)
	hour, minute, second := timeFromFAT(clock)
	return time.Date(d.Year(), d.Month(), d.Day(), hour, minute, second, 0, time.Local)
}
