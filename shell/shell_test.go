package shell_test

import (
	"bytes"
	"encoding/binary"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/bytesextra"

	"github.com/gofat32/fat32shell/shell"
	"github.com/gofat32/fat32shell/volume"
)

// buildImage hand-assembles a minimal FAT32 image with an empty root directory, the
// same way the volume package's own fixtures do, so the shell's REPL loop can be driven
// end to end without a real mkfs.fat image.
func buildImage(t *testing.T, totalClusters uint32) []byte {
	t.Helper()

	const bytesPerSector = 512
	const reservedSectors = 1
	const numFATs = 2
	clusterSize := uint32(bytesPerSector)

	fatEntries := totalClusters + 2
	fatSizeBytes := fatEntries * 4
	fatSectors := (fatSizeBytes + bytesPerSector - 1) / bytesPerSector
	fatSizeBytes = fatSectors * bytesPerSector

	dataRegionOffset := reservedSectors*bytesPerSector + numFATs*fatSizeBytes
	totalSize := dataRegionOffset + totalClusters*clusterSize
	image := make([]byte, totalSize)

	sector := struct {
		JmpBoot           [3]byte
		OEMName           [8]byte
		BytesPerSector    uint16
		SectorsPerCluster uint8
		ReservedSectors   uint16
		NumFATs           uint8
		RootEntryCount    uint16
		TotalSectors16    uint16
		Media             uint8
		SectorsPerFAT16   uint16
		SectorsPerTrack   uint16
		NumHeads          uint16
		HiddenSectors     uint32
		TotalSectors32    uint32
		SectorsPerFAT32   uint32
		ExtFlags          uint16
		FSVersionMinor    uint8
		FSVersionMajor    uint8
		RootCluster       uint32
		FSInfoSector      uint16
		BackupBootSector  uint16
		reserved          [12]byte
		DriveNumber       uint8
		NTReserved        uint8
		ExBootSignature   uint8
		VolumeID          uint32
		VolumeLabel       [11]byte
		FileSystemType    [8]byte
	}{
		BytesPerSector:    bytesPerSector,
		SectorsPerCluster: 1,
		ReservedSectors:   reservedSectors,
		NumFATs:           numFATs,
		SectorsPerFAT32:   fatSectors,
		RootCluster:       2,
		TotalSectors32:    totalSize / bytesPerSector,
	}

	buf := &bytes.Buffer{}
	require.NoError(t, binary.Write(buf, binary.LittleEndian, sector))
	copy(image[0:], buf.Bytes())

	setFATEntry := func(copyIndex, index, value uint32) {
		offset := reservedSectors*bytesPerSector + copyIndex*fatSizeBytes + index*4
		binary.LittleEndian.PutUint32(image[offset:offset+4], value)
	}
	for c := uint32(0); c < numFATs; c++ {
		setFATEntry(c, 0, 0x0FFFFFF8)
		setFATEntry(c, 1, 0x0FFFFFFF)
		setFATEntry(c, 2, 0x0FFFFFF8)
	}

	return image
}

func mountFixture(t *testing.T, totalClusters uint32) *volume.Volume {
	t.Helper()
	raw := buildImage(t, totalClusters)
	stream := bytesextra.NewReadWriteSeeker(raw)
	vol, err := volume.Mount(stream)
	require.NoError(t, err)
	return vol
}

func runScript(t *testing.T, vol *volume.Volume, script string) string {
	t.Helper()
	var out bytes.Buffer
	s := shell.New(vol, &out)
	err := s.Run(strings.NewReader(script))
	require.NoError(t, err)
	return out.String()
}

func TestEmptyRootPromptAndListing(t *testing.T) {
	vol := mountFixture(t, 32)
	out := runScript(t, vol, "ls\nquit\n")
	assert.Equal(t, "/>\n/>", out)
}

func TestMkdirCdRoundTripChangesPrompt(t *testing.T) {
	vol := mountFixture(t, 32)
	out := runScript(t, vol, "mkdir foo\ncd foo\ncd ..\nquit\n")
	assert.Equal(t, "/>/>/foo>/>", out)
}

func TestMkdirThenLsShowsEntry(t *testing.T) {
	vol := mountFixture(t, 32)
	out := runScript(t, vol, "mkdir foo\nls\nquit\n")
	assert.Contains(t, out, "foo \n")
}

func TestTouchThenLsLongShowsFileHeader(t *testing.T) {
	vol := mountFixture(t, 32)
	out := runScript(t, vol, "touch readme.txt\nls -l\nquit\n")
	assert.Contains(t, out, "-rwx------ 1 root root 0 ")
}

func TestCdToMissingPathIsSilent(t *testing.T) {
	vol := mountFixture(t, 32)
	out := runScript(t, vol, "cd nope\nls\nquit\n")
	assert.Equal(t, "/>/>\n/>", out)
}

func TestMkdirExistingNameIsSilentNoOp(t *testing.T) {
	vol := mountFixture(t, 32)
	out := runScript(t, vol, "mkdir foo\nmkdir foo\nls\nquit\n")
	entries, err := vol.List(volume.RootCluster)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.Contains(t, out, "foo \n")
}

func TestCatOnMissingFileIsSilent(t *testing.T) {
	vol := mountFixture(t, 32)
	out := runScript(t, vol, "cat nope.txt\nquit\n")
	assert.Equal(t, "/>/>", out)
}

func TestQuitEndsLoopBeforeFurtherInput(t *testing.T) {
	vol := mountFixture(t, 32)
	out := runScript(t, vol, "quit\nmkdir shouldnotrun\n")
	assert.Equal(t, "/>", out)

	entries, err := vol.List(volume.RootCluster)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
