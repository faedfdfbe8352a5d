package bpb_test

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/gofat32/fat32shell/bpb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRawSector() bpb.RawSector {
	return bpb.RawSector{
		BytesPerSector:    512,
		SectorsPerCluster: 8,
		ReservedSectors:   32,
		NumFATs:           2,
		SectorsPerFAT32:   100,
		RootCluster:       2,
		TotalSectors32:    2048,
	}
}

func encode(t *testing.T, raw bpb.RawSector) *bytes.Buffer {
	t.Helper()
	buf := &bytes.Buffer{}
	require.NoError(t, binary.Write(buf, binary.LittleEndian, raw))
	return buf
}

func TestParseDerivesGeometry(t *testing.T) {
	geo, err := bpb.Parse(encode(t, validRawSector()))
	require.NoError(t, err)

	assert.EqualValues(t, 4096, geo.ClusterSize)
	assert.EqualValues(t, 512*32, geo.FATRegionOffset)
	assert.EqualValues(t, 512*100, geo.FATSizeBytes)
	assert.EqualValues(t, 512*32+2*512*100, geo.DataRegionOffset)
	assert.Equal(t, 128, geo.DirentsPerCluster())
	assert.EqualValues(t, 2048*512, geo.SizeBytes())
}

func TestParseRejectsBadBytesPerSector(t *testing.T) {
	raw := validRawSector()
	raw.BytesPerSector = 333
	_, err := bpb.Parse(encode(t, raw))
	assert.Error(t, err)
}

func TestParseAggregatesMultipleProblems(t *testing.T) {
	raw := validRawSector()
	raw.BytesPerSector = 333
	raw.SectorsPerCluster = 3
	raw.NumFATs = 0

	_, err := bpb.Parse(encode(t, raw))
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, "BytesPerSector")
	assert.Contains(t, msg, "SectorsPerCluster")
	assert.Contains(t, msg, "NumFATs")
}

func TestParseRejectsFAT16Image(t *testing.T) {
	raw := validRawSector()
	raw.SectorsPerFAT16 = 9
	raw.SectorsPerFAT32 = 0
	_, err := bpb.Parse(encode(t, raw))
	assert.Error(t, err)
}

func TestClusterOffset(t *testing.T) {
	geo, err := bpb.Parse(encode(t, validRawSector()))
	require.NoError(t, err)

	assert.Equal(t, int64(geo.DataRegionOffset), geo.ClusterOffset(2))
	assert.Equal(t, int64(geo.DataRegionOffset)+int64(geo.ClusterSize), geo.ClusterOffset(3))
}
