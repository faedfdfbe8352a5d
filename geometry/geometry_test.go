package geometry_test

import (
	"testing"

	"github.com/gofat32/fat32shell/geometry"
	"github.com/stretchr/testify/assert"
)

func TestDescribeKnownSize(t *testing.T) {
	label, ok := geometry.Describe(1474560)
	assert.True(t, ok)
	assert.Contains(t, label, "floppy")
}

func TestDescribeUnknownSize(t *testing.T) {
	_, ok := geometry.Describe(12345)
	assert.False(t, ok)
}

func TestDescribeWithinTolerance(t *testing.T) {
	label, ok := geometry.Describe(1474560 + 1000)
	assert.True(t, ok)
	assert.Contains(t, label, "1.44")
}
