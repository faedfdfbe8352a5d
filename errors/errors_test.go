package errors_test

import (
	stderrors "errors"
	"testing"

	"github.com/gofat32/fat32shell/errors"
	"github.com/stretchr/testify/assert"
)

func TestFSErrorWithMessage(t *testing.T) {
	newErr := errors.ErrNotFound.WithMessage("/foo/bar")
	assert.Equal(t, "no such file or directory: /foo/bar", newErr.Error())
	assert.ErrorIs(t, newErr, errors.ErrNotFound)
}

func TestFSErrorWrap(t *testing.T) {
	originalErr := stderrors.New("short read")
	newErr := errors.ErrIOFailed.Wrap(originalErr)

	assert.Equal(t, "input/output error: short read", newErr.Error())
	assert.ErrorIs(t, newErr, originalErr)
	assert.ErrorIs(t, newErr, errors.ErrIOFailed)
}

func TestFSErrorChaining(t *testing.T) {
	err := errors.ErrExists.WithMessage("touch").WithMessage("readme.txt")
	assert.ErrorIs(t, err, errors.ErrExists)
	assert.Equal(t, "file exists: touch: readme.txt", err.Error())
}
