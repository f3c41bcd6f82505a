package core

import (
	"errors"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
)

func TestErrorCodes(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "devatext.core")
	defer teardown()
	//
	assert.Equal(t, NOERROR, Code(nil))
	assert.Equal(t, EINTERNAL, Code(errors.New("plain")))
	err := Error(EINVALID, "shaping pass already running")
	assert.Equal(t, EINVALID, Code(err))
	assert.Equal(t, "shaping pass already running", UserMessage(err))
	assert.False(t, IsFallback(err))
}

func TestWrapError(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "devatext.core")
	defer teardown()
	//
	base := errors.New("no such file")
	err := WrapError(base, EMISSING, "font %q not found", "Mangal")
	assert.ErrorIs(t, err, base)
	assert.Equal(t, EMISSING, Code(err))
	assert.Contains(t, err.Error(), "Mangal")
	//
	fb := ErrorWithCode(nil, EFALLBACK)
	assert.True(t, IsFallback(fb))
	assert.Equal(t, "[124] shaping unavailable", fb.Error())
	assert.Equal(t, "shaping unavailable", UserMessage(fb))
}

func TestSentinels(t *testing.T) {
	err := WrapError(Error(EMISSING, "no font assigned"), EFALLBACK, "cannot shape")
	assert.ErrorIs(t, err, ErrFallback)
	assert.ErrorIs(t, err, ErrMissing)
	assert.NotErrorIs(t, err, ErrInvalid)
	assert.Equal(t, EFALLBACK, Code(err))
	assert.NotErrorIs(t, errors.New("plain"), ErrInternal)
	assert.Equal(t, "no font assigned", UserMessage(errors.Unwrap(err)))
}
