package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrap(t *testing.T) {
	t.Run("nil stays nil", func(t *testing.T) {
		assert.NoError(t, Wrap(nil, "context"))
		assert.NoError(t, Wrapf(nil, "context %d", 1))
		assert.NoError(t, Mark(nil, ErrPackaging))
	})

	t.Run("keeps the chain", func(t *testing.T) {
		err := Wrapf(ErrTrackerCommunication, "create issue %s", "X-1")
		assert.True(t, Is(err, ErrTrackerCommunication))
		assert.Equal(t, "create issue X-1: tracker communication failed", err.Error())
	})
}

func TestMark(t *testing.T) {
	base := fmt.Errorf("dial tcp: timeout")

	err := Mark(base, ErrTrackerCommunication)
	assert.True(t, Is(err, ErrTrackerCommunication))
	assert.ErrorIs(t, err, base)
	assert.Equal(t, "tracker communication failed: dial tcp: timeout", err.Error())

	// marking twice does not repeat the sentinel
	assert.Equal(t, err, Mark(err, ErrTrackerCommunication))
}
