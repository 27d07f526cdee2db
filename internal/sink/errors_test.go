package sink

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewError(t *testing.T) {
	req := require.New(t)

	t.Run("test error wrapping", func(t *testing.T) {
		err := NewError(ErrMissingField, "test error")
		req.NotNil(err)
		req.Implements((*error)(nil), err)

		req.True(errors.Is(err, ErrMissingField))
	})

	t.Run("test error wrapping with context", func(t *testing.T) {
		err := NewError(ErrConfigMissing, "test error: %s", "context")
		req.NotNil(err)
		req.Implements((*error)(nil), err)

		req.True(errors.Is(err, ErrConfigMissing))
		req.Equal("missing configuration: test error: context", err.Error())
	})

	t.Run("no context", func(t *testing.T) {
		err := &Error{err: ErrEncoding}
		req.Equal("encoding mismatch", err.Error())
	})
}
