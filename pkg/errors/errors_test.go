package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errSentinel = New(4103, Uniqueness, "duplicate value")

func TestWithDoesNotMutateSentinel(t *testing.T) {
	e := errSentinel.WithMessage("B duplicates A").WithKey("B").WithSource("b").AsWarning()

	assert.Equal(t, "duplicate value", errSentinel.Message)
	assert.Empty(t, errSentinel.Key)
	assert.False(t, errSentinel.IsWarning())

	assert.Equal(t, "B duplicates A", e.Error())
	assert.Equal(t, "B", e.Key)
	assert.Equal(t, "b", e.Source)
	assert.True(t, e.IsWarning())
}

func TestIsComparesCode(t *testing.T) {
	e := errSentinel.WithMessage("other text")
	assert.True(t, Is(e, errSentinel))
	assert.False(t, Is(e, New(4104, Uniqueness, "duplicate value")))

	wrapped := fmt.Errorf("load: %w", e)
	assert.ErrorIs(t, wrapped, errSentinel)
}

func TestUnwrapCause(t *testing.T) {
	cause := stderrors.New("disk full")
	e := New(5001, Config, "read failed").WithError(cause)

	assert.ErrorIs(t, e, cause)
	assert.Equal(t, cause, stderrors.Unwrap(e))
}

type pathError struct{ path string }

func (p *pathError) Error() string { return p.path }

func TestAs(t *testing.T) {
	e := New(5001, Config, "read failed").WithError(&pathError{path: "a.yaml"})

	var pe *pathError
	require.True(t, As(e, &pe))
	assert.Equal(t, "a.yaml", pe.path)

	var target *Error
	require.True(t, As(fmt.Errorf("wrap: %w", e), &target))
	assert.Equal(t, 5001, target.Code)
}

func TestList(t *testing.T) {
	var l List
	assert.NoError(t, l.Err())
	assert.False(t, l.HasErrors())

	warn := New(4208, Reference, "unused").AsWarning()
	l.Add(warn, nil)
	assert.NoError(t, l.Err())
	assert.Len(t, l, 1)

	l.Extend(List{errSentinel.WithKey("B")})
	require.True(t, l.HasErrors())
	assert.Len(t, l.Errors(), 1)
	assert.Len(t, l.Warnings(), 1)

	err := l.Err()
	require.Error(t, err)
	assert.Equal(t, "warning: unused\nerror: duplicate value", err.Error())
	assert.ErrorIs(t, err, errSentinel)
	assert.ErrorIs(t, err, warn)

	wrapped := New(6003, Structural, "failed").WithError(err)
	assert.ErrorIs(t, wrapped, errSentinel)
}
