package datasource

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadOptions(t *testing.T) {
	opts := NewLoadOptions(
		WithMaxItems(2),
		WithRecursive(true),
		WithFilter(func(metadata map[string]interface{}) bool {
			return metadata["keep"] == true
		}),
	)

	require.True(t, opts.Recursive)
	require.False(t, opts.Full(1))
	require.True(t, opts.Full(2))
	require.True(t, opts.Keep(map[string]interface{}{"keep": true}))
	require.False(t, opts.Keep(map[string]interface{}{"keep": false}))
}

func TestLoadOptionsDefaults(t *testing.T) {
	opts := NewLoadOptions()
	require.False(t, opts.Full(1000))
	require.True(t, opts.Keep(nil))
}

func TestHasCode(t *testing.T) {
	cause := errors.New("boom")
	err := NewError("json", "Load", ErrCodeParse, "malformed JSON on line 3", cause)

	wrapped := fmt.Errorf("sync: %w", err)
	require.True(t, HasCode(wrapped, ErrCodeParse))
	require.False(t, HasCode(wrapped, ErrCodeFileAccess))
	require.False(t, HasCode(cause, ErrCodeParse))
	require.ErrorIs(t, wrapped, cause)
	require.Equal(t, "datasource.Load [json]: malformed JSON on line 3: boom", err.Error())
}
