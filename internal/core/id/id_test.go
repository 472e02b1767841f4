package id

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_IsTimeOrdered(t *testing.T) {
	a := New()
	b := New()

	assert.Equal(t, 7, int(a.Version()))
	assert.Less(t, a.String(), b.String())
}

func TestParseOptional(t *testing.T) {
	v, err := ParseOptional("")
	require.NoError(t, err)
	assert.Nil(t, v)

	src := New()
	v, err = ParseOptional(src.String())
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.Equal(t, src, *v)

	_, err = ParseOptional("not-a-uuid")
	assert.Error(t, err)
}

func TestIsNil(t *testing.T) {
	assert.True(t, IsNil(Nil()))
	assert.False(t, IsNil(New()))
}
