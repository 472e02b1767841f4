package cmd

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadPassword(t *testing.T) {
	pw, err := readPassword(strings.NewReader("s3cret pass\r\nignored\n"))
	require.NoError(t, err)
	assert.Equal(t, "s3cret pass", pw)

	pw, err = readPassword(strings.NewReader("no-newline"))
	require.NoError(t, err)
	assert.Equal(t, "no-newline", pw)
}

func TestCommandTree(t *testing.T) {
	for _, path := range [][]string{
		{"migrate", "up"},
		{"migrate", "status"},
		{"seed"},
		{"users", "create"},
	} {
		c, _, err := rootCmd.Find(path)
		require.NoError(t, err, path)
		assert.Equal(t, path[len(path)-1], c.Name())
	}
}
