package input

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Run("dash is stdin", func(t *testing.T) {
		in := Parse("-")
		assert.True(t, in.Stdin)
		assert.Equal(t, "<stdin>", in.String())
	})

	t.Run("anything else is a path", func(t *testing.T) {
		in := Parse("programs/add.hvm")
		assert.False(t, in.Stdin)
		assert.Equal(t, "programs/add.hvm", in.Path)
		assert.Equal(t, "programs/add.hvm", in.String())
	})
}

func TestReadString_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "add.hvm")
	require.NoError(t, os.WriteFile(path, []byte("(Id x) = x\n"), 0600))

	text, err := Parse(path).ReadString()
	require.NoError(t, err)
	assert.Equal(t, "(Id x) = x\n", text)
}

func TestReadString_MissingFileNamesPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.hvm")

	_, err := Parse(path).ReadString()
	require.Error(t, err)
	assert.Contains(t, err.Error(), path)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestReadString_Stdin(t *testing.T) {
	text, err := FromReader(strings.NewReader("(Id x) = x")).ReadString()
	require.NoError(t, err)
	assert.Equal(t, "(Id x) = x", text)
}

func TestReadString_StdinFailure(t *testing.T) {
	boom := errors.New("boom")

	_, err := FromReader(iotest.ErrReader(boom)).ReadString()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stdin")
	assert.ErrorIs(t, err, boom)
}
