package probe

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassifyAbsent(t *testing.T) {
	kind, err := Classify(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	require.Equal(t, Absent, kind)
}

func TestClassifyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.graphql")
	require.NoError(t, os.WriteFile(path, []byte("type Query { ok: Boolean }"), 0o644))

	kind, err := Classify(path)
	require.NoError(t, err)
	require.Equal(t, File, kind)
}

func TestClassifyDir(t *testing.T) {
	kind, err := Classify(t.TempDir())
	require.NoError(t, err)
	require.Equal(t, Dir, kind)
}

func TestKindString(t *testing.T) {
	require.Equal(t, "absent", Absent.String())
	require.Equal(t, "file", File.String())
	require.Equal(t, "directory", Dir.String())
}
