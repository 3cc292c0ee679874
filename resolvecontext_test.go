package nexus_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/SpaceK33z/nexus"
)

func TestUserContextModule(t *testing.T) {
	dir := t.TempDir()
	userPath := filepath.Join(dir, "server", "context.go")
	writeFile(t, userPath, "package server\n")

	app, err := nexus.New(nexus.WithDir(dir))
	require.NoError(t, err)

	path, synthesized := app.ContextModule()
	require.Equal(t, userPath, path)
	require.False(t, synthesized)

	_, err = os.Stat(filepath.Join(dir, ".nexus", "context.go"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestSynthesizedContextModule(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "go.mod"), "module example.com/myapp\n\ngo 1.24\n")

	app, err := nexus.New(nexus.WithDir(dir))
	require.NoError(t, err)

	path, synthesized := app.ContextModule()
	require.Equal(t, filepath.Join(dir, ".nexus", "context.go"), path)
	require.True(t, synthesized)

	contents, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(contents), "package server")
	require.Contains(t, string(contents), `"example.com/myapp/ent"`)
	require.Contains(t, string(contents), "nexus.RegisterContextFunc(NewContext)")
	require.Contains(t, string(contents), "ent.NewClient()")
}

func TestSynthesizedContextModuleWithoutGoMod(t *testing.T) {
	dir := t.TempDir()

	app, err := nexus.New(nexus.WithDir(dir))
	require.NoError(t, err)

	path, _ := app.ContextModule()
	contents, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(contents), `"`+filepath.Base(dir)+`/ent"`)
}

func TestScaffoldRewrittenEachAssembly(t *testing.T) {
	dir := t.TempDir()

	app, err := nexus.New(nexus.WithDir(dir))
	require.NoError(t, err)
	path, _ := app.ContextModule()

	writeFile(t, path, "// stale\n")

	_, err = nexus.New(nexus.WithDir(dir))
	require.NoError(t, err)

	contents, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(contents), "package server")
	require.NotContains(t, string(contents), "stale")
}

func TestContextPathIsDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "server", "context.go"), 0o755))

	_, err := nexus.New(nexus.WithDir(dir))
	require.Error(t, err)
	require.Contains(t, err.Error(), "expected a file")
}
