package nexus_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/SpaceK33z/nexus"
	"github.com/SpaceK33z/nexus/schemabuilder"
)

const querySDL = "type Query {\n  ok: Boolean\n}\n"

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
}

func sourceNames(sources []schemabuilder.Source) []string {
	names := make([]string, 0, len(sources))
	for _, s := range sources {
		names = append(names, s.Name)
	}
	return names
}

func TestLoadSchemaDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "schema", "post.graphql"), querySDL)
	writeFile(t, filepath.Join(dir, "schema", "user.graphql"), "extend type Query {\n  user: String\n}\n")
	writeFile(t, filepath.Join(dir, "schema", "admin", "audit.graphql"), "extend type Query {\n  audit: String\n}\n")
	writeFile(t, filepath.Join(dir, "schema", "README.md"), "not a schema")

	app, err := nexus.New(nexus.WithDir(dir))
	require.NoError(t, err)

	require.Equal(t, []string{
		"schema/admin/audit.graphql",
		"schema/post.graphql",
		"schema/user.graphql",
	}, sourceNames(app.Schema().Sources()))
}

func TestLoadRootSchemaFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "schema.graphql"), querySDL)

	app, err := nexus.New(nexus.WithDir(dir))
	require.NoError(t, err)

	require.Equal(t, []string{"schema.graphql"}, sourceNames(app.Schema().Sources()))
}

func TestLoadServerSchemaFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "server", "schema.graphql"), querySDL)

	app, err := nexus.New(nexus.WithDir(dir))
	require.NoError(t, err)

	require.Equal(t, []string{"server/schema.graphql"}, sourceNames(app.Schema().Sources()))
}

func TestRootSchemaFileWinsOverServer(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "schema.graphql"), querySDL)
	writeFile(t, filepath.Join(dir, "server", "schema.graphql"), "type Query {\n  other: Boolean\n}\n")

	app, err := nexus.New(nexus.WithDir(dir))
	require.NoError(t, err)

	require.Equal(t, []string{"schema.graphql"}, sourceNames(app.Schema().Sources()))
}

func TestSchemaDirectoryWinsOverFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "schema", "post.graphql"), querySDL)
	writeFile(t, filepath.Join(dir, "schema.graphql"), "type Query {\n  other: Boolean\n}\n")

	app, err := nexus.New(nexus.WithDir(dir))
	require.NoError(t, err)

	require.Equal(t, []string{"schema/post.graphql"}, sourceNames(app.Schema().Sources()))
}

func TestNoSchemaModules(t *testing.T) {
	app, err := nexus.New(nexus.WithDir(t.TempDir()))
	require.NoError(t, err)
	require.Empty(t, app.Schema().Sources())

	// Assembling the handler needs an executable schema; with nothing
	// registered the engine's missing-query error surfaces here.
	_, err = app.Handler(nexus.ServerOptions{})
	require.Error(t, err)
}

func TestSchemaPathIsFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "schema"), querySDL)

	_, err := nexus.New(nexus.WithDir(dir))
	require.Error(t, err)
	require.Contains(t, err.Error(), "expected a directory")
}

func TestRegisteredModulesRunPerApp(t *testing.T) {
	t.Cleanup(nexus.ResetManifest)

	var order []string
	nexus.RegisterModule("first", func(s *schemabuilder.Schema) error {
		order = append(order, "first")
		return nil
	})
	nexus.RegisterModule("second", func(s *schemabuilder.Schema) error {
		order = append(order, "second")
		return nil
	})

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "schema.graphql"), querySDL)

	_, err := nexus.New(nexus.WithDir(dir))
	require.NoError(t, err)
	require.Equal(t, []string{"first", "second"}, order)

	// The manifest is drained per New call, so a second app sees the same
	// modules again.
	_, err = nexus.New(nexus.WithDir(dir))
	require.NoError(t, err)
	require.Equal(t, []string{"first", "second", "first", "second"}, order)

	// Once reset, nothing carries over into later assemblies.
	nexus.ResetManifest()
	_, err = nexus.New(nexus.WithDir(dir))
	require.NoError(t, err)
	require.Equal(t, []string{"first", "second", "first", "second"}, order)
}

func TestModuleErrorNamesModule(t *testing.T) {
	t.Cleanup(nexus.ResetManifest)

	nexus.RegisterModule("flaky", func(s *schemabuilder.Schema) error {
		return errors.New("boom")
	})

	_, err := nexus.New(nexus.WithDir(t.TempDir()))
	require.Error(t, err)
	require.Contains(t, err.Error(), `schema module "flaky"`)
	require.Contains(t, err.Error(), "boom")
}
