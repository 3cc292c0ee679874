package nexus_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/SpaceK33z/nexus"
)

func TestGenerateArtifacts(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "schema", "post.graphql"), `
type Post {
  id: ID!
  title: String!
}

type Query {
  posts: [Post!]!
}
`)

	app, err := nexus.New(nexus.WithDir(dir))
	require.NoError(t, err)
	require.NoError(t, app.GenerateArtifacts())

	sdl, err := os.ReadFile(filepath.Join(dir, ".nexus", "generated", "schema.graphql"))
	require.NoError(t, err)
	require.Contains(t, string(sdl), "type Post")
	require.Contains(t, string(sdl), "type Query")

	types, err := os.ReadFile(filepath.Join(dir, ".nexus", "generated", "types.gen.go"))
	require.NoError(t, err)
	require.Contains(t, string(types), "package nexustypes")
	require.Contains(t, string(types), `PostType = "Post"`)
	require.Contains(t, string(types), `QueryType = "Query"`)
	require.NotContains(t, string(types), `StringType`)
}

func TestGenerateArtifactsRejectsInvalidSchema(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "schema", "broken.graphql"), "type Query {\n  post: Missing\n}\n")

	app, err := nexus.New(nexus.WithDir(dir))
	require.NoError(t, err)
	require.Error(t, app.GenerateArtifacts())
}
