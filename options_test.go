package nexus

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestServerOptionsDefaults(t *testing.T) {
	o := ServerOptions{}.withDefaults()

	require.Equal(t, DefaultPort, o.Port)
	require.NotNil(t, o.Playground)
	require.True(t, *o.Playground)
	require.NotNil(t, o.Introspection)
	require.True(t, *o.Introspection)
	require.Equal(t, "server listening at http://localhost:4000/graphql", o.StartMessage(o.Port))
}

func TestServerOptionsKeepExplicitValues(t *testing.T) {
	o := ServerOptions{
		Port:          5000,
		Playground:    Bool(false),
		Introspection: Bool(false),
		StartMessage:  func(port int) string { return "custom" },
	}.withDefaults()

	require.Equal(t, 5000, o.Port)
	require.False(t, *o.Playground)
	require.False(t, *o.Introspection)
	require.Equal(t, "custom", o.StartMessage(o.Port))
}

func TestDefaultStartMessageUsesPort(t *testing.T) {
	o := ServerOptions{Port: 5000}.withDefaults()
	require.Equal(t, "server listening at http://localhost:5000/graphql", o.StartMessage(o.Port))
}

func TestEnvFlag(t *testing.T) {
	cases := []struct {
		value    string
		fallback bool
		want     bool
	}{
		{"true", false, true},
		{"false", true, false},
		{"", true, true},
		{"", false, false},
		{"1", false, false},
		{"TRUE", false, false},
		{"yes", true, true},
	}
	for _, c := range cases {
		t.Setenv("NEXUS_TEST_FLAG", c.value)
		require.Equal(t, c.want, envFlag("NEXUS_TEST_FLAG", c.fallback), "value=%q fallback=%v", c.value, c.fallback)
	}
}

func TestDevelopmentLike(t *testing.T) {
	for _, mode := range []string{"", "development", "dev"} {
		t.Setenv(EnvMode, mode)
		require.True(t, developmentLike(), "mode=%q", mode)
	}
	for _, mode := range []string{"production", "staging", "test"} {
		t.Setenv(EnvMode, mode)
		require.False(t, developmentLike(), "mode=%q", mode)
	}
}

func TestResolveArtifactSettings(t *testing.T) {
	t.Setenv(EnvGenerateArtifacts, "")
	t.Setenv(EnvExitAfterGenerate, "")

	t.Setenv(EnvMode, "development")
	s := resolveArtifactSettings()
	require.True(t, s.generate)
	require.False(t, s.exitAfter)

	t.Setenv(EnvMode, "production")
	s = resolveArtifactSettings()
	require.False(t, s.generate)

	// Explicit flags beat the mode-derived default.
	t.Setenv(EnvGenerateArtifacts, "true")
	s = resolveArtifactSettings()
	require.True(t, s.generate)

	t.Setenv(EnvMode, "development")
	t.Setenv(EnvGenerateArtifacts, "false")
	s = resolveArtifactSettings()
	require.False(t, s.generate)

	t.Setenv(EnvExitAfterGenerate, "true")
	s = resolveArtifactSettings()
	require.True(t, s.exitAfter)
}
