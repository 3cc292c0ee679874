package nexus

// options.go holds the startServer option record and the environment-driven
// artifact flags. Options merge shallowly: any zero/nil field falls back to
// its default at merge time.

import (
	"fmt"
	"os"
)

// DefaultPort is the listen port used when ServerOptions.Port is unset.
const DefaultPort = 4000

// Environment variables controlling artifact generation. Both are tri-state:
// the literal strings "true" and "false" are honored, anything else falls
// back to the flag's default. Artifact generation defaults to on in
// development-like environments (GO_ENV unset, "development", or "dev").
const (
	EnvGenerateArtifacts = "NEXUS_SHOULD_GENERATE_ARTIFACTS"
	EnvExitAfterGenerate = "NEXUS_SHOULD_EXIT_AFTER_GENERATE_ARTIFACTS"
	EnvMode              = "GO_ENV"
)

// ServerOptions configures StartServer. The zero value means "all defaults".
type ServerOptions struct {
	// Port is the listen port. 0 means DefaultPort.
	Port int

	// StartMessage produces the startup banner from the bound port.
	StartMessage func(port int) string

	// Playground toggles the interactive explorer UI at /. nil means on.
	Playground *bool

	// Introspection toggles schema introspection. nil means on.
	Introspection *bool

	// ContextFunc overrides the context factory resolved at app creation.
	ContextFunc ContextFunc
}

// Bool returns a pointer to v, for filling the tri-state option fields.
func Bool(v bool) *bool { return &v }

func (o ServerOptions) withDefaults() ServerOptions {
	if o.Port == 0 {
		o.Port = DefaultPort
	}
	if o.StartMessage == nil {
		o.StartMessage = defaultStartMessage
	}
	if o.Playground == nil {
		o.Playground = Bool(true)
	}
	if o.Introspection == nil {
		o.Introspection = Bool(true)
	}
	return o
}

func defaultStartMessage(port int) string {
	return fmt.Sprintf("server listening at http://localhost:%d/graphql", port)
}

type artifactSettings struct {
	generate  bool
	exitAfter bool
}

func resolveArtifactSettings() artifactSettings {
	return artifactSettings{
		generate:  envFlag(EnvGenerateArtifacts, developmentLike()),
		exitAfter: envFlag(EnvExitAfterGenerate, false),
	}
}

// envFlag reads a tri-state boolean: only the exact literals "true" and
// "false" override the fallback.
func envFlag(name string, fallback bool) bool {
	switch os.Getenv(name) {
	case "true":
		return true
	case "false":
		return false
	default:
		return fallback
	}
}

// developmentLike reports whether the environment mode counts as
// development. An unset mode does, matching local-first defaults.
func developmentLike() bool {
	switch os.Getenv(EnvMode) {
	case "", "development", "dev":
		return true
	default:
		return false
	}
}
