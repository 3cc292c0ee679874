package nexus

// resolvecontext.go resolves the context module: the user's file at
// server/context.go when present, otherwise a default scaffold synthesized
// into the cache directory. The scaffold wires up the generated ORM client
// for the project's module path.

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/mod/modfile"

	"github.com/SpaceK33z/nexus/internal/probe"
)

const (
	cacheDirName    = ".nexus"
	contextFileName = "context.go"
	ormClientPkg    = "ent"
)

// contextScaffold is the synthesized default context module. It instantiates
// the generated ORM client once and registers a factory exposing it on every
// request context.
const contextScaffold = `// Code generated by nexus. DO NOT EDIT.

// Default context module. Create server/context.go in your project to
// replace it.
package server

import (
	"context"
	"net/http"

	%q

	"github.com/SpaceK33z/nexus"
)

var client = ent.NewClient()

func init() {
	nexus.RegisterContextFunc(NewContext)
}

// NewContext builds the per-request context handed to resolvers. Retrieve
// the client with nexus.Client(ctx).
func NewContext(r *http.Request) context.Context {
	return nexus.WithClient(r.Context(), client)
}
`

// resolveContext picks exactly one context module path per New call. The
// scaffold is rewritten unconditionally whenever the user has none.
func (a *App) resolveContext() error {
	userPath := filepath.Join(a.dir, serverDirName, contextFileName)
	kind, err := probe.Classify(userPath)
	if err != nil {
		return err
	}

	switch kind {
	case probe.File:
		a.contextModule = userPath
		a.logger.Debug("using user context module", "path", userPath)
		return nil
	case probe.Dir:
		return fmt.Errorf("nexus: context path %s is a directory, expected a file", userPath)
	}

	cacheDir := filepath.Join(a.dir, cacheDirName)
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return err
	}

	out := filepath.Join(cacheDir, contextFileName)
	src := fmt.Sprintf(contextScaffold, ormClientPath(a.dir))
	if err := os.WriteFile(out, []byte(src), 0o644); err != nil {
		return err
	}

	a.contextModule = out
	a.contextSynthesized = true
	a.logger.Debug("synthesized default context module", "path", out)
	return nil
}

// ormClientPath derives the generated ORM client import path from the
// project's go.mod, falling back to the directory name when there is none.
func ormClientPath(dir string) string {
	mod := "app"
	if abs, err := filepath.Abs(dir); err == nil {
		mod = filepath.Base(abs)
	}
	if data, err := os.ReadFile(filepath.Join(dir, "go.mod")); err == nil {
		if p := modfile.ModulePath(data); p != "" {
			mod = p
		}
	}
	return mod + "/" + ormClientPkg
}
