package nexus

// loader.go discovers schema modules at the conventional paths and registers
// them on the app's schema builder: every matching file under schema/, else
// a single schema.graphql at the project root, else one under server/.

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/SpaceK33z/nexus/internal/probe"
	"github.com/SpaceK33z/nexus/schemabuilder"
)

const (
	schemaDirName  = "schema"
	schemaFileName = "schema.graphql"
	serverDirName  = "server"
	schemaExt      = ".graphql"
)

// loadSchemaModules populates the builder. Disk-discovered SDL sources are
// registered first in walk order, then the code-first module manifest runs
// in registration order. Absent conventions are skipped silently.
func (a *App) loadSchemaModules(builder *schemabuilder.Schema) error {
	if err := a.loadSchemaFiles(builder); err != nil {
		return err
	}

	modules, _ := manifest()
	for _, m := range modules {
		if err := m.Register(builder); err != nil {
			return fmt.Errorf("nexus: schema module %q: %w", m.Name, err)
		}
		a.logger.Debug("registered schema module", "module", m.Name)
	}
	return nil
}

func (a *App) loadSchemaFiles(builder *schemabuilder.Schema) error {
	dir := filepath.Join(a.dir, schemaDirName)
	kind, err := probe.Classify(dir)
	if err != nil {
		return err
	}

	switch kind {
	case probe.Dir:
		files, err := findSchemaFiles(dir)
		if err != nil {
			return err
		}
		for _, path := range files {
			if err := a.addSchemaFile(builder, path); err != nil {
				return err
			}
		}
		a.logger.Debug("loaded schema directory", "dir", dir, "files", len(files))
		return nil
	case probe.File:
		return fmt.Errorf("nexus: schema path %s is a file, expected a directory", dir)
	}

	for _, path := range []string{
		filepath.Join(a.dir, schemaFileName),
		filepath.Join(a.dir, serverDirName, schemaFileName),
	} {
		kind, err := probe.Classify(path)
		if err != nil {
			return err
		}
		if kind == probe.File {
			return a.addSchemaFile(builder, path)
		}
	}

	a.logger.Debug("no schema modules found", "dir", a.dir)
	return nil
}

func (a *App) addSchemaFile(builder *schemabuilder.Schema, path string) error {
	contents, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	name, err := filepath.Rel(a.dir, path)
	if err != nil {
		name = path
	}
	builder.AddSource(filepath.ToSlash(name), string(contents))
	a.logger.Debug("loaded schema file", "file", path)
	return nil
}

// findSchemaFiles recursively collects *.graphql files under root in the
// walk's lexical order.
func findSchemaFiles(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), schemaExt) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}
