package nexus

// typegen.go emits the build artifacts describing the schema: the merged
// SDL and a small package of type-name constants for use from user code.

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/iancoleman/strcase"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/formatter"
)

const (
	generatedDirName   = "generated"
	schemaArtifactName = "schema.graphql"
	typesArtifactName  = "types.gen.go"
	typesPackageName   = "nexustypes"
)

func generatedDir(dir string) string {
	return filepath.Join(dir, cacheDirName, generatedDirName)
}

// GenerateArtifacts writes the generated schema SDL and type-definition
// files into the cache directory. The schema sources must parse; resolver
// coverage is not required.
func (a *App) GenerateArtifacts() error {
	astSchema, err := a.builder.AST()
	if err != nil {
		return err
	}

	outDir := generatedDir(a.dir)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}

	var sdl bytes.Buffer
	formatter.NewFormatter(&sdl).FormatSchema(astSchema)
	if err := os.WriteFile(filepath.Join(outDir, schemaArtifactName), sdl.Bytes(), 0o644); err != nil {
		return err
	}

	types := typesSource(typeNames(astSchema))
	if err := os.WriteFile(filepath.Join(outDir, typesArtifactName), []byte(types), 0o644); err != nil {
		return err
	}

	a.logger.Debug("generated artifacts", "dir", outDir)
	return nil
}

// typeNames lists the schema's own named types, skipping prelude built-ins.
func typeNames(astSchema *ast.Schema) []string {
	builtin := map[string]bool{"Int": true, "Float": true, "String": true, "Boolean": true, "ID": true}
	var names []string
	for name := range astSchema.Types {
		if strings.HasPrefix(name, "__") || builtin[name] {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// typesSource renders the generated type-definition package.
func typesSource(names []string) string {
	var b strings.Builder
	b.WriteString("// Code generated by nexus. DO NOT EDIT.\n\n")
	fmt.Fprintf(&b, "// Package %s names the types of the generated GraphQL schema.\n", typesPackageName)
	fmt.Fprintf(&b, "package %s\n\n", typesPackageName)
	if len(names) == 0 {
		return b.String()
	}
	b.WriteString("const (\n")
	for _, name := range names {
		fmt.Fprintf(&b, "\t%sType = %q\n", strcase.ToCamel(name), name)
	}
	b.WriteString(")\n")
	return b.String()
}
