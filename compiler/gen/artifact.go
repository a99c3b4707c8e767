package gen

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/dave/jennifer/jen"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/formatter"
)

// Artifact is the result of one (table, kind) emission. Its text is only
// produced by Render, after every section was assembled.
type Artifact struct {
	Kind  Kind
	Table string
	// Path is set by the generator once the output location is resolved.
	Path string
	// Imports lists the generated artifacts this one refers to.
	Imports []Import
	body    body
}

type body interface {
	render(io.Writer) error
}

// Empty reports if there is nothing to write.
func (a *Artifact) Empty() bool { return a == nil || a.body == nil }

// Render returns the artifact text. Empty artifacts render to nil.
func (a *Artifact) Render() ([]byte, error) {
	if a.Empty() {
		return nil, nil
	}
	var buf bytes.Buffer
	if err := a.body.render(&buf); err != nil {
		return nil, fmt.Errorf("render %s of %s: %w", a.Kind, a.Table, err)
	}
	return buf.Bytes(), nil
}

// GoFile is a Go source artifact assembled in sections.
type GoFile struct {
	PkgPath string
	PkgName string
	Header  string
	// Aliases maps import paths to package names when the directory name
	// differs from the package name.
	Aliases map[string]string
	Types   []jen.Code
	Funcs   []jen.Code
}

// File builds the jennifer file of the sections.
func (g *GoFile) File() *jen.File {
	f := jen.NewFilePathName(g.PkgPath, g.PkgName)
	if g.Header != "" {
		f.HeaderComment(g.Header)
	}
	for p, name := range g.Aliases {
		f.ImportName(p, name)
	}
	decls := make([]jen.Code, 0, len(g.Types)+len(g.Funcs))
	decls = append(decls, g.Types...)
	decls = append(decls, g.Funcs...)
	for i, d := range decls {
		if i > 0 {
			f.Line()
		}
		f.Add(d)
	}
	return f
}

func (g *GoFile) render(w io.Writer) error {
	return g.File().Render(w)
}

// SchemaFile is a GraphQL schema artifact.
type SchemaFile struct {
	Header string
	Doc    *ast.SchemaDocument
}

func (s *SchemaFile) render(w io.Writer) error {
	if s.Header != "" {
		if _, err := fmt.Fprintf(w, "# %s\n\n", s.Header); err != nil {
			return err
		}
	}
	formatter.NewFormatter(w).FormatSchemaDocument(s.Doc)
	return nil
}

// oneLine collapses a comment to a single line.
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// doc renders comment lines above a declaration.
func doc(lines ...string) *jen.Statement {
	s := jen.Null()
	for _, l := range lines {
		if l = oneLine(l); l != "" {
			s.Comment(l).Line()
		}
	}
	return s
}
