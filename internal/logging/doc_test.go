package logging

import (
	"go/ast"
	"go/parser"
	"go/token"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExportedAPIIsDocumented(t *testing.T) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "logging.go", nil, parser.ParseComments)
	require.NoError(t, err)

	var missing []string
	for _, decl := range file.Decls {
		fn, ok := decl.(*ast.FuncDecl)
		if !ok || !fn.Name.IsExported() {
			continue
		}
		if fn.Doc == nil || fn.Doc.Text() == "" {
			missing = append(missing, fn.Name.Name)
		}
	}
	require.Empty(t, missing, "exported functions without doc comments")
}
