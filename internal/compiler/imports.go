package compiler

import (
	"bytes"
	"fmt"
	"go/format"
	"go/parser"
	"go/token"
	"strconv"
	"strings"

	"golang.org/x/tools/go/ast/astutil"
)

// userImport is an import declared at the top of the code section.
type userImport struct {
	Name string
	Path string
}

// splitImports separates leading import declarations, single or grouped,
// from the rest of the code section.
func splitImports(lines []string) ([]userImport, []string, error) {
	var imports []userImport
	comment := -1 // first line of a comment run not yet attached
	i := 0
	for i < len(lines) {
		line := strings.TrimSpace(lines[i])
		if strings.HasPrefix(line, "//") {
			if comment < 0 {
				comment = i
			}
			i++
			continue
		}
		if line != "" && !strings.HasPrefix(line, "import ") {
			if comment >= 0 {
				return imports, lines[comment:], nil
			}
			return imports, lines[i:], nil
		}
		if line != "" {
			comment = -1
		}

		switch {
		case line == "":
			i++
		case line == "import (":
			i++
			for ; i < len(lines) && strings.TrimSpace(lines[i]) != ")"; i++ {
				spec := strings.TrimSpace(lines[i])
				if spec == "" || strings.HasPrefix(spec, "//") {
					continue
				}
				imp, err := parseImportSpec(spec)
				if err != nil {
					return nil, nil, err
				}
				imports = append(imports, imp)
			}
			if i == len(lines) {
				return nil, nil, fmt.Errorf("unterminated import block")
			}
			i++
		case strings.HasPrefix(line, "import "):
			imp, err := parseImportSpec(strings.TrimSpace(strings.TrimPrefix(line, "import")))
			if err != nil {
				return nil, nil, err
			}
			imports = append(imports, imp)
			i++
		}
	}
	if comment >= 0 {
		return imports, lines[comment:], nil
	}
	return imports, nil, nil
}

func parseImportSpec(spec string) (userImport, error) {
	name, quoted, found := strings.Cut(spec, " ")
	if !found {
		name, quoted = "", spec
	}
	path, err := strconv.Unquote(strings.TrimSpace(quoted))
	if err != nil {
		return userImport{}, fmt.Errorf("bad import %q: %w", spec, err)
	}
	return userImport{Name: name, Path: path}, nil
}

// formatSource adds imports to rendered source and gofmts the result.
func formatSource(src []byte, imports []userImport) ([]byte, error) {
	if len(imports) == 0 {
		return format.Source(src)
	}

	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "", src, parser.ParseComments)
	if err != nil {
		return nil, err
	}
	for _, imp := range imports {
		astutil.AddNamedImport(fset, file, imp.Name, imp.Path)
	}

	var buf bytes.Buffer
	if err := format.Node(&buf, fset, file); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
