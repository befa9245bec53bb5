package main

import (
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var (
	sqlKeywordPattern = regexp.MustCompile(`(?i)\b(select|insert|update|delete|with)\b`)
	uuidMarkerPattern = regexp.MustCompile(`^--sql [0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)
)

type violation struct {
	file    string
	name    string
	line    int
	message string
}

type markerUse struct {
	file string
	name string
	line int
}

type linter struct {
	found   []violation
	markers map[string][]markerUse
}

func newLinter() *linter {
	return &linter{markers: make(map[string][]markerUse)}
}

func (l *linter) lintFile(path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return l.lintSource(path, string(src))
}

func (l *linter) lintSource(path, src string) error {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, path, src, 0)
	if err != nil {
		return err
	}
	l.lintAST(fset, path, file)
	return nil
}

func (l *linter) lintAST(fset *token.FileSet, path string, file *ast.File) {
	consts := stringConsts(file)
	for _, decl := range file.Decls {
		gen, ok := decl.(*ast.GenDecl)
		if !ok || gen.Tok != token.CONST {
			continue
		}
		for _, spec := range gen.Specs {
			vs := spec.(*ast.ValueSpec)
			for i, name := range vs.Names {
				if i >= len(vs.Values) || !isQueryName(name.Name) {
					continue
				}
				line := fset.Position(name.Pos()).Line
				raw, ok := fold(vs.Values[i], consts, 0)
				if !ok {
					l.add(path, name.Name, line, "query is not a constant string")
					continue
				}
				if !sqlKeywordPattern.MatchString(raw) {
					l.add(path, name.Name, line, "query constant contains no SQL statement")
					continue
				}
				marker := firstLine(raw)
				if !uuidMarkerPattern.MatchString(marker) {
					l.add(path, name.Name, line, "missing or invalid --sql <uuid> marker")
					continue
				}
				l.markers[marker] = append(l.markers[marker], markerUse{file: path, name: name.Name, line: line})
			}
		}
	}
}

func (l *linter) add(file, name string, line int, message string) {
	l.found = append(l.found, violation{file: file, name: name, line: line, message: message})
}

// violations returns every problem found so far, including markers shared
// by more than one query.
func (l *linter) violations() []violation {
	out := append([]violation(nil), l.found...)
	keys := make([]string, 0, len(l.markers))
	for k := range l.markers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, marker := range keys {
		uses := l.markers[marker]
		if len(uses) < 2 {
			continue
		}
		for _, u := range uses[1:] {
			out = append(out, violation{
				file:    u.file,
				name:    u.name,
				line:    u.line,
				message: "duplicate marker also used by " + uses[0].name,
			})
		}
	}
	return out
}

func isQueryName(name string) bool {
	return len(name) > 1 && name[0] == 'Q' && name[1] >= 'A' && name[1] <= 'Z'
}

// stringConsts collects the file's constant string declarations so query
// fragments joined with + can be resolved.
func stringConsts(file *ast.File) map[string]ast.Expr {
	out := make(map[string]ast.Expr)
	for _, decl := range file.Decls {
		gen, ok := decl.(*ast.GenDecl)
		if !ok || gen.Tok != token.CONST {
			continue
		}
		for _, spec := range gen.Specs {
			vs := spec.(*ast.ValueSpec)
			for i, name := range vs.Names {
				if i < len(vs.Values) {
					out[name.Name] = vs.Values[i]
				}
			}
		}
	}
	return out
}

func fold(expr ast.Expr, consts map[string]ast.Expr, depth int) (string, bool) {
	if depth > 16 {
		return "", false
	}
	switch e := expr.(type) {
	case *ast.BasicLit:
		if e.Kind != token.STRING {
			return "", false
		}
		s, err := unquote(e.Value)
		return s, err == nil
	case *ast.ParenExpr:
		return fold(e.X, consts, depth+1)
	case *ast.Ident:
		v, ok := consts[e.Name]
		if !ok {
			return "", false
		}
		return fold(v, consts, depth+1)
	case *ast.BinaryExpr:
		if e.Op != token.ADD {
			return "", false
		}
		left, ok := fold(e.X, consts, depth+1)
		if !ok {
			return "", false
		}
		right, ok := fold(e.Y, consts, depth+1)
		if !ok {
			return "", false
		}
		return left + right, true
	}
	return "", false
}

func firstLine(s string) string {
	s = strings.TrimLeft(s, "\n\r \t")
	if idx := strings.IndexAny(s, "\n\r"); idx >= 0 {
		return strings.TrimSpace(s[:idx])
	}
	return strings.TrimSpace(s)
}

func unquote(v string) (string, error) {
	if len(v) == 0 {
		return v, nil
	}
	if v[0] == '`' {
		return v[1 : len(v)-1], nil
	}
	return strconv.Unquote(v)
}
