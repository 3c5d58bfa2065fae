package main

import (
	"fmt"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const modulePath = "classconsensus"

type violation struct {
	File   string
	Line   int
	Import string
	Rule   string
}

// layerRule lists what a service layer may import besides the standard
// library. Prefixes are relative to the owning service.
type layerRule struct {
	local    []string
	external []string
}

var layerRules = map[string]layerRule{
	"domain": {
		local:    []string{"/domain"},
		external: []string{"golang.org/x/crypto/"},
	},
	"application": {
		local: []string{"/application", "/domain", "/ports"},
	},
	"ports": {
		local: []string{"/domain"},
	},
}

func main() {
	root := "contexts"
	if len(os.Args) > 1 {
		root = os.Args[1]
	}
	violations := collectViolations(root)
	if len(violations) == 0 {
		fmt.Println("boundary checks passed")
		return
	}

	fmt.Println("boundary violations found:")
	for _, v := range violations {
		fmt.Printf("- %s:%d imports %q (%s)\n", v.File, v.Line, v.Import, v.Rule)
	}
	os.Exit(1)
}

// collectViolations walks root (a contexts/ directory) and checks every
// non-test file against the layer rules of its service.
func collectViolations(root string) []violation {
	var violations []violation

	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		parts := strings.Split(filepath.ToSlash(rel), "/")
		if len(parts) < 3 {
			return nil
		}
		servicePrefix := fmt.Sprintf("%s/contexts/%s/%s", modulePath, parts[0], parts[1])
		violations = append(violations, validateFile(path, filepath.ToSlash(path), parts[2], servicePrefix)...)
		return nil
	})

	sort.Slice(violations, func(i, j int) bool {
		if violations[i].File != violations[j].File {
			return violations[i].File < violations[j].File
		}
		if violations[i].Line != violations[j].Line {
			return violations[i].Line < violations[j].Line
		}
		return violations[i].Import < violations[j].Import
	})
	return violations
}

func validateFile(path string, displayPath string, layer string, servicePrefix string) []violation {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
	if err != nil {
		return []violation{{File: displayPath, Line: 1, Rule: "file must parse"}}
	}

	var violations []violation
	for _, imp := range file.Imports {
		importPath := strings.Trim(imp.Path.Value, "\"")
		line := fset.Position(imp.Pos()).Line
		add := func(rule string) {
			violations = append(violations, violation{File: displayPath, Line: line, Import: importPath, Rule: rule})
		}

		if strings.HasPrefix(importPath, modulePath+"/contexts/") && !hasPrefix(importPath, servicePrefix) {
			add("cross-module imports are forbidden")
		}
		if strings.HasPrefix(importPath, modulePath+"/internal/") && layer != "adapters" && layer != "transport" {
			add(layer + " must not import runtime infrastructure")
		}

		rule, ok := layerRules[layer]
		if !ok || isStdlib(importPath) {
			continue
		}
		allowed := make([]string, 0, len(rule.local))
		for _, local := range rule.local {
			allowed = append(allowed, servicePrefix+local)
		}
		if !isAllowed(importPath, allowed) && !hasAnyPrefix(importPath, rule.external) {
			add(layer + " import is outside explicit allowlist")
		}
	}
	return violations
}

func hasPrefix(path string, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

func hasAnyPrefix(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

func isAllowed(importPath string, allowedPrefixes []string) bool {
	for _, p := range allowedPrefixes {
		if hasPrefix(importPath, p) {
			return true
		}
	}
	return false
}

func isStdlib(importPath string) bool {
	if strings.HasPrefix(importPath, modulePath+"/") {
		return false
	}
	first := importPath
	if idx := strings.Index(first, "/"); idx != -1 {
		first = first[:idx]
	}
	return !strings.Contains(first, ".")
}
