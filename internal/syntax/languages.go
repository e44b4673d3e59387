package syntax

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/rust"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// ErrUnknownLanguage is returned when no bundled grammar matches a name or path.
var ErrUnknownLanguage = errors.New("unknown language")

var languages = map[string]func() *sitter.Language{
	"go":         golang.GetLanguage,
	"javascript": javascript.GetLanguage,
	"python":     python.GetLanguage,
	"rust":       rust.GetLanguage,
	"typescript": typescript.GetLanguage,
}

var extensions = map[string]string{
	".go":  "go",
	".js":  "javascript",
	".mjs": "javascript",
	".cjs": "javascript",
	".jsx": "javascript",
	".py":  "python",
	".pyi": "python",
	".rs":  "rust",
	".ts":  "typescript",
	".mts": "typescript",
}

// Languages lists the bundled grammar names in sorted order.
func Languages() []string {
	names := make([]string, 0, len(languages))
	for name := range languages {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Extensions returns the file extensions mapped to the named grammar, sorted.
func Extensions(language string) []string {
	var exts []string
	for ext, name := range extensions {
		if name == language {
			exts = append(exts, ext)
		}
	}
	sort.Strings(exts)
	return exts
}

// Language returns the grammar registered under name.
func Language(name string) (*sitter.Language, error) {
	get, ok := languages[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w %q (available: %s)", ErrUnknownLanguage, name, strings.Join(Languages(), ", "))
	}
	return get(), nil
}

// DetectLanguage picks a grammar name from the file extension of path.
// overrides maps extensions (with leading dot) to grammar names and wins over
// the built-in table.
func DetectLanguage(path string, overrides map[string]string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if name, ok := overrides[ext]; ok {
		name = strings.ToLower(name)
		if _, known := languages[name]; !known {
			return "", fmt.Errorf("%w %q configured for %s", ErrUnknownLanguage, name, ext)
		}
		return name, nil
	}
	if name, ok := extensions[ext]; ok {
		return name, nil
	}
	return "", fmt.Errorf("%w for %s", ErrUnknownLanguage, filepath.Base(path))
}
