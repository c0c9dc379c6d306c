package scenario

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// referenceCatalog is the built-in five-scenario curriculum.
//
//go:embed catalog.yaml
var referenceCatalog []byte

// ReferenceYAML returns the raw built-in catalog, uninterpolated.
func ReferenceYAML() []byte {
	out := make([]byte, len(referenceCatalog))
	copy(out, referenceCatalog)
	return out
}

// LoadDefault parses the built-in catalog with today's date.
func LoadDefault() (*Catalog, error) {
	return ParseCatalog(referenceCatalog, nil)
}

// LoadCatalog reads a YAML catalog file. An empty path loads the built-in
// catalog.
func LoadCatalog(path string, vars map[string]string) (*Catalog, error) {
	if path == "" {
		return ParseCatalog(referenceCatalog, vars)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return ParseCatalog(data, vars)
}

// ParseCatalog interpolates template variables like {{date}}, parses the YAML
// and validates the result. vars override the built-in variables.
func ParseCatalog(data []byte, vars map[string]string) (*Catalog, error) {
	doc, err := parseDocument(data, vars)
	if err != nil {
		return nil, err
	}
	if vr := validateDocument(doc); !vr.Valid() {
		return nil, fmt.Errorf("invalid catalog: %s", vr.Error())
	}
	return NewCatalog(doc.Scenarios), nil
}

func parseDocument(data []byte, vars map[string]string) (document, error) {
	interpolated := interpolateVars(string(data), buildVarMap(vars))

	var doc document
	if err := yaml.Unmarshal([]byte(interpolated), &doc); err != nil {
		return document{}, fmt.Errorf("parse catalog: %w", err)
	}
	return doc, nil
}

// buildVarMap returns the built-in date variables in US layout merged with
// the overrides.
func buildVarMap(overrides map[string]string) map[string]string {
	now := time.Now()
	vars := map[string]string{
		"date":  now.Format("01/02/2006"),
		"year":  now.Format("2006"),
		"month": now.Format("01"),
		"day":   now.Format("02"),
	}
	for k, v := range overrides {
		vars[k] = v
	}
	return vars
}

// templatePattern matches {{var_name}} patterns.
var templatePattern = regexp.MustCompile(`\{\{([A-Za-z_][A-Za-z0-9_]*)\}\}`)

// interpolateVars replaces {{var_name}} with values from vars. Unknown
// variables are left as written.
func interpolateVars(s string, vars map[string]string) string {
	return templatePattern.ReplaceAllStringFunc(s, func(match string) string {
		name := strings.TrimSuffix(strings.TrimPrefix(match, "{{"), "}}")
		if val, ok := vars[name]; ok {
			return val
		}
		return match
	})
}
