// Package catalog persists the mapping from human-readable collection
// titles to their opaque workspace ids.
package catalog

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// fileSchema constrains the catalog file to a flat title→id object.
const fileSchema = `{
	"type": "object",
	"additionalProperties": {"type": "string", "minLength": 1}
}`

// Catalog maps collection titles to collection ids.
type Catalog map[string]string

// Load reads and validates the catalog file. A missing file is a
// configuration error: planning commands cannot resolve collections
// without it.
func Load(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog %s (run `studyloop sync` first): %w", path, err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(fileSchema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return nil, fmt.Errorf("validating catalog %s: %w", path, err)
	}
	if !result.Valid() {
		var problems []string
		for _, e := range result.Errors() {
			problems = append(problems, e.String())
		}
		return nil, fmt.Errorf("catalog %s is malformed: %s", path, strings.Join(problems, "; "))
	}

	var c Catalog
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decoding catalog %s: %w", path, err)
	}
	slog.Info("catalog loaded", "path", path, "collections", len(c))
	return c, nil
}

// Save writes the catalog file, creating the parent directory as
// needed.
func Save(path string, c Catalog) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating catalog directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "    ")
	if err != nil {
		return fmt.Errorf("encoding catalog: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing catalog %s: %w", path, err)
	}
	slog.Info("catalog saved", "path", path, "collections", len(c))
	return nil
}

// IDFor resolves a collection title. A missing title is a fatal
// configuration error for the invocation.
func (c Catalog) IDFor(title string) (string, error) {
	id, ok := c[title]
	if !ok || id == "" {
		return "", fmt.Errorf("collection %q not found in catalog; check that the title matches the workspace exactly", title)
	}
	return id, nil
}
