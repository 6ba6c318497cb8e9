// Package snapshot dumps parsed workspace collections to local files:
// a title→id catalog, per-collection JSON dumps, derived property
// models, and xlsx exports.
package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/studyloop/studyloop/internal/catalog"
	"github.com/studyloop/studyloop/internal/workspace"
)

// RecordStore is the slice of the workspace client snapshots need.
type RecordStore interface {
	ListCollections(ctx context.Context) ([]workspace.Collection, error)
	RetrieveCollection(ctx context.Context, collectionID string) (*workspace.Collection, error)
	QueryCollection(ctx context.Context, collectionID string, filter *workspace.Filter, sorts []workspace.Sort) ([]workspace.Record, error)
}

// ParsedProperty is one decoded property: its declared type plus the
// plain parsed value.
type ParsedProperty struct {
	Type  string `json:"type"`
	Value any    `json:"value"`
}

// ParsedRecord is one record with all properties decoded.
type ParsedRecord struct {
	ID         string                    `json:"id"`
	Properties map[string]ParsedProperty `json:"properties"`
}

// Snapshotter writes local snapshots of workspace collections.
type Snapshotter struct {
	store   RecordStore
	dataDir string
}

// New creates a Snapshotter writing under dataDir.
func New(store RecordStore, dataDir string) *Snapshotter {
	return &Snapshotter{store: store, dataDir: dataDir}
}

// SyncCatalog lists accessible collections and writes the title→id
// catalog file.
func (s *Snapshotter) SyncCatalog(ctx context.Context, path string) (catalog.Catalog, error) {
	collections, err := s.store.ListCollections(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing collections: %w", err)
	}
	if len(collections) == 0 {
		return nil, fmt.Errorf("no collections visible to the integration")
	}

	cat := make(catalog.Catalog, len(collections))
	for _, col := range collections {
		cat[col.PlainTitle()] = col.ID
	}
	if err := catalog.Save(path, cat); err != nil {
		return nil, err
	}
	return cat, nil
}

// FetchParsed fetches every record of a collection and decodes each
// property to {type, value}. Returns the collection title alongside.
func (s *Snapshotter) FetchParsed(ctx context.Context, collectionID string) (string, []ParsedRecord, error) {
	col, err := s.store.RetrieveCollection(ctx, collectionID)
	if err != nil {
		return "", nil, fmt.Errorf("retrieve collection info: %w", err)
	}
	title := col.PlainTitle()

	records, err := s.store.QueryCollection(ctx, collectionID, nil, nil)
	if err != nil {
		return "", nil, fmt.Errorf("fetching records: %w", err)
	}

	parsed := make([]ParsedRecord, 0, len(records))
	for _, rec := range records {
		pr := ParsedRecord{ID: rec.ID, Properties: make(map[string]ParsedProperty, len(rec.Properties))}
		for name, value := range rec.Properties {
			pr.Properties[name] = ParsedProperty{Type: value.Type, Value: value.Parse()}
		}
		parsed = append(parsed, pr)
	}
	return title, parsed, nil
}

// DumpCollection fetches and decodes a collection, then writes it as a
// JSON file named after the collection's title and a short id prefix.
// Returns the file path.
func (s *Snapshotter) DumpCollection(ctx context.Context, collectionID string) (string, error) {
	title, parsed, err := s.FetchParsed(ctx, collectionID)
	if err != nil {
		return "", err
	}
	slog.Info("dumping collection", "title", title, "collection_id", collectionID)

	if err := os.MkdirAll(s.dataDir, 0o755); err != nil {
		return "", fmt.Errorf("creating data directory: %w", err)
	}
	path := filepath.Join(s.dataDir, dumpFileName(title, collectionID))
	data, err := json.MarshalIndent(parsed, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding dump: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing dump %s: %w", path, err)
	}

	slog.Info("collection dumped", "path", path, "records", len(parsed))
	return path, nil
}

// DumpAll dumps every collection in the catalog. Failures are logged
// and the loop advances; the returned paths cover the successful dumps.
func (s *Snapshotter) DumpAll(ctx context.Context, cat catalog.Catalog) []string {
	var paths []string
	for title, id := range cat {
		path, err := s.DumpCollection(ctx, id)
		if err != nil {
			slog.Error("dump failed", "title", title, "error", err)
			continue
		}
		paths = append(paths, path)
	}
	return paths
}

var unsafeFileChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)

// dumpFileName builds "<safe-title>_<shortid>.json". The title is
// sanitized and truncated; the id prefix keeps same-titled collections
// apart.
func dumpFileName(title, collectionID string) string {
	safe := unsafeFileChars.ReplaceAllString(title, "_")
	if runes := []rune(safe); len(runes) > 50 {
		safe = string(runes[:50])
	}
	short := strings.ReplaceAll(collectionID, "-", "")
	if len(short) > 8 {
		short = short[:8]
	}
	return fmt.Sprintf("%s_%s.json", safe, short)
}
