package snapshot

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// conflictType marks a property whose records disagree on its type.
const conflictType = "conflict"

// ExtractModel derives a property-name → property-type model from
// dumped records. A name seen with more than one type is marked as a
// conflict and logged.
func ExtractModel(records []ParsedRecord) map[string]string {
	model := make(map[string]string)
	seen := make(map[string]map[string]bool)

	slog.Info("extracting model", "records", len(records))
	for _, rec := range records {
		for name, prop := range rec.Properties {
			if prop.Type == "" {
				slog.Warn("property has no type in parsed data", "record_id", rec.ID, "property", name)
				continue
			}
			if seen[name] == nil {
				seen[name] = make(map[string]bool)
			}
			seen[name][prop.Type] = true

			existing, ok := model[name]
			switch {
			case !ok:
				model[name] = prop.Type
			case existing != prop.Type && existing != conflictType:
				slog.Warn("type conflict for property",
					"property", name, "found", prop.Type, "recorded", existing, "record_id", rec.ID)
				model[name] = conflictType
			}
		}
	}
	return model
}

// ExtractModels scans the data directory for dump files, derives a
// model for each, and writes it as <base>_MODEL.json under modelDir.
// A file that fails is skipped and the scan continues.
func ExtractModels(dataDir, modelDir string) (int, error) {
	entries, err := os.ReadDir(dataDir)
	if err != nil {
		return 0, fmt.Errorf("listing data directory %s: %w", dataDir, err)
	}

	processed := 0
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		// Only collection dumps; skip catalogs and derived files.
		if !strings.Contains(name, "_") || strings.Contains(name, "_MODEL") || strings.Contains(name, "_SCHEMA") {
			continue
		}

		path := filepath.Join(dataDir, name)
		records, err := loadDump(path)
		if err != nil {
			slog.Warn("skipping unreadable dump", "path", path, "error", err)
			continue
		}
		model := ExtractModel(records)
		if len(model) == 0 {
			slog.Warn("no model could be extracted", "path", path)
			continue
		}

		base := strings.TrimSuffix(name, ".json")
		if err := saveModel(filepath.Join(modelDir, base+"_MODEL.json"), model); err != nil {
			slog.Error("saving model failed", "path", path, "error", err)
			continue
		}
		processed++
	}

	slog.Info("model extraction complete", "processed", processed)
	return processed, nil
}

func loadDump(path string) ([]ParsedRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var records []ParsedRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return records, nil
}

func saveModel(path string, model map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(model, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}
	slog.Info("model saved", "path", path, "properties", len(model))
	return nil
}
