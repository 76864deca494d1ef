package ops

import (
	"bufio"
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mealcal/mealcal/internal/config"
	"github.com/mealcal/mealcal/internal/db"
	"github.com/mealcal/mealcal/internal/errors"
	"github.com/mealcal/mealcal/internal/meal"
)

// setupEnv opens a database and a config sharing one base directory, so
// files in cfg.ExportsDir() pass path validation.
func setupEnv(t *testing.T) (*sql.DB, *config.Config) {
	t.Helper()
	baseDir := t.TempDir()
	database, err := db.Init(baseDir)
	if err != nil {
		t.Fatalf("db.Init failed: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	cfg := config.DefaultConfig()
	cfg.BaseDir = baseDir
	return database, cfg
}

// readExport returns the decoded lines of an export file.
func readExport(t *testing.T, path string) []meal.ExportRecord {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open export: %v", err)
	}
	defer f.Close()

	var records []meal.ExportRecord
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var rec meal.ExportRecord
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			t.Fatalf("decode line %q: %v", scanner.Text(), err)
		}
		records = append(records, rec)
	}
	return records
}

func TestExport(t *testing.T) {
	database, cfg := setupEnv(t)
	seeded := seedWeek(t, database)

	out, err := Export(context.Background(), database, cfg, ExportInput{})
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if out.Count != 5 {
		t.Errorf("Count = %d, want 5", out.Count)
	}
	if filepath.Dir(out.Path) != cfg.ExportsDir() {
		t.Errorf("Path = %s, want it in %s", out.Path, cfg.ExportsDir())
	}
	if !strings.HasPrefix(filepath.Base(out.Path), "meals-all-") {
		t.Errorf("default name = %s", filepath.Base(out.Path))
	}

	records := readExport(t, out.Path)
	if len(records) != 6 {
		t.Fatalf("lines = %d, want header + 5", len(records))
	}
	header := records[0]
	if !header.MealcalExport || header.SchemaVersion != ExportSchemaVersion || header.ExportedAt != out.ExportedAt {
		t.Errorf("header = %+v", header)
	}
	first := records[1]
	if first.ID != seeded["pancakes"].ID || first.Name != "Pancakes" || len(first.Ingredients) != 3 {
		t.Errorf("first record = %+v", first)
	}

	entries, _ := os.ReadDir(cfg.ExportsDir())
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}
}

func TestExport_Range(t *testing.T) {
	database, cfg := setupEnv(t)
	seedWeek(t, database)
	path := filepath.Join(cfg.ExportsDir(), "tuesday.jsonl")

	out, err := Export(context.Background(), database, cfg, ExportInput{Path: path, StartDate: "2024-01-16", EndDate: "2024-01-16"})
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if out.Count != 2 || out.Path != path {
		t.Errorf("out = %+v", out)
	}
	for _, rec := range readExport(t, path)[1:] {
		if rec.Date != "2024-01-16" {
			t.Errorf("record outside range: %+v", rec)
		}
	}
}

func TestExport_SkipsDeleted(t *testing.T) {
	database, cfg := setupEnv(t)
	seeded := seedWeek(t, database)
	if _, err := Delete(context.Background(), database, DeleteInput{ID: seeded["salad"].ID}); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	out, err := Export(context.Background(), database, cfg, ExportInput{})
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if out.Count != 4 {
		t.Errorf("Count = %d, want 4", out.Count)
	}
}

func TestExport_Errors(t *testing.T) {
	database, cfg := setupEnv(t)

	tests := []struct {
		name  string
		input ExportInput
	}{
		{"start without end", ExportInput{StartDate: "2024-01-15"}},
		{"bad date", ExportInput{StartDate: "2024-01-15", EndDate: "tomorrow"}},
		{"wrong extension", ExportInput{Path: filepath.Join(cfg.ExportsDir(), "out.json")}},
		{"outside exports", ExportInput{Path: filepath.Join(t.TempDir(), "out.jsonl")}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Export(context.Background(), database, cfg, tc.input); !errors.Is(err, errors.ErrValidation) {
				t.Errorf("Export error = %v, want VALIDATION_ERROR", err)
			}
		})
	}
}
