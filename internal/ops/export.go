package ops

import (
	"bufio"
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/mealcal/mealcal/internal/config"
	"github.com/mealcal/mealcal/internal/db"
	"github.com/mealcal/mealcal/internal/errors"
	"github.com/mealcal/mealcal/internal/meal"
)

// ExportSchemaVersion is written to the header line of every export.
const ExportSchemaVersion = "1.0"

// ExportInput contains parameters for the Export operation.
type ExportInput struct {
	Path      string // optional, default: <base>/exports/meals-<range>-<timestamp>.jsonl
	StartDate string // optional; both or neither of StartDate/EndDate
	EndDate   string
}

// ExportOutput contains the result of the Export operation.
type ExportOutput struct {
	Path       string `json:"path"`
	Count      int    `json:"count"`
	ExportedAt int64  `json:"exported_at"`
}

// Export writes live meals to a JSONL file: a header line followed by one
// meal per line. The file is written to a temp name and renamed into place,
// so an existing file is never left half-written.
func Export(ctx context.Context, database *sql.DB, cfg *config.Config, input ExportInput) (*ExportOutput, error) {
	out, err := export(ctx, database, cfg, input)
	return out, observe("export", err)
}

func export(ctx context.Context, database *sql.DB, cfg *config.Config, input ExportInput) (*ExportOutput, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	r := DateRange{Start: minDate, End: maxDate}
	hasStart := strings.TrimSpace(input.StartDate) != ""
	hasEnd := strings.TrimSpace(input.EndDate) != ""
	if hasStart != hasEnd {
		return nil, errors.NewValidation("start_date and end_date must be given together")
	}
	if hasStart {
		var err error
		if r, err = ParseDateRange(input.StartDate, input.EndDate); err != nil {
			return nil, err
		}
	}

	now := time.Now()
	exportedAt := now.Unix()

	exportPath := input.Path
	if exportPath == "" {
		exportPath = defaultExportPath(cfg, r, hasStart, now)
	}

	if err := CheckTransferPath(exportPath, WriteAccess, cfg); err != nil {
		return nil, err
	}

	meals, err := db.ListRange(ctx, database, r.Start, r.End)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(exportPath), 0700); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to create export directory: %w", err))
	}

	randBytes := make([]byte, 8)
	if _, err := rand.Read(randBytes); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to generate temp file name: %w", err))
	}
	tempPath := exportPath + "." + hex.EncodeToString(randBytes) + ".tmp"
	file, err := openFileNoFollow(tempPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		if errors.Is(err, errors.ErrValidation) {
			return nil, err
		}
		return nil, errors.NewInternal(fmt.Errorf("failed to create export file: %w", err))
	}

	success := false
	defer func() {
		if file != nil {
			file.Close()
		}
		if !success {
			os.Remove(tempPath)
		}
	}()

	w := bufio.NewWriter(file)
	enc := json.NewEncoder(w)

	header := meal.ExportRecord{
		MealcalExport: true,
		SchemaVersion: ExportSchemaVersion,
		ExportedAt:    exportedAt,
	}
	if err := enc.Encode(header); err != nil {
		return nil, errors.NewInternal(err)
	}

	for i := range meals {
		if ctx.Err() != nil {
			return nil, errors.NewCancelled("export")
		}
		if err := enc.Encode(meal.ToExportRecord(&meals[i])); err != nil {
			return nil, errors.NewInternal(err)
		}
	}

	if err := w.Flush(); err != nil {
		return nil, errors.NewInternal(err)
	}
	if err := file.Sync(); err != nil {
		return nil, errors.NewInternal(err)
	}
	// Close before rename (required on Windows).
	if err := file.Close(); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to close export file: %w", err))
	}
	file = nil

	// os.Rename would follow a symlink planted at the destination.
	if info, err := os.Lstat(exportPath); err == nil && info.Mode()&os.ModeSymlink != 0 {
		return nil, errors.NewValidation("export path must not be a symlink")
	}

	if err := os.Rename(tempPath, exportPath); err != nil {
		if runtime.GOOS == "windows" {
			if _, statErr := os.Stat(exportPath); statErr == nil {
				return nil, errors.NewValidation("export destination already exists; choose a new path or delete the existing file")
			}
		}
		return nil, errors.NewInternal(fmt.Errorf("failed to finalize export: %w", err))
	}

	success = true
	return &ExportOutput{
		Path:       exportPath,
		Count:      len(meals),
		ExportedAt: exportedAt,
	}, nil
}

// defaultExportPath builds <base>/exports/meals-<range>-<timestamp>.jsonl.
func defaultExportPath(cfg *config.Config, r DateRange, ranged bool, now time.Time) string {
	name := "meals-all"
	if ranged {
		name = fmt.Sprintf("meals-%s_%s", r.Start, r.End)
	}
	return filepath.Join(cfg.ExportsDir(), name+"-"+now.Format("2006-01-02T150405")+transferExt)
}
