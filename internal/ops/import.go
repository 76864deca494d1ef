package ops

import (
	"bufio"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/mealcal/mealcal/internal/config"
	"github.com/mealcal/mealcal/internal/db"
	"github.com/mealcal/mealcal/internal/errors"
	"github.com/mealcal/mealcal/internal/meal"
)

// ImportMode controls what happens when a line cannot be imported.
type ImportMode string

const (
	ImportModeError ImportMode = "error" // default: import nothing if any line fails (atomic)
	ImportModeSkip  ImportMode = "skip"  // import what fits, report the rest
)

// maxImportLineBytes bounds a single JSONL line.
const maxImportLineBytes = 1 << 20

// ImportInput contains parameters for the Import operation.
type ImportInput struct {
	Path string     // required
	Mode ImportMode // default: error
}

// ImportOutput contains the result of the Import operation.
type ImportOutput struct {
	Imported int           `json:"imported"`
	Skipped  int           `json:"skipped"`
	Errors   []ImportError `json:"errors"`
}

// ImportError describes one line that was not imported.
type ImportError struct {
	Line     int    `json:"line"`
	Date     string `json:"date,omitempty"`
	MealType string `json:"meal_type,omitempty"`
	Code     string `json:"code"`
	Message  string `json:"message"`
}

// importRecord is a parsed, validated line awaiting insertion.
type importRecord struct {
	line int
	meal *meal.Meal
}

// Import reads meals from a JSONL export file. Every imported meal gets a
// fresh id. Slots already holding a live meal (or claimed by an earlier line
// of the same file) are conflicts: mode error aborts the whole import, mode
// skip reports and skips the line.
func Import(ctx context.Context, database *sql.DB, cfg *config.Config, input ImportInput) (*ImportOutput, error) {
	out, err := importFile(ctx, database, cfg, input)
	return out, observe("import", err)
}

func importFile(ctx context.Context, database *sql.DB, cfg *config.Config, input ImportInput) (*ImportOutput, error) {
	if input.Mode == "" {
		input.Mode = ImportModeError
	}
	if input.Mode != ImportModeError && input.Mode != ImportModeSkip {
		return nil, errors.NewValidation("mode must be one of: error, skip")
	}
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	if err := CheckTransferPath(input.Path, ReadAccess, cfg); err != nil {
		return nil, err
	}

	file, err := openFileNoFollowRead(input.Path)
	if err != nil {
		if errors.Is(err, errors.ErrFileNotFound) || errors.Is(err, errors.ErrValidation) {
			return nil, err
		}
		return nil, errors.NewInternal(fmt.Errorf("failed to open import file: %w", err))
	}
	defer file.Close()

	records, lineErrors := parseImportFile(file)

	if input.Mode == ImportModeError && len(lineErrors) > 0 {
		return &ImportOutput{Errors: lineErrors}, nil
	}

	out := &ImportOutput{Errors: lineErrors, Skipped: len(lineErrors)}

	err = db.WithTx(ctx, database, func(tx *sql.Tx) error {
		for _, rec := range records {
			if ctx.Err() != nil {
				return errors.NewCancelled("import")
			}

			id, err := generateULID()
			if err != nil {
				return errors.NewInternal(err)
			}
			rec.meal.ID = id

			err = insertIntoFreeSlot(ctx, tx, rec.meal)
			if errors.Is(err, errors.ErrSlotOccupied) {
				lineErr := ImportError{
					Line:     rec.line,
					Date:     rec.meal.Date,
					MealType: string(rec.meal.MealType),
					Code:     string(errors.ErrSlotOccupied),
					Message:  errors.As(err).Message,
				}
				if input.Mode == ImportModeError {
					out = &ImportOutput{Errors: []ImportError{lineErr}}
					return errImportAborted
				}
				out.Errors = append(out.Errors, lineErr)
				out.Skipped++
				continue
			}
			if err != nil {
				return err
			}
			out.Imported++
		}
		return nil
	})
	if err == errImportAborted {
		return out, nil
	}
	if err != nil {
		return nil, err
	}

	if out.Errors == nil {
		out.Errors = []ImportError{}
	}
	return out, nil
}

// errImportAborted rolls back a mode error import after a conflict.
var errImportAborted = fmt.Errorf("import aborted")

// parseImportFile parses and validates every line. The header line is
// skipped; blank lines are ignored.
func parseImportFile(r io.Reader) ([]importRecord, []ImportError) {
	var records []importRecord
	var lineErrors []ImportError

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxImportLineBytes)
	lineNum := 0
	now := time.Now().Unix()

	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var record meal.ExportRecord
		if err := json.Unmarshal(line, &record); err != nil {
			lineErrors = append(lineErrors, ImportError{
				Line:    lineNum,
				Code:    "PARSE_ERROR",
				Message: fmt.Sprintf("invalid JSON: %v", err),
			})
			continue
		}

		if record.MealcalExport {
			continue
		}

		m, err := record.ToMeal()
		if err != nil {
			lineErrors = append(lineErrors, ImportError{
				Line:     lineNum,
				Date:     record.Date,
				MealType: record.MealType,
				Code:     "INVALID_RECORD",
				Message:  errors.As(err).Message,
			})
			continue
		}
		if m.CreatedAt == 0 {
			m.CreatedAt = now
		}
		if m.UpdatedAt == 0 {
			m.UpdatedAt = m.CreatedAt
		}

		records = append(records, importRecord{line: lineNum, meal: m})
	}

	if err := scanner.Err(); err != nil {
		lineErrors = append(lineErrors, ImportError{
			Line:    lineNum + 1,
			Code:    "READ_ERROR",
			Message: fmt.Sprintf("failed to read file: %v", err),
		})
	}

	return records, lineErrors
}
