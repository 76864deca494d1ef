package ops

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/mealcal/mealcal/internal/config"
	"github.com/mealcal/mealcal/internal/errors"
)

// PathAccess says whether an import/export path is about to be read or written.
type PathAccess int

const (
	ReadAccess  PathAccess = iota // import
	WriteAccess                   // export
)

// transferExt is the only extension accepted for meal plan files.
const transferExt = ".jsonl"

// CheckTransferPath vets a path handed to Import or Export.
//
// The path must be a .jsonl file with no ".." component, sitting directly in
// <base>/exports or one of cfg.AllowedPaths (subdirectories are refused so no
// intermediate component can be swapped for a symlink after the check).
// AllowUnsafePaths lifts the directory rule only. The file itself may never
// be a symlink, matching the O_NOFOLLOW open that follows.
func CheckTransferPath(path string, access PathAccess, cfg *config.Config) error {
	abs, err := cleanTransferPath(path)
	if err != nil {
		return err
	}

	if cfg == nil || !cfg.AllowUnsafePaths {
		if err := requireTransferDir(filepath.Dir(abs), cfg); err != nil {
			return err
		}
	}

	if access == ReadAccess {
		if _, err := os.Stat(abs); os.IsNotExist(err) {
			return errors.NewFileNotFound(path)
		}
	}
	if isSymlink(abs) {
		return errors.NewValidation("path must not be a symlink")
	}
	return nil
}

// cleanTransferPath applies the lexical rules and returns the absolute path.
func cleanTransferPath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", errors.NewValidation("path is required")
	}
	if hasDotDot(path) {
		return "", errors.NewValidation("path must not contain directory traversal (..)")
	}

	cleaned := filepath.Clean(path)
	if filepath.Ext(cleaned) != transferExt {
		return "", errors.NewValidation("path must have " + transferExt + " extension")
	}

	abs, err := filepath.Abs(cleaned)
	if err != nil {
		return "", errors.NewValidation(fmt.Sprintf("invalid path: %v", err))
	}
	return abs, nil
}

// requireTransferDir checks that dir is exactly one of the configured
// transfer directories and is not itself a symlink.
func requireTransferDir(dir string, cfg *config.Config) error {
	allowed, err := transferDirs(cfg)
	if err != nil {
		return err
	}
	if !slices.Contains(allowed, filepath.Clean(dir)) {
		return errors.NewValidation(fmt.Sprintf(
			"file must be directly in an allowed directory (no subdirectories); allowed: %v", allowed))
	}
	if isSymlink(dir) {
		return errors.NewValidation("parent directory must not be a symlink")
	}
	return nil
}

// transferDirs lists <base>/exports and every absolute allowed_paths entry.
// Symlinked entries are resolved so files under their real target match.
func transferDirs(cfg *config.Config) ([]string, error) {
	var candidates []string
	if cfg != nil {
		if cfg.BaseDir != "" {
			candidates = append(candidates, cfg.ExportsDir())
		}
		for _, p := range cfg.AllowedPaths {
			if filepath.IsAbs(p) {
				candidates = append(candidates, p)
			}
		}
	}
	if len(candidates) == 0 {
		return nil, errors.NewValidation("no import/export directory is configured")
	}

	dirs := make([]string, 0, len(candidates))
	for _, c := range candidates {
		dir, err := filepath.Abs(filepath.Clean(c))
		if err != nil {
			return nil, errors.NewValidation(fmt.Sprintf("invalid allowed path: %v", err))
		}
		if isSymlink(dir) {
			if dir, err = filepath.EvalSymlinks(dir); err != nil {
				return nil, errors.NewValidation(fmt.Sprintf("cannot resolve symlink in allowed path: %v", err))
			}
		}
		dirs = append(dirs, dir)
	}
	return dirs, nil
}

// isSymlink reports whether path exists and is a symlink.
func isSymlink(path string) bool {
	info, err := os.Lstat(path)
	return err == nil && info.Mode()&os.ModeSymlink != 0
}

// hasDotDot reports whether any component of path, split on either slash, is "..".
func hasDotDot(path string) bool {
	parts := strings.FieldsFunc(path, func(r rune) bool {
		return r == '/' || r == filepath.Separator
	})
	return slices.Contains(parts, "..")
}
