package stager

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joseph-ayodele/doc-intake/internal/common"
)

// Stager moves files through the watch → work → final locations. Both moves
// are single atomic renames so a crash mid-operation cannot duplicate a file.
type Stager struct {
	workDir  string
	finalDir string
	logger   *slog.Logger
}

func New(workDir, finalDir string, logger *slog.Logger) *Stager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Stager{workDir: workDir, finalDir: finalDir, logger: logger}
}

// Stage moves a detected file into the work location, creating it if absent.
func (s *Stager) Stage(path string) (string, error) {
	return s.move(path, s.workDir, "stage")
}

// Finalize moves a processed file into the final location, creating it if absent.
func (s *Stager) Finalize(path string) (string, error) {
	return s.move(path, s.finalDir, "finalize")
}

func (s *Stager) move(path, destDir, op string) (string, error) {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", fmt.Errorf("%s: create dir %s: %w", op, destDir, err)
	}
	dest := filepath.Join(destDir, filepath.Base(path))
	if _, err := os.Lstat(dest); err == nil {
		s.logger.Error("stager.collision", "op", op, "src", path, "dest", dest)
		return "", common.NewAppError("COLLISION", fmt.Sprintf("%s: %s", op, dest), common.ErrCollision)
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("%s: stat %s: %w", op, dest, err)
	}
	if err := os.Rename(path, dest); err != nil {
		return "", fmt.Errorf("%s: move %s -> %s: %w", op, path, dest, err)
	}
	s.logger.Debug("stager.moved", "op", op, "src", path, "dest", dest)
	return dest, nil
}
