package report

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/natefinch/atomic"

	"github.com/danielolaszy/epicgraph/pkg/models"
)

// DefaultFilename is used when no epic is available to name the report after.
const DefaultFilename = "epic_diagram.html"

var unsafeFilenameChars = regexp.MustCompile(`[^a-z0-9]+`)

// Filename derives a report filename from the epic, e.g. "1234-checkout-flow.html".
func Filename(epic *models.Epic) string {
	if epic == nil {
		return DefaultFilename
	}
	name := unsafeFilenameChars.ReplaceAllString(strings.ToLower(epic.Name), "-")
	name = strings.Trim(name, "-")
	if name == "" {
		return fmt.Sprintf("%d.html", epic.ID)
	}
	return fmt.Sprintf("%d-%s.html", epic.ID, name)
}

// Write stores the report at path, replacing any existing file atomically.
func Write(path string, html string) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	if err := atomic.WriteFile(path, strings.NewReader(html)); err != nil {
		return fmt.Errorf("failed to write report %s: %w", path, err)
	}
	return nil
}
