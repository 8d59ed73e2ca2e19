// Package summary renders the pre-apply preview artifact. The format is
// fixed: tools and operators diff consecutive summary files, so two runs
// over the same plan must produce byte-identical output.
package summary

import (
	"fmt"
	"os"
	"strings"

	"github.com/richiec/ftpfetch/pkg/planner"
)

// DefaultPath is where the preview is written, relative to the working
// directory of the run.
const DefaultPath = "summary.txt"

// Render formats the plan. Downloads list directories before files;
// deletions list files before directories, mirroring the order they are
// applied in. An empty plan renders as "No changes".
func Render(p *planner.Plan) string {
	if p.Empty() {
		return "No changes"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Downloads: %d   Deletions: %d\n", p.DownloadTotal(), p.DeletionTotal())

	sb.WriteString("--- == Downloads == ---")
	for _, d := range p.DirsToCreate {
		sb.WriteString("\n" + d)
	}
	for _, f := range p.FilesToDownload {
		sb.WriteString("\n" + f.Path)
	}

	sb.WriteString("\n--- == Deletions == ---")
	for _, f := range p.FilesToDelete {
		sb.WriteString("\n" + f)
	}
	for _, d := range p.DirsToDelete {
		sb.WriteString("\n" + d)
	}

	return sb.String()
}

// Write renders the plan to the given path, truncating any previous
// summary.
func Write(path string, p *planner.Plan) error {
	if err := os.WriteFile(path, []byte(Render(p)), 0644); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	return nil
}
