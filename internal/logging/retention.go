package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"
)

// RunLogRetention selects which per-run daemon logs survive startup.
type RunLogRetention struct {
	Dir string
	// Pattern matches run log names, e.g. "queuedisplay-*.log".
	Pattern string
	// Current is the log of the run doing the pruning; it is never removed.
	Current string
	// MaxAgeDays removes runs older than this many days; 0 keeps every age.
	MaxAgeDays int
	// KeepLatest runs are kept regardless of age, so a kiosk that was
	// powered off for a month still has its last sessions to inspect.
	KeepLatest int
}

type runLog struct {
	path    string
	modTime time.Time
}

// PruneRunLogs removes expired run logs and returns how many were deleted.
func PruneRunLogs(logger *slog.Logger, policy RunLogRetention) int {
	if policy.MaxAgeDays <= 0 || strings.TrimSpace(policy.Dir) == "" {
		return 0
	}
	runs := listRunLogs(policy)
	// Newest first so the KeepLatest prefix is the most recent runs.
	slices.SortFunc(runs, func(a, b runLog) int { return b.modTime.Compare(a.modTime) })

	cutoff := time.Now().AddDate(0, 0, -policy.MaxAgeDays)
	removed := 0
	for i, run := range runs {
		if i < policy.KeepLatest || !run.modTime.Before(cutoff) {
			continue
		}
		if err := os.Remove(run.path); err != nil {
			WarnWithContext(logger, "old run log not removed", "log_retention_failed",
				String("path", run.path),
				Error(err),
				String(FieldErrorHint, "check ownership of paths.log_dir"),
				String(FieldImpact, "disk usage grows until the file is removed"),
			)
			continue
		}
		removed++
		if logger != nil {
			logger.Debug("run log pruned", String("path", run.path), String(FieldEventType, "log_pruned"))
		}
	}
	if removed > 0 && logger != nil {
		logger.Info("old run logs pruned", Int("removed", removed), Int("kept", len(runs)-removed))
	}
	return removed
}

func listRunLogs(policy RunLogRetention) []runLog {
	entries, err := os.ReadDir(policy.Dir)
	if err != nil {
		return nil
	}
	current := ""
	if strings.TrimSpace(policy.Current) != "" {
		current, _ = filepath.Abs(policy.Current)
	}
	runs := make([]runLog, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		if policy.Pattern != "" {
			if ok, err := filepath.Match(policy.Pattern, entry.Name()); err != nil || !ok {
				continue
			}
		}
		path, err := filepath.Abs(filepath.Join(policy.Dir, entry.Name()))
		if err != nil || path == current {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		runs = append(runs, runLog{path: path, modTime: info.ModTime()})
	}
	return runs
}
