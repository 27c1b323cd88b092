package mt5

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/process"
)

// TerminalProcess describes a running terminal executable.
type TerminalProcess struct {
	PID int32  `json:"pid"`
	Exe string `json:"exe"`
}

// FindTerminalProcess looks for a running process whose executable is path.
// It returns nil when none is running.
func FindTerminalProcess(ctx context.Context, path string) (*TerminalProcess, error) {
	if path == "" {
		return nil, nil
	}

	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list processes: %w", err)
	}

	for _, p := range procs {
		exe, err := p.ExeWithContext(ctx)
		if err != nil || exe == "" {
			// Access denied or process already gone
			continue
		}
		if sameExecutable(exe, path) {
			return &TerminalProcess{PID: p.Pid, Exe: exe}, nil
		}
	}
	return nil, nil
}

// sameExecutable compares executable paths case-insensitively. A bare file
// name matches on base name only.
func sameExecutable(exe, path string) bool {
	exe = strings.ReplaceAll(exe, `\`, "/")
	path = strings.ReplaceAll(path, `\`, "/")

	if !strings.Contains(path, "/") {
		return strings.EqualFold(filepath.Base(exe), path)
	}
	return strings.EqualFold(filepath.Clean(exe), filepath.Clean(path))
}

// LogTerminalProcess reports whether the terminal is already running.
// A missing process is only a warning: initialize starts it on demand.
func LogTerminalProcess(ctx context.Context, path string, log zerolog.Logger) *TerminalProcess {
	proc, err := FindTerminalProcess(ctx, path)
	switch {
	case err != nil:
		log.Warn().Err(err).Msg("Failed to probe terminal process")
	case proc == nil:
		log.Warn().Str("path", path).Msg("Terminal process not running")
	default:
		log.Info().Int32("pid", proc.PID).Str("exe", proc.Exe).Msg("Terminal process found")
	}
	return proc
}
