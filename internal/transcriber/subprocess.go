package transcriber

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
)

// stderrLineLimit caps how much engine stderr is surfaced in errors.
const stderrLineLimit = 5

// Subprocess invokes the transcribe binary as a child process with the
// fixed calling convention:
//
//	<binary> <audio> --format json -o <output> --force [param flags]
type Subprocess struct {
	Binary string
}

// NewSubprocess returns an engine wrapping the binary at path.
func NewSubprocess(binary string) *Subprocess {
	return &Subprocess{Binary: binary}
}

// Verify fails fast when the binary is missing or not executable, before
// any work is scheduled.
func (s *Subprocess) Verify() error {
	info, err := os.Stat(s.Binary)
	if err != nil {
		return fmt.Errorf("transcribe binary not found: %s", s.Binary)
	}
	if info.IsDir() || info.Mode().Perm()&0o111 == 0 {
		return fmt.Errorf("transcribe binary not executable: %s", s.Binary)
	}
	return nil
}

// Transcribe runs the engine once. The engine runs to completion; a
// non-zero exit is an error carrying the first few stderr lines for
// diagnostics.
func (s *Subprocess) Transcribe(ctx context.Context, req Request) error {
	args := []string{req.AudioPath, "--format", "json", "-o", req.OutputPath, "--force"}
	args = append(args, req.Params.Flags()...)

	slog.Debug("running transcribe", "binary", s.Binary, "args", args)

	//nolint:gosec // the binary path is operator-supplied configuration
	cmd := exec.CommandContext(ctx, s.Binary, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		detail := firstLines(stderr.String(), stderrLineLimit)
		if detail != "" {
			return fmt.Errorf("transcribe %s: %w\n%s", req.AudioPath, err, detail)
		}
		return fmt.Errorf("transcribe %s: %w", req.AudioPath, err)
	}
	return nil
}

func firstLines(s string, n int) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	lines := strings.Split(s, "\n")
	if len(lines) > n {
		lines = lines[:n]
	}
	for i, line := range lines {
		lines[i] = "    " + strings.TrimRight(line, "\r")
	}
	return strings.Join(lines, "\n")
}
