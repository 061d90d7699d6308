package main

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

// writeEngineScript installs a stand-in transcribe binary that writes a
// fixed transcript to the -o argument (positional arg 5).
func writeEngineScript(t *testing.T) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script fixture requires a POSIX shell")
	}

	script := `#!/bin/sh
cat > "$5" <<'EOF'
{"metadata":{"source_file":"file1.wav"},"segments":[{"start":0.0,"end":10.0,"speaker":"spk0"}]}
EOF
`
	path := filepath.Join(t.TempDir(), "transcribe")
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

// newSweepFixture lays out a one-file benchmark tree and a config that
// shrinks the search space to two combos.
func newSweepFixture(t *testing.T) (dataDir, resultsDir, listsDir, configPath string) {
	t.Helper()
	root := t.TempDir()
	dataDir = filepath.Join(root, "data")
	resultsDir = filepath.Join(root, "results")
	listsDir = filepath.Join(root, "lists")

	audioDir := filepath.Join(dataDir, "voxconverse", "audio")
	refDir := filepath.Join(dataDir, "voxconverse", "rttm")
	require.NoError(t, os.MkdirAll(audioDir, 0o755))
	require.NoError(t, os.MkdirAll(refDir, 0o755))
	require.NoError(t, os.MkdirAll(listsDir, 0o755))

	require.NoError(t, os.WriteFile(filepath.Join(audioDir, "file1.wav"), nil, 0o644))
	ref := "SPEAKER file1 1 0.000 10.000 <NA> <NA> A <NA> <NA>\n"
	require.NoError(t, os.WriteFile(filepath.Join(refDir, "file1.rttm"), []byte(ref), 0o644))

	configPath = filepath.Join(root, "sweep.yaml")
	cfg := `ranges:
  sensitivity: [0.6, 0.7]
datasets:
  - name: voxconverse
    weight: 1.0
top_n: 2
`
	require.NoError(t, os.WriteFile(configPath, []byte(cfg), 0o644))
	return dataDir, resultsDir, listsDir, configPath
}

func TestSweepCommand(t *testing.T) {
	bin := writeEngineScript(t)
	dataDir, resultsDir, listsDir, configPath := newSweepFixture(t)

	out, err := runCommand(t, "sweep",
		"--transcribe", bin,
		"--data-dir", dataDir,
		"--results-dir", resultsDir,
		"--lists-dir", listsDir,
		"--config", configPath,
	)
	require.NoError(t, err)
	require.Contains(t, out, "voxconverse: 1 files")
	require.Contains(t, out, "STAGE 1 LEADERBOARD")
	require.Contains(t, out, "FINAL LEADERBOARD")

	sweepDir := filepath.Join(resultsDir, "sweep")
	require.FileExists(t, filepath.Join(sweepDir, "stage1_results.json"))
	require.FileExists(t, filepath.Join(sweepDir, "results.json"))

	// Combo output follows the <sweep>/<comboID>/<dataset> layout.
	require.FileExists(t, filepath.Join(sweepDir, "mgD_msD_t0.6_sD", "voxconverse", "file1.rttm"))
}

func TestSweepCommand_DryRun(t *testing.T) {
	bin := writeEngineScript(t)
	dataDir, resultsDir, listsDir, configPath := newSweepFixture(t)

	out, err := runCommand(t, "sweep",
		"--transcribe", bin,
		"--data-dir", dataDir,
		"--results-dir", resultsDir,
		"--lists-dir", listsDir,
		"--config", configPath,
		"--dry-run",
	)
	require.NoError(t, err)
	require.Contains(t, out, "Estimated runtime:")
	require.Contains(t, out, "(Dry run - no transcriptions were executed)")
	require.NoFileExists(t, filepath.Join(resultsDir, "sweep", "stage1_results.json"))
}

func TestSweepCommand_Stage2WithoutStage1(t *testing.T) {
	bin := writeEngineScript(t)
	dataDir, resultsDir, listsDir, configPath := newSweepFixture(t)

	_, err := runCommand(t, "sweep",
		"--transcribe", bin,
		"--data-dir", dataDir,
		"--results-dir", resultsDir,
		"--lists-dir", listsDir,
		"--config", configPath,
		"--stage", "2",
	)
	var noResults *NoResultsError
	require.ErrorAs(t, err, &noResults)
}

func TestSweepCommand_StagesSeparately(t *testing.T) {
	bin := writeEngineScript(t)
	dataDir, resultsDir, listsDir, configPath := newSweepFixture(t)

	args := []string{"sweep",
		"--transcribe", bin,
		"--data-dir", dataDir,
		"--results-dir", resultsDir,
		"--lists-dir", listsDir,
		"--config", configPath,
	}

	_, err := runCommand(t, append(args, "--stage", "1")...)
	require.NoError(t, err)
	require.FileExists(t, filepath.Join(resultsDir, "sweep", "stage1_results.json"))

	out, err := runCommand(t, append(args, "--stage", "2")...)
	require.NoError(t, err)
	require.Contains(t, out, "FINAL LEADERBOARD")
	require.FileExists(t, filepath.Join(resultsDir, "sweep", "results.json"))
}

func TestSweepCommand_MissingBinary(t *testing.T) {
	dataDir, resultsDir, listsDir, configPath := newSweepFixture(t)

	_, err := runCommand(t, "sweep",
		"--transcribe", filepath.Join(t.TempDir(), "nope"),
		"--data-dir", dataDir,
		"--results-dir", resultsDir,
		"--lists-dir", listsDir,
		"--config", configPath,
	)
	require.Error(t, err)
}
