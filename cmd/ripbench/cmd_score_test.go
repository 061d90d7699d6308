package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeRTTM(t *testing.T, dir, id, speaker string) {
	t.Helper()
	line := "SPEAKER " + id + " 1 0.000 10.000 <NA> <NA> " + speaker + " <NA> <NA>\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, id+".rttm"), []byte(line), 0o644))
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestScoreCommand(t *testing.T) {
	refDir := t.TempDir()
	sysDir := t.TempDir()
	writeRTTM(t, refDir, "file1", "A")
	writeRTTM(t, sysDir, "file1", "spk0")

	out, err := runCommand(t, "score", refDir, sysDir)
	require.NoError(t, err)
	require.Contains(t, out, "Scoring 1 files (collar=0.25s, skip_overlap=false)")
	require.Contains(t, out, "DER:         0.0%")
}

func TestScoreCommand_PerFile(t *testing.T) {
	refDir := t.TempDir()
	sysDir := t.TempDir()
	writeRTTM(t, refDir, "file1", "A")
	writeRTTM(t, refDir, "file2", "A")
	writeRTTM(t, sysDir, "file1", "spk0")
	writeRTTM(t, sysDir, "file2", "spk0")

	out, err := runCommand(t, "score", refDir, sysDir, "--per-file", "--collar", "0.1")
	require.NoError(t, err)
	require.Contains(t, out, "file1")
	require.Contains(t, out, "file2")
	require.Contains(t, out, "Overall (2 files")
}

func TestScoreCommand_WarnsOnUnmatched(t *testing.T) {
	refDir := t.TempDir()
	sysDir := t.TempDir()
	writeRTTM(t, refDir, "file1", "A")
	writeRTTM(t, refDir, "file2", "A")
	writeRTTM(t, sysDir, "file1", "spk0")

	out, err := runCommand(t, "score", refDir, sysDir)
	require.NoError(t, err)
	require.Contains(t, out, "WARNING: 1 ref files have no sys match")
}

func TestScoreCommand_NoMatches(t *testing.T) {
	refDir := t.TempDir()
	sysDir := t.TempDir()
	writeRTTM(t, refDir, "file1", "A")
	writeRTTM(t, sysDir, "other", "spk0")

	_, err := runCommand(t, "score", refDir, sysDir)
	require.Error(t, err)
	var noResults *NoResultsError
	require.ErrorAs(t, err, &noResults)
}

func TestScoreCommand_MissedSpeech(t *testing.T) {
	refDir := t.TempDir()
	sysDir := t.TempDir()
	writeRTTM(t, refDir, "file1", "A")
	// Empty hypothesis: everything is missed.
	require.NoError(t, os.WriteFile(filepath.Join(sysDir, "file1.rttm"), nil, 0o644))

	out, err := runCommand(t, "score", refDir, sysDir, "--collar", "0")
	require.NoError(t, err)
	require.Contains(t, out, "DER:         100.0%")
}
