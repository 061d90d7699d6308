package sweep

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/unthingable/ripcord/internal/dataset"
	"github.com/unthingable/ripcord/internal/transcriber"
)

const mockTranscript = `{
  "metadata": {"source_file": "file1.wav"},
  "segments": [{"start": 0.0, "end": 10.0, "speaker": "spk0"}]
}`

// newTestDataset lays out one audio file with a matching reference that
// the mock transcript reproduces exactly.
func newTestDataset(t *testing.T) dataset.Dataset {
	t.Helper()
	root := t.TempDir()
	audioDir := filepath.Join(root, "audio")
	refDir := filepath.Join(root, "rttm")
	require.NoError(t, os.MkdirAll(audioDir, 0o755))
	require.NoError(t, os.MkdirAll(refDir, 0o755))

	require.NoError(t, os.WriteFile(filepath.Join(audioDir, "file1.wav"), nil, 0o644))
	ref := "SPEAKER file1 1 0.000 10.000 <NA> <NA> A <NA> <NA>\n"
	require.NoError(t, os.WriteFile(filepath.Join(refDir, "file1.rttm"), []byte(ref), 0o644))

	return dataset.Dataset{Name: "voxconverse", AudioDir: audioDir, RefDir: refDir, Weight: 1.0}
}

func newTestRunner(engine transcriber.Engine, sweepDir string) *Runner {
	return &Runner{
		Engine:   engine,
		SweepDir: sweepDir,
		Collar:   0.25,
		Out:      &bytes.Buffer{},
	}
}

func TestRunCombos(t *testing.T) {
	ds := newTestDataset(t)
	mock := &transcriber.Mock{Output: mockTranscript}
	runner := newTestRunner(mock, t.TempDir())

	combo := transcriber.Params{Sensitivity: floatPtr(0.7)}
	outcomes, err := runner.RunCombos(context.Background(), []transcriber.Params{combo}, ds)
	require.NoError(t, err)
	require.Len(t, outcomes, 1)

	// Perfect hypothesis scores zero error.
	require.Equal(t, 0.0, outcomes[0].Score.DER)
	require.Greater(t, outcomes[0].Score.RefTotal, 0.0)

	require.Equal(t, 1, mock.Calls())
	req := mock.Requests()[0]
	require.Equal(t, filepath.Join(ds.AudioDir, "file1.wav"), req.AudioPath)
	require.Equal(t, combo, req.Params)

	comboDir := filepath.Join(runner.SweepDir, "mgD_msD_t0.7_sD", "voxconverse")
	require.FileExists(t, filepath.Join(comboDir, "file1.json"))
	require.FileExists(t, filepath.Join(comboDir, "file1.rttm"))
}

func TestRunCombos_ResumesFromExistingRTTM(t *testing.T) {
	ds := newTestDataset(t)
	mock := &transcriber.Mock{Output: mockTranscript}
	runner := newTestRunner(mock, t.TempDir())

	combo := transcriber.Params{}
	comboDir := filepath.Join(runner.SweepDir, ComboID(combo), "voxconverse")
	require.NoError(t, os.MkdirAll(comboDir, 0o755))
	existing := "SPEAKER file1 1 0.000 10.000 <NA> <NA> spk0 <NA> <NA>\n"
	require.NoError(t, os.WriteFile(filepath.Join(comboDir, "file1.rttm"), []byte(existing), 0o644))

	outcomes, err := runner.RunCombos(context.Background(), []transcriber.Params{combo}, ds)
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	require.Equal(t, 0.0, outcomes[0].Score.DER)

	// The existing hypothesis was reused, not regenerated.
	require.Equal(t, 0, mock.Calls())
}

func TestRunCombos_TranscribeFailureDropsCombo(t *testing.T) {
	ds := newTestDataset(t)
	mock := &transcriber.Mock{Err: errors.New("model load failed")}
	runner := newTestRunner(mock, t.TempDir())

	outcomes, err := runner.RunCombos(context.Background(), []transcriber.Params{{}}, ds)
	require.NoError(t, err)
	require.Empty(t, outcomes)
}

func TestRunCombos_NoFiles(t *testing.T) {
	ds := dataset.Dataset{Name: "empty", AudioDir: t.TempDir(), RefDir: t.TempDir()}
	runner := newTestRunner(&transcriber.Mock{Output: mockTranscript}, t.TempDir())

	_, err := runner.RunCombos(context.Background(), []transcriber.Params{{}}, ds)
	require.Error(t, err)
	require.Contains(t, err.Error(), "no files to process")
}

func TestRunCombos_MissingReferenceSkipsFile(t *testing.T) {
	ds := newTestDataset(t)

	// List names a second file that has audio but no reference.
	require.NoError(t, os.WriteFile(filepath.Join(ds.AudioDir, "file2.wav"), nil, 0o644))
	listPath := filepath.Join(t.TempDir(), "list.txt")
	require.NoError(t, os.WriteFile(listPath, []byte("file1\nfile2\n"), 0o644))
	ds.ListFile = listPath

	mock := &transcriber.Mock{Output: mockTranscript}
	runner := newTestRunner(mock, t.TempDir())

	outcomes, err := runner.RunCombos(context.Background(), []transcriber.Params{{}}, ds)
	require.NoError(t, err)
	require.Len(t, outcomes, 1)

	// Only file1 was transcribed.
	require.Equal(t, 1, mock.Calls())
}

func TestRunCombos_Parallel(t *testing.T) {
	ds := newTestDataset(t)
	mock := &transcriber.Mock{Output: mockTranscript}
	runner := newTestRunner(mock, t.TempDir())
	runner.Workers = 3

	combos := []transcriber.Params{
		{Sensitivity: floatPtr(0.6)},
		{Sensitivity: floatPtr(0.7)},
		{Sensitivity: floatPtr(0.8)},
		{MinGap: floatPtr(0.1)},
	}
	outcomes, err := runner.RunCombos(context.Background(), combos, ds)
	require.NoError(t, err)
	require.Len(t, outcomes, 4)
	require.Equal(t, 4, mock.Calls())
}

func TestRunCombos_Cancellation(t *testing.T) {
	ds := newTestDataset(t)
	runner := newTestRunner(&transcriber.Mock{Output: mockTranscript}, t.TempDir())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := runner.RunCombos(ctx, []transcriber.Params{{}}, ds)
	require.ErrorIs(t, err, context.Canceled)
}
