package hypothesis

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/unthingable/ripcord/internal/rttm"
)

const sampleTranscript = `{
  "metadata": {"duration": 10.0, "source_file": "/data/audio/meeting1.m4a"},
  "segments": [
    {"start": 1.0, "end": 3.5, "text": "hello", "speaker": "SPEAKER_00"},
    {"start": 4.0, "end": 4.005, "text": "hm"},
    {"start": 5.0, "end": 6.0, "text": "yes"}
  ]
}`

func writeTranscript(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "out.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	tr, err := Load(writeTranscript(t, sampleTranscript))
	require.NoError(t, err)
	require.Len(t, tr.Segments, 3)
	require.Equal(t, "/data/audio/meeting1.m4a", tr.Metadata.SourceFile)
}

func TestFileID(t *testing.T) {
	tr := &Transcript{Metadata: Metadata{SourceFile: "/data/audio/meeting1.m4a"}}
	require.Equal(t, "meeting1", tr.FileID("fallback.json"))

	empty := &Transcript{}
	require.Equal(t, "fallback", empty.FileID("/tmp/fallback.json"))
}

func TestRTTMSegments(t *testing.T) {
	tr, err := Load(writeTranscript(t, sampleTranscript))
	require.NoError(t, err)

	segments := tr.RTTMSegments("meeting1")
	// The 5ms segment is below the minimum duration and dropped; the
	// speakerless segment gets the UNKNOWN sentinel.
	require.Equal(t, []rttm.Segment{
		{FileID: "meeting1", Start: 1.0, Duration: 2.5, Speaker: "SPEAKER_00"},
		{FileID: "meeting1", Start: 5.0, Duration: 1.0, Speaker: UnknownSpeaker},
	}, segments)
}

func TestConvertFile(t *testing.T) {
	jsonPath := writeTranscript(t, sampleTranscript)
	rttmPath := filepath.Join(t.TempDir(), "out.rttm")

	n, err := ConvertFile(jsonPath, rttmPath)
	require.NoError(t, err)
	require.Equal(t, 2, n)

	segments, skipped, err := rttm.ParseFile(rttmPath)
	require.NoError(t, err)
	require.Zero(t, skipped)
	require.Len(t, segments, 2)
	require.Equal(t, "meeting1", segments[0].FileID)
}

func TestLoad_Malformed(t *testing.T) {
	_, err := Load(writeTranscript(t, "{not json"))
	require.Error(t, err)
}
