package ami

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const wordsXML = `<?xml version="1.0" encoding="ISO-8859-1"?>
<nite:root xmlns:nite="http://nite.sourceforge.net/">
  <w nite:id="w0" starttime="1.00" endtime="1.40">hello</w>
  <w nite:id="w1" starttime="1.50" endtime="1.90">there</w>
  <w nite:id="w2" starttime="3.00" endtime="3.40">okay</w>
  <w nite:id="w3" starttime="3.50">broken</w>
  <vocalsound starttime="4.0" endtime="4.2"/>
</nite:root>
`

func writeWords(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParseWordsFile(t *testing.T) {
	path := writeWords(t, t.TempDir(), "ES2004a.A.words.xml", wordsXML)

	words, err := ParseWordsFile(path)
	require.NoError(t, err)
	// The timestampless word and the vocalsound element are skipped.
	require.Equal(t, []Word{
		{Start: 1.0, End: 1.4},
		{Start: 1.5, End: 1.9},
		{Start: 3.0, End: 3.4},
	}, words)
}

func TestMergeWords(t *testing.T) {
	words := []Word{
		{Start: 3.0, End: 3.4}, // unsorted input on purpose
		{Start: 1.0, End: 1.4},
		{Start: 1.5, End: 1.9}, // 0.1s gap: merged
	}

	spans := MergeWords(words, DefaultMergeGap)
	require.Equal(t, []Span{
		{Start: 1.0, End: 1.9},
		{Start: 3.0, End: 3.4},
	}, spans)
}

func TestMergeWords_Empty(t *testing.T) {
	require.Nil(t, MergeWords(nil, DefaultMergeGap))
}

func TestMeetingSegments(t *testing.T) {
	dir := t.TempDir()
	writeWords(t, dir, "ES2004a.A.words.xml", wordsXML)
	writeWords(t, dir, "ES2004a.B.words.xml", `<root>
  <w starttime="0.50" endtime="0.90">yes</w>
</root>`)

	segments, warnings, err := MeetingSegments(dir, "ES2004a")
	require.NoError(t, err)
	require.Empty(t, warnings)
	require.Len(t, segments, 3)

	speakers := make(map[string]int)
	for _, s := range segments {
		require.Equal(t, "ES2004a", s.FileID)
		speakers[s.Speaker]++
	}
	require.Equal(t, map[string]int{"A": 2, "B": 1}, speakers)
}

func TestMeetingSegments_WordsSubdirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "words"), 0o755))
	writeWords(t, filepath.Join(dir, "words"), "IS1000a.C.words.xml", wordsXML)

	segments, _, err := MeetingSegments(dir, "IS1000a")
	require.NoError(t, err)
	require.NotEmpty(t, segments)
}

func TestMeetingSegments_BadFileWarnsAndContinues(t *testing.T) {
	dir := t.TempDir()
	writeWords(t, dir, "ES2004a.A.words.xml", "<w starttime=")
	writeWords(t, dir, "ES2004a.B.words.xml", wordsXML)

	segments, warnings, err := MeetingSegments(dir, "ES2004a")
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	require.NotEmpty(t, segments)
}

func TestMeetingSegments_NoFiles(t *testing.T) {
	_, _, err := MeetingSegments(t.TempDir(), "ES9999z")
	require.Error(t, err)
}

func TestMeetings(t *testing.T) {
	dir := t.TempDir()
	writeWords(t, dir, "ES2004a.A.words.xml", wordsXML)
	writeWords(t, dir, "ES2004a.B.words.xml", wordsXML)
	writeWords(t, dir, "TS3005b.A.words.xml", wordsXML)

	meetings, err := Meetings(dir)
	require.NoError(t, err)
	require.Equal(t, []string{"ES2004a", "TS3005b"}, meetings)
}
