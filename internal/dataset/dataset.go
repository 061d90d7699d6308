// Package dataset locates the audio and reference files of a benchmark
// dataset on disk.
package dataset

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// audioExtensions are tried in order when resolving an audio file.
var audioExtensions = []string{".m4a", ".wav"}

// Dataset describes one benchmark dataset: a directory of audio files and
// a directory of reference RTTM files, plus its weight in cross-dataset
// ranking.
type Dataset struct {
	Name     string
	AudioDir string
	RefDir   string

	// Suffix is appended to the base name when resolving audio files
	// (e.g. ".Mix-Headset" for AMI headset mixes).
	Suffix string

	// Weight is this dataset's share in the weighted final ranking.
	Weight float64

	// ListFile optionally names the items to process, one per line.
	ListFile string
}

// RefPath returns the reference RTTM path for a base name.
func (d Dataset) RefPath(base string) string {
	return filepath.Join(d.RefDir, base+".rttm")
}

// FindAudio resolves the audio file for a base name, trying the dataset
// suffix and each known extension.
func (d Dataset) FindAudio(base string) (string, bool) {
	for _, ext := range audioExtensions {
		path := filepath.Join(d.AudioDir, base+d.Suffix+ext)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, true
		}
	}
	return "", false
}

// Files returns the base names to process. It prefers scanning the audio
// directory, keeping only bases that have a reference RTTM; when the scan
// yields nothing it falls back to the dataset's list file. maxFiles > 0
// caps the result (smoke-testing support).
func (d Dataset) Files(maxFiles int) ([]string, error) {
	files := d.discover()

	if len(files) == 0 && d.ListFile != "" {
		listed, err := LoadList(d.ListFile)
		if err != nil {
			return nil, fmt.Errorf("dataset %s: %w", d.Name, err)
		}
		files = listed
	}

	if maxFiles > 0 && len(files) > maxFiles {
		files = files[:maxFiles]
	}
	return files, nil
}

// discover scans the audio directory for bases with a matching reference.
func (d Dataset) discover() []string {
	entries, err := os.ReadDir(d.AudioDir)
	if err != nil {
		return nil
	}

	seen := make(map[string]struct{})
	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		ext := filepath.Ext(name)
		if !isAudioExt(ext) {
			continue
		}
		base := strings.TrimSuffix(name, ext)
		base = strings.TrimSuffix(base, d.Suffix)
		if _, ok := seen[base]; ok {
			continue
		}
		if _, err := os.Stat(d.RefPath(base)); err != nil {
			continue
		}
		seen[base] = struct{}{}
		files = append(files, base)
	}
	sort.Strings(files)
	return files
}

func isAudioExt(ext string) bool {
	for _, e := range audioExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// LoadList reads a list file, skipping blank lines and "#" comments.
func LoadList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close() //nolint:errcheck // read-only file

	var names []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		names = append(names, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading list %s: %w", path, err)
	}
	return names, nil
}
