package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/unthingable/ripcord/internal/transcriber"
)

func newCheckCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check that the benchmark environment is ready",
		Long: `Verify the sweep prerequisites before burning hours of transcription:
the config parses, dataset directories exist, list files are readable,
and the transcribe binary is executable.`,
		RunE: runCheckCommand,
	}

	cmd.Flags().String("transcribe", "", "Path to the transcribe binary")
	cmd.Flags().String("data-dir", "", "Benchmark data directory")
	cmd.Flags().String("lists-dir", "", "Benchmark list files directory")
	cmd.Flags().String("config", "", "Sweep config YAML (defaults built in)")

	return cmd
}

type checkResult struct {
	name string
	err  error
}

func runCheckCommand(cmd *cobra.Command, _ []string) error {
	transcribe, _ := cmd.Flags().GetString("transcribe")
	dataDir, _ := cmd.Flags().GetString("data-dir")
	listsDir, _ := cmd.Flags().GetString("lists-dir")
	configPath, _ := cmd.Flags().GetString("config")
	out := cmd.OutOrStdout()

	var results []checkResult

	cfg, err := loadSweepConfig(configPath)
	results = append(results, checkResult{name: "sweep config", err: err})

	if cfg != nil && dataDir != "" {
		for _, dc := range cfg.Datasets {
			audioDir := filepath.Join(dataDir, dc.Name, "audio")
			refDir := filepath.Join(dataDir, dc.Name, "rttm")
			results = append(results,
				checkResult{name: fmt.Sprintf("%s audio dir (%s)", dc.Name, audioDir), err: checkDir(audioDir)},
				checkResult{name: fmt.Sprintf("%s ref dir (%s)", dc.Name, refDir), err: checkDir(refDir)},
			)
			if dc.List != "" && listsDir != "" {
				listPath := filepath.Join(listsDir, dc.List)
				results = append(results, checkResult{
					name: fmt.Sprintf("%s list (%s)", dc.Name, listPath),
					err:  checkFile(listPath),
				})
			}
		}
	}

	if transcribe != "" {
		results = append(results, checkResult{
			name: fmt.Sprintf("transcribe binary (%s)", transcribe),
			err:  transcriber.NewSubprocess(transcribe).Verify(),
		})
	}

	pass, fail := statusIcons(os.Stdout)
	failed := 0
	for _, r := range results {
		if r.err != nil {
			failed++
			fmt.Fprintf(out, "%s %s: %v\n", fail, r.name, r.err)
			continue
		}
		fmt.Fprintf(out, "%s %s\n", pass, r.name)
	}

	if failed > 0 {
		return fmt.Errorf("%d check(s) failed", failed)
	}
	fmt.Fprintf(out, "\nAll %d checks passed.\n", len(results))
	return nil
}

func checkDir(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("not a directory")
	}
	return nil
}

func checkFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("is a directory")
	}
	return nil
}

// statusIcons picks glyphs for terminals and plain markers for pipes.
func statusIcons(f *os.File) (pass, fail string) {
	if term.IsTerminal(int(f.Fd())) {
		return "✓", "✗"
	}
	return "OK:", "FAIL:"
}
