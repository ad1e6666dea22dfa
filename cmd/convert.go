// file: cmd/convert.go
// version: 1.0.0
// guid: 2619a339-cfc7-420b-ad57-832f7146e9cb

package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/google/shlex"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/jdfalk/calibre-api/internal/calibre"
	"github.com/jdfalk/calibre-api/internal/watcher"
)

// convertCmd represents the convert command
var convertCmd = &cobra.Command{
	Use:   "convert <input-dir>",
	Short: "Batch-convert every e-book in a directory",
	Long: `Convert all e-book files in a directory to the target format using
ebook-convert. Files already in the target format are skipped. Failures are
collected and reported at the end without stopping the batch.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("to")
		outDir, _ := cmd.Flags().GetString("out")
		options, _ := cmd.Flags().GetString("options")
		workers, _ := cmd.Flags().GetInt("workers")
		return runBatchConvert(toolsFactory(), args[0], outDir, format, options, workers)
	},
}

func init() {
	convertCmd.Flags().String("to", "", "target format, e.g. epub, mobi, pdf (required)")
	convertCmd.Flags().String("out", "", "output directory (default: the input directory)")
	convertCmd.Flags().String("options", "", "extra ebook-convert options, e.g. \"--embed-all-fonts\"")
	convertCmd.Flags().Int("workers", 2, "number of parallel conversions")
	convertCmd.MarkFlagRequired("to")
}

func runBatchConvert(tools *calibre.Tools, inputDir, outDir, format, rawOptions string, workers int) error {
	format = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(format)), ".")
	if format == "" {
		return fmt.Errorf("target format must not be empty")
	}
	if workers < 1 {
		workers = 1
	}

	options, err := shlex.Split(rawOptions)
	if err != nil {
		return fmt.Errorf("could not parse options: %w", err)
	}

	if outDir == "" {
		outDir = inputDir
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	files, err := collectBooks(inputDir, format)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Println("No e-book files to convert.")
		return nil
	}

	fmt.Printf("Converting %d files to %s (using %d workers)...\n", len(files), format, workers)

	bar := progressbar.Default(int64(len(files)))

	// Worker pool for parallel conversions
	var wg sync.WaitGroup
	semaphore := make(chan struct{}, workers)

	var mu sync.Mutex
	var failures []string

	for _, file := range files {
		wg.Add(1)
		go func(in string) {
			defer wg.Done()
			semaphore <- struct{}{} // Acquire
			defer func() {
				<-semaphore // Release
				bar.Add(1)
			}()

			base := filepath.Base(in)
			out := filepath.Join(outDir, strings.TrimSuffix(base, filepath.Ext(base))+"."+format)

			if _, err := tools.Convert(in, out, options); err != nil {
				mu.Lock()
				failures = append(failures, fmt.Sprintf("%s: %v", base, err))
				mu.Unlock()
			}
		}(file)
	}
	wg.Wait()

	if len(failures) > 0 {
		sort.Strings(failures)
		fmt.Printf("\n%d conversion(s) failed:\n", len(failures))
		for _, f := range failures {
			fmt.Printf("  - %s\n", f)
		}
		return fmt.Errorf("%d of %d conversions failed", len(failures), len(files))
	}

	fmt.Printf("Converted %d files to %s\n", len(files), outDir)
	return nil
}

// collectBooks lists the e-book files directly inside dir, excluding any
// already in the target format.
func collectBooks(dir, format string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read input directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !watcher.IsBookFile(entry.Name()) {
			continue
		}
		if strings.EqualFold(strings.TrimPrefix(filepath.Ext(entry.Name()), "."), format) {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(files)
	return files, nil
}
