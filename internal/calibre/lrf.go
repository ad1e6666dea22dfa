// file: internal/calibre/lrf.go
// version: 1.0.0
// guid: 9c8e6ca6-c892-4e8d-b786-ac87bc44d3c4

package calibre

import (
	"log"
	"os"
)

// LRFToLRS converts a Sony LRF e-book to its LRS source form.
func (t *Tools) LRFToLRS(inputPath, outputPath string) (string, error) {
	return t.runLRFConversion(BinLRF2LRS, inputPath, outputPath)
}

// LRSToLRF compiles an LRS source file back into an LRF e-book.
func (t *Tools) LRSToLRF(inputPath, outputPath string) (string, error) {
	return t.runLRFConversion(BinLRS2LRF, inputPath, outputPath)
}

func (t *Tools) runLRFConversion(tool, inputPath, outputPath string) (string, error) {
	if _, err := os.Stat(inputPath); err != nil {
		return "", inputErrorf("input file not found: %s", inputPath)
	}

	res, err := t.runner.Run([]string{tool, inputPath, outputPath}, t.timeouts.LRF)
	if err != nil {
		return "", err
	}
	if res.ExitCode != 0 {
		return "", &ToolError{
			Message:  tool + " failed for " + inputPath + " to " + outputPath + ".",
			Stdout:   res.Stdout,
			Stderr:   res.Stderr,
			ExitCode: res.ExitCode,
		}
	}
	if _, err := os.Stat(outputPath); err != nil {
		return "", &ToolError{
			Message:  tool + " completed but output file " + outputPath + " was not created.",
			Stdout:   res.Stdout,
			Stderr:   res.Stderr,
			ExitCode: res.ExitCode,
		}
	}

	log.Printf("[INFO] %s successful: %s -> %s", tool, inputPath, outputPath)
	return outputPath, nil
}
