// file: internal/calibre/convert.go
// version: 1.0.0
// guid: 0f3191a9-d325-4761-857f-26bdcb5d85f8

package calibre

import (
	"log"
	"os"
)

// Convert runs `ebook-convert` from inputPath to outputPath with any extra
// tool options appended. The input must exist before the tool is invoked, and
// a zero exit is only trusted when the output file actually appeared on disk.
func (t *Tools) Convert(inputPath, outputPath string, options []string) (string, error) {
	if _, err := os.Stat(inputPath); err != nil {
		return "", inputErrorf("input file not found: %s", inputPath)
	}

	argv := []string{BinEbookConvert, inputPath, outputPath}
	argv = append(argv, options...)

	res, err := t.runner.Run(argv, t.timeouts.Convert)
	if err != nil {
		return "", err
	}
	if res.ExitCode != 0 {
		return "", &ToolError{
			Message:  "ebook-convert failed for " + inputPath + " to " + outputPath + ".",
			Stdout:   res.Stdout,
			Stderr:   res.Stderr,
			ExitCode: res.ExitCode,
		}
	}

	// ebook-convert can exit 0 without producing the file.
	if _, err := os.Stat(outputPath); err != nil {
		return "", &ToolError{
			Message:  "ebook-convert completed but output file " + outputPath + " was not created.",
			Stdout:   res.Stdout,
			Stderr:   res.Stderr,
			ExitCode: res.ExitCode,
		}
	}

	log.Printf("[INFO] ebook-convert successful: %s -> %s", inputPath, outputPath)
	return outputPath, nil
}
