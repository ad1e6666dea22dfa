// file: internal/calibre/polish.go
// version: 1.0.0
// guid: e5a22a1e-8060-4d3e-9606-455cb31bc6f9

package calibre

import (
	"log"
	"os"
)

// Polish runs `ebook-polish` on inputPath. With an outputPath the polished
// book is written there; without one the tool rewrites the input file, which
// is only permitted when allowInPlace is set — otherwise the call is rejected
// before any process runs. The returned path is wherever the polished book
// ended up, re-verified on disk after a zero exit.
func (t *Tools) Polish(inputPath, outputPath string, options []string, allowInPlace bool) (string, error) {
	if _, err := os.Stat(inputPath); err != nil {
		return "", inputErrorf("e-book file not found: %s", inputPath)
	}

	argv := []string{BinEbookPolish}
	resultPath := inputPath

	switch {
	case outputPath != "":
		argv = append(argv, inputPath, outputPath)
		resultPath = outputPath
	case allowInPlace:
		argv = append(argv, inputPath)
	default:
		return "", inputErrorf("output path must be provided when in-place polishing is not allowed")
	}
	argv = append(argv, options...)

	res, err := t.runner.Run(argv, t.timeouts.Convert)
	if err != nil {
		return "", err
	}
	if res.ExitCode != 0 {
		return "", &ToolError{
			Message:  "ebook-polish failed for " + inputPath + ".",
			Stdout:   res.Stdout,
			Stderr:   res.Stderr,
			ExitCode: res.ExitCode,
		}
	}

	if _, err := os.Stat(resultPath); err != nil {
		return "", &ToolError{
			Message:  "ebook-polish completed but output file " + resultPath + " was not created.",
			Stdout:   res.Stdout,
			Stderr:   res.Stderr,
			ExitCode: res.ExitCode,
		}
	}

	log.Printf("[INFO] ebook-polish successful for %s. Output at: %s", inputPath, resultPath)
	return resultPath, nil
}
