// file: internal/calibre/recipe.go
// version: 1.0.0
// guid: 546671c5-9dd6-4535-8b60-e8554880f4cf

package calibre

import (
	"log"
	"os"
	"strings"
)

// GenerateRecipe downloads a website with `web2disk` into a Calibre .recipe
// file. recipePath must carry the .recipe extension. A zero exit only counts
// when the recipe file exists and is non-empty — web2disk can exit 0 after
// writing nothing.
func (t *Tools) GenerateRecipe(url, recipePath string, options []string) (string, error) {
	if !strings.HasSuffix(recipePath, ".recipe") {
		return "", inputErrorf("output recipe file must end with '.recipe'")
	}

	argv := []string{BinWeb2Disk}
	argv = append(argv, options...)
	argv = append(argv, url, recipePath)

	res, err := t.runner.Run(argv, t.timeouts.Convert)
	if err != nil {
		return "", err
	}
	if res.ExitCode != 0 {
		return "", &ToolError{
			Message:  "web2disk failed for URL " + url + ".",
			Stdout:   res.Stdout,
			Stderr:   res.Stderr,
			ExitCode: res.ExitCode,
		}
	}

	info, err := os.Stat(recipePath)
	if err != nil || info.Size() == 0 {
		return "", &ToolError{
			Message:  "web2disk completed but recipe file " + recipePath + " was not created or is empty.",
			Stdout:   res.Stdout,
			Stderr:   res.Stderr,
			ExitCode: res.ExitCode,
		}
	}

	log.Printf("[INFO] web2disk successful. Recipe generated at: %s", recipePath)
	return recipePath, nil
}
