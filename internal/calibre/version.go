// file: internal/calibre/version.go
// version: 1.0.0
// guid: d3483d6d-2375-4dd0-9a17-4662692123be

package calibre

import "strings"

// VersionInfo holds the parsed Calibre version plus the raw tool output for
// callers that want the copyright banner.
type VersionInfo struct {
	Version string `json:"version"`
	Raw     string `json:"raw"`
}

// Version runs `calibre --version` and extracts the version number. Two output
// shapes are recognized: `calibre (calibre X.Y.Z)` and a bare `calibre X.Y.Z`
// prefix. When neither matches, Version falls back to the raw output.
func (t *Tools) Version() (VersionInfo, error) {
	res, err := t.runner.Run([]string{BinCalibre, "--version"}, t.timeouts.Query)
	if err != nil {
		return VersionInfo{}, err
	}
	if res.ExitCode != 0 {
		return VersionInfo{}, &ToolError{
			Message:  "Failed to get Calibre version.",
			Stdout:   res.Stdout,
			Stderr:   res.Stderr,
			ExitCode: res.ExitCode,
		}
	}
	return VersionInfo{Version: parseVersionOutput(res.Stdout), Raw: res.Stdout}, nil
}

func parseVersionOutput(stdout string) string {
	// Shape 1: "calibre (calibre 6.27.0)\nCopyright Kovid Goyal"
	if strings.Contains(stdout, "calibre (") && strings.Contains(stdout, ")") {
		if i := strings.Index(stdout, "calibre (calibre"); i >= 0 {
			rest := stdout[i+len("calibre (calibre"):]
			if j := strings.Index(rest, ")"); j >= 0 {
				return strings.TrimSpace(rest[:j])
			}
		}
		return stdout
	}
	// Shape 2: "calibre 6.27.0"
	if strings.HasPrefix(stdout, "calibre ") {
		return strings.TrimSpace(strings.TrimPrefix(stdout, "calibre "))
	}
	return stdout
}
