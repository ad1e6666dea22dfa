// file: internal/calibre/plugins.go
// version: 1.0.0
// guid: 206ff2f7-9715-483c-ae79-18e2ce0b58f2

package calibre

import (
	"log"
	"strings"
)

// Plugin is one installed Calibre plugin as reported by calibre-customize.
type Plugin struct {
	Name        string `json:"name"`
	Version     string `json:"version,omitempty"`
	Author      string `json:"author,omitempty"`
	Description string `json:"description,omitempty"`
}

// ListPlugins runs `calibre-customize --list-plugins` and parses the
// semi-structured listing. An un-indented line opens a new plugin record
// (`Name (version) by Author`, version and author optional); indented lines
// accumulate into that plugin's description. Output that yields no records
// despite being non-empty is a soft condition: a warning is logged and an
// empty list returned.
func (t *Tools) ListPlugins() ([]Plugin, error) {
	res, err := t.runner.Run([]string{BinCalibreCustomize, "--list-plugins"}, t.timeouts.Query)
	if err != nil {
		return nil, err
	}
	if res.ExitCode != 0 {
		return nil, &ToolError{
			Message:  "Failed to list Calibre plugins.",
			Stdout:   res.Stdout,
			Stderr:   res.Stderr,
			ExitCode: res.ExitCode,
		}
	}

	plugins := parsePluginList(res.Stdout)
	if len(plugins) == 0 {
		if res.Stdout != "" {
			log.Printf("[WARN] Could not parse plugin list from calibre-customize output, but got output:\n%s", res.Stdout)
		} else {
			log.Printf("[INFO] No plugins listed by calibre-customize.")
		}
	}
	return plugins, nil
}

func parsePluginList(stdout string) []Plugin {
	var plugins []Plugin
	var descParts []string

	flush := func() {
		if len(plugins) == 0 {
			descParts = nil
			return
		}
		if len(descParts) > 0 {
			plugins[len(plugins)-1].Description = strings.TrimSpace(strings.Join(descParts, "\n"))
		}
		descParts = nil
	}

	for _, raw := range strings.Split(stdout, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		indented := strings.HasPrefix(raw, " ") || strings.HasPrefix(raw, "\t")
		if indented {
			if len(plugins) > 0 {
				descParts = append(descParts, line)
			}
			continue
		}

		flush()
		plugins = append(plugins, parsePluginHeader(line))
	}
	flush()

	return plugins
}

// parsePluginHeader splits `Name (version) by Author`. Every part after the
// name is optional; a malformed header still yields a record with just the
// name.
func parsePluginHeader(line string) Plugin {
	p := Plugin{Name: line}

	open := strings.Index(line, "(")
	if open < 0 {
		return p
	}
	p.Name = strings.TrimSpace(line[:open])

	rest := line[open+1:]
	closing := strings.Index(rest, ")")
	if closing < 0 {
		p.Version = strings.TrimSpace(rest)
		return p
	}
	p.Version = strings.TrimSpace(rest[:closing])

	tail := rest[closing+1:]
	if i := strings.Index(tail, " by "); i >= 0 {
		p.Author = strings.TrimSpace(tail[i+len(" by "):])
	}
	return p
}
