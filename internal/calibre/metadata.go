// file: internal/calibre/metadata.go
// version: 1.1.0
// guid: 30384c08-e77a-45fb-a4b3-3c5651965b00

package calibre

import (
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/oklog/ulid/v2"
)

// ReadMetadata reads a standalone e-book's metadata with `ebook-meta` and
// returns the OPF content the tool printed to stdout.
func (t *Tools) ReadMetadata(path string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		return "", inputErrorf("e-book file not found: %s", path)
	}

	res, err := t.runner.Run([]string{BinEbookMeta, path}, t.timeouts.Query)
	if err != nil {
		return "", err
	}
	if res.ExitCode != 0 {
		return "", metaReadError(path, res)
	}
	return res.Stdout, nil
}

// ReadMetadataToOPF reads a standalone e-book's metadata and writes it to
// opfDest via `--to-opf`. The tool prints nothing to stdout in this mode, so
// success is confirmed by the destination file existing afterwards.
func (t *Tools) ReadMetadataToOPF(path, opfDest string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		return "", inputErrorf("e-book file not found: %s", path)
	}

	res, err := t.runner.Run([]string{BinEbookMeta, path, "--to-opf", opfDest}, t.timeouts.Query)
	if err != nil {
		return "", err
	}
	if res.ExitCode != 0 {
		return "", metaReadError(path, res)
	}
	if _, err := os.Stat(opfDest); err != nil {
		return "", &ToolError{
			Message:  "ebook-meta ran but OPF file " + opfDest + " was not created.",
			Stdout:   res.Stdout,
			Stderr:   res.Stderr,
			ExitCode: res.ExitCode,
		}
	}
	return opfDest, nil
}

// ReadMetadataParsed reads a standalone e-book's metadata as a structured map.
// ebook-meta has no JSON mode, so the metadata goes through a transient OPF
// file in the work dir which is removed afterwards regardless of outcome.
func (t *Tools) ReadMetadataParsed(path string) (Metadata, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, inputErrorf("e-book file not found: %s", path)
	}

	opfPath := t.transientOPFPath()
	defer removeIfExists(opfPath)

	res, err := t.runner.Run([]string{BinEbookMeta, path, "--to-opf", opfPath}, t.timeouts.Query)
	if err != nil {
		return nil, err
	}
	if res.ExitCode != 0 {
		return nil, metaReadError(path, res)
	}

	return parseOPFFile(opfPath, res)
}

// SetFileMetadata writes metadata fields to a standalone e-book file. options
// carries ebook-meta flags such as `--title`, `New Title`. An empty option
// list is rejected before the tool runs. Both "changed" and "no changes" are
// success; the returned text is whatever the tool printed, or a synthesized
// confirmation when it printed nothing.
func (t *Tools) SetFileMetadata(path string, options []string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		return "", inputErrorf("e-book file not found: %s", path)
	}
	if len(options) == 0 {
		return "", inputErrorf("metadata options cannot be empty")
	}

	argv := append([]string{BinEbookMeta, path}, options...)
	res, err := t.runner.Run(argv, t.timeouts.Query)
	if err != nil {
		return "", err
	}
	if res.ExitCode != 0 {
		return "", &ToolError{
			Message:  "ebook-meta failed to set metadata for " + path + ".",
			Stdout:   res.Stdout,
			Stderr:   res.Stderr,
			ExitCode: res.ExitCode,
		}
	}

	log.Printf("[INFO] ebook-meta set metadata for %s. Output: %s", path, res.Stdout)
	if res.Stdout == "" {
		return "Metadata setting command executed.", nil
	}
	return res.Stdout, nil
}

// ExtractCover pulls the embedded cover image out of an e-book via
// `ebook-meta --get-cover`. The tool exits 0 even for books without a cover,
// so the destination file must exist afterwards for this to count as success.
func (t *Tools) ExtractCover(path, coverDest string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		return "", inputErrorf("e-book file not found: %s", path)
	}

	res, err := t.runner.Run([]string{BinEbookMeta, path, "--get-cover", coverDest}, t.timeouts.Query)
	if err != nil {
		return "", err
	}
	if res.ExitCode != 0 {
		return "", &ToolError{
			Message:  "ebook-meta failed to extract cover from " + path + ".",
			Stdout:   res.Stdout,
			Stderr:   res.Stderr,
			ExitCode: res.ExitCode,
		}
	}
	if _, err := os.Stat(coverDest); err != nil {
		return "", &ToolError{
			Message:  "ebook-meta ran but no cover was written for " + path + ". The book may not have a cover.",
			Stdout:   res.Stdout,
			Stderr:   res.Stderr,
			ExitCode: res.ExitCode,
		}
	}
	return coverDest, nil
}

func (t *Tools) transientOPFPath() string {
	return filepath.Join(t.workDir, "meta-"+strings.ToLower(ulid.Make().String())+".opf")
}

// parseOPFFile reads and parses a tool-written OPF file, enforcing that the
// tool actually produced non-empty content despite its zero exit.
func parseOPFFile(opfPath string, res Result) (Metadata, error) {
	info, err := os.Stat(opfPath)
	if err != nil || info.Size() == 0 {
		return nil, &ToolError{
			Message:  "tool ran but OPF file " + opfPath + " was not created or is empty.",
			Stdout:   res.Stdout,
			Stderr:   res.Stderr,
			ExitCode: res.ExitCode,
		}
	}

	content, err := os.ReadFile(opfPath)
	if err != nil {
		return nil, &ToolError{
			Message:  "failed to read OPF file " + opfPath + ": " + err.Error(),
			Stderr:   res.Stderr,
			ExitCode: res.ExitCode,
		}
	}

	md, err := ParseOPF(content)
	if err != nil {
		return nil, &ToolError{
			Message:  err.Error(),
			Stdout:   string(content),
			ExitCode: res.ExitCode,
		}
	}
	return md, nil
}

func metaReadError(path string, res Result) *ToolError {
	return &ToolError{
		Message:  "ebook-meta failed to read metadata from " + path + ".",
		Stdout:   res.Stdout,
		Stderr:   res.Stderr,
		ExitCode: res.ExitCode,
	}
}

func removeIfExists(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.Printf("[WARN] Failed to remove transient file %s: %v", path, err)
	}
}
