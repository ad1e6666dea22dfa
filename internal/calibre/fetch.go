// file: internal/calibre/fetch.go
// version: 1.1.0
// guid: 265f9a1d-9047-4de1-935f-36c747aedd47

package calibre

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

// FetchRequest describes an online metadata lookup. At least one of Title,
// Authors, ISBN or Identifiers must be set.
type FetchRequest struct {
	Title       string
	Authors     string // comma-separated author names
	ISBN        string
	Identifiers map[string]string // e.g. {"goodreads": "12345"}
	Timeout     time.Duration     // passed to the tool's own --timeout flag
}

// FetchResult carries the outcome of a metadata fetch. Found reports whether
// the tool located anything: fetch-ebook-metadata exits non-zero with a
// "No metadata found" diagnostic for an unknown book, which is a business
// outcome here, not an error.
type FetchResult struct {
	Found    bool
	Metadata Metadata
	OPF      string
}

// FetchMetadata looks a book up online and returns parsed metadata. The tool
// writes OPF to a transient file in the work dir which is parsed and removed
// afterwards.
func (t *Tools) FetchMetadata(req FetchRequest) (FetchResult, error) {
	argv, timeout, err := t.buildFetchArgv(req)
	if err != nil {
		return FetchResult{}, err
	}

	opfPath := t.transientOPFPath()
	defer removeIfExists(opfPath)
	argv = append(argv, "--opf", opfPath)

	res, err := t.runner.Run(argv, timeout)
	if err != nil {
		return FetchResult{}, err
	}
	if res.ExitCode != 0 {
		if isNoMetadataFound(res) {
			return FetchResult{Found: false}, nil
		}
		return FetchResult{}, fetchError(res)
	}

	md, err := parseOPFFile(opfPath, res)
	if err != nil {
		return FetchResult{}, err
	}
	return FetchResult{Found: true, Metadata: md}, nil
}

// FetchMetadataRaw looks a book up online and returns the OPF document the
// tool printed to stdout.
func (t *Tools) FetchMetadataRaw(req FetchRequest) (FetchResult, error) {
	argv, timeout, err := t.buildFetchArgv(req)
	if err != nil {
		return FetchResult{}, err
	}

	res, err := t.runner.Run(argv, timeout)
	if err != nil {
		return FetchResult{}, err
	}
	if res.ExitCode != 0 {
		if isNoMetadataFound(res) {
			return FetchResult{Found: false}, nil
		}
		return FetchResult{}, fetchError(res)
	}

	if res.Stdout == "" {
		return FetchResult{}, &ToolError{
			Message:  "fetch-ebook-metadata returned success but no OPF content in stdout.",
			Stderr:   res.Stderr,
			ExitCode: res.ExitCode,
		}
	}
	return FetchResult{Found: true, OPF: res.Stdout}, nil
}

// buildFetchArgv validates the search criteria and assembles the argument
// vector. The process timeout gets a buffer on top of the tool's own network
// timeout so the tool can report its result before we kill it.
func (t *Tools) buildFetchArgv(req FetchRequest) ([]string, time.Duration, error) {
	if req.Title == "" && req.Authors == "" && req.ISBN == "" && len(req.Identifiers) == 0 {
		return nil, 0, inputErrorf("at least one of title, authors, isbn, or identifiers must be provided for fetching metadata")
	}

	toolTimeout := req.Timeout
	if toolTimeout <= 0 {
		toolTimeout = t.timeouts.Fetch
	}

	argv := []string{BinFetchMetadata}
	// Search strings go out NFC-composed so accented queries match provider
	// indexes.
	if req.Title != "" {
		argv = append(argv, "--title", norm.NFC.String(req.Title))
	}
	for _, author := range strings.Split(req.Authors, ",") {
		author = strings.TrimSpace(author)
		if author != "" {
			argv = append(argv, "--authors", norm.NFC.String(author))
		}
	}
	if req.ISBN != "" {
		argv = append(argv, "--isbn", req.ISBN)
	}
	sites := make([]string, 0, len(req.Identifiers))
	for site := range req.Identifiers {
		sites = append(sites, site)
	}
	sort.Strings(sites)
	for _, site := range sites {
		argv = append(argv, "--identifier", site+":"+req.Identifiers[site])
	}
	argv = append(argv, "--timeout", strconv.Itoa(int(toolTimeout.Seconds())))

	return argv, toolTimeout + 10*time.Second, nil
}

func isNoMetadataFound(res Result) bool {
	return strings.Contains(res.Stderr, "No metadata found") ||
		strings.Contains(res.Stdout, "No metadata found")
}

func fetchError(res Result) *ToolError {
	return &ToolError{
		Message:  "fetch-ebook-metadata command failed.",
		Stdout:   res.Stdout,
		Stderr:   res.Stderr,
		ExitCode: res.ExitCode,
	}
}
