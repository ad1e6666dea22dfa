// file: internal/calibre/library.go
// version: 1.0.0
// guid: b16821c0-6736-42c1-9e84-ae666647467b

package calibre

import (
	"encoding/json"
	"log"
	"os"
	"strconv"
	"strings"
)

// Library scopes calibredb operations to one Calibre library. An empty path
// lets calibredb fall back to its configured default library.
type Library struct {
	tools *Tools
	path  string
}

// NewLibrary creates a Library facade over the given tools.
func NewLibrary(tools *Tools, path string) *Library {
	return &Library{tools: tools, path: path}
}

// Path returns the library path this facade targets ("" for the default).
func (l *Library) Path() string {
	return l.path
}

// ListRequest narrows a book listing.
type ListRequest struct {
	Search string
}

// List returns the library's books as decoded `calibredb list --for-machine`
// records. Empty stdout on a clean exit means an empty library, not an error.
func (l *Library) List(req ListRequest) ([]map[string]any, error) {
	argv := []string{BinCalibreDB, "list", "--for-machine"}
	if l.path != "" {
		argv = append(argv, "--with-library", l.path)
	}
	argv = append(argv, "--fields", "all")
	if req.Search != "" {
		argv = append(argv, "--search", req.Search)
	}

	res, err := l.tools.runner.Run(argv, l.tools.timeouts.Query)
	if err != nil {
		return nil, err
	}
	if res.ExitCode != 0 {
		return nil, &ToolError{
			Message:  "calibredb list command failed.",
			Stdout:   res.Stdout,
			Stderr:   res.Stderr,
			ExitCode: res.ExitCode,
		}
	}
	if res.Stdout == "" {
		return []map[string]any{}, nil
	}

	var books []map[string]any
	if err := json.Unmarshal([]byte(res.Stdout), &books); err != nil {
		return nil, &ToolError{
			Message:  "Failed to parse JSON output from calibredb list: " + err.Error(),
			Stdout:   res.Stdout,
			Stderr:   res.Stderr,
			ExitCode: res.ExitCode,
		}
	}
	return books, nil
}

// AddOptions tunes a calibredb add invocation. Authors and Tags take
// comma-separated values, matching the CLI's own `--metadata` syntax.
type AddOptions struct {
	OneBookPerDirectory bool
	Duplicates          bool
	Automerge           bool
	Title               string
	Authors             string
	Tags                string
}

// Add imports an e-book file into the library and returns the IDs calibredb
// assigned. calibredb announces results in a few different stdout shapes;
// every zero-exit shape maps to an ID list, possibly empty.
func (l *Library) Add(filePath string, opts AddOptions) ([]int, error) {
	if _, err := os.Stat(filePath); err != nil {
		return nil, inputErrorf("book file not found at: %s", filePath)
	}

	argv := []string{BinCalibreDB, "add"}
	if l.path != "" {
		argv = append(argv, "--with-library", l.path)
	}
	if opts.OneBookPerDirectory {
		argv = append(argv, "--one-book-per-directory")
	}
	if opts.Duplicates {
		argv = append(argv, "--duplicates")
	}
	if opts.Automerge {
		argv = append(argv, "--automerge")
	}

	var metadataOptions []string
	if opts.Title != "" {
		metadataOptions = append(metadataOptions, "title:"+opts.Title)
	}
	if opts.Authors != "" {
		metadataOptions = append(metadataOptions, "authors:"+opts.Authors)
	}
	if opts.Tags != "" {
		metadataOptions = append(metadataOptions, "tags:"+opts.Tags)
	}
	if len(metadataOptions) > 0 {
		argv = append(argv, "--metadata", strings.Join(metadataOptions, ","))
	}

	argv = append(argv, "--", filePath)

	res, err := l.tools.runner.Run(argv, l.tools.timeouts.Add)
	if err != nil {
		return nil, err
	}
	if res.ExitCode != 0 {
		return nil, &ToolError{
			Message:  "calibredb add command failed.",
			Stdout:   res.Stdout,
			Stderr:   res.Stderr,
			ExitCode: res.ExitCode,
		}
	}
	return parseAddedIDs(res.Stdout), nil
}

// parseAddedIDs extracts book IDs from calibredb add stdout. Recognized
// shapes: "Added book IDs: 5, 6", a single bare numeric ID, and the
// "No books added" marker. Anything else is an empty result with a warning.
func parseAddedIDs(stdout string) []int {
	output := strings.TrimSpace(stdout)
	ids := []int{}

	if idx := strings.Index(output, "Added book IDs:"); idx >= 0 {
		idsPart := output[idx+len("Added book IDs:"):]
		for _, field := range strings.Split(idsPart, ",") {
			field = strings.TrimSpace(field)
			if id, err := strconv.Atoi(field); err == nil {
				ids = append(ids, id)
			}
		}
		return ids
	}

	if id, err := strconv.Atoi(output); err == nil {
		return append(ids, id)
	}

	if strings.Contains(output, "No books added") {
		return ids
	}

	log.Printf("[WARN] Could not parse book IDs from calibredb add output: %s", output)
	return ids
}

// RemoveEntryError is one per-book failure inside a remove result.
type RemoveEntryError struct {
	ID    int    `json:"id"`
	Error string `json:"error"`
}

// RemoveResult is the structured payload of
// `calibredb remove_books --for-machine`. The tool exits 0 even when the book
// does not exist; callers inspect this payload rather than the exit code.
type RemoveResult struct {
	Ok         bool               `json:"ok"`
	NumRemoved int                `json:"num_removed"`
	RemovedIDs []int              `json:"removed_ids"`
	Errors     []RemoveEntryError `json:"errors,omitempty"`
}

// Removed reports whether the payload confirms the given book was deleted.
func (r RemoveResult) Removed(id int) bool {
	if !r.Ok || r.NumRemoved <= 0 {
		return false
	}
	for _, removed := range r.RemovedIDs {
		if removed == id {
			return true
		}
	}
	return false
}

// ErrorFor returns the tool's error message for the given book ID, if any.
func (r RemoveResult) ErrorFor(id int) (string, bool) {
	for _, e := range r.Errors {
		if e.ID == id {
			return e.Error, true
		}
	}
	return "", false
}

// Remove deletes a book from the library permanently.
func (l *Library) Remove(bookID int) (RemoveResult, error) {
	if bookID <= 0 {
		return RemoveResult{}, inputErrorf("book ID must be a positive integer, got %d", bookID)
	}

	argv := []string{BinCalibreDB, "remove_books", "--permanent", "--for-machine", strconv.Itoa(bookID)}
	if l.path != "" {
		argv = append(argv, "--with-library", l.path)
	}

	res, err := l.tools.runner.Run(argv, l.tools.timeouts.Query)
	if err != nil {
		return RemoveResult{}, err
	}
	if res.ExitCode != 0 {
		return RemoveResult{}, &ToolError{
			Message:  "calibredb remove_books command failed.",
			Stdout:   res.Stdout,
			Stderr:   res.Stderr,
			ExitCode: res.ExitCode,
		}
	}
	if res.Stdout == "" {
		return RemoveResult{}, &ToolError{
			Message:  "calibredb remove_books returned empty stdout despite --for-machine.",
			Stdout:   res.Stdout,
			Stderr:   res.Stderr,
			ExitCode: res.ExitCode,
		}
	}

	var result RemoveResult
	if err := json.Unmarshal([]byte(res.Stdout), &result); err != nil {
		return RemoveResult{}, &ToolError{
			Message:  "Failed to parse JSON output from calibredb remove_books: " + err.Error(),
			Stdout:   res.Stdout,
			Stderr:   res.Stderr,
			ExitCode: res.ExitCode,
		}
	}
	return result, nil
}

// SetFields carries the metadata fields to write with calibredb set_metadata.
// Pointer fields distinguish "not supplied" from a legitimate zero.
type SetFields struct {
	Title       string
	Authors     []string
	Publisher   string
	PubDate     string
	Tags        []string
	Series      string
	SeriesIndex *float64
	ISBN        string
	Comments    string
	Rating      *float64
}

// args serializes the supplied fields as field:value CLI arguments in a
// fixed order so repeated calls build identical command lines.
func (f SetFields) args() []string {
	var args []string
	if f.Title != "" {
		args = append(args, "title:"+f.Title)
	}
	if len(f.Authors) > 0 {
		args = append(args, "authors:"+strings.Join(f.Authors, ","))
	}
	if f.Publisher != "" {
		args = append(args, "publisher:"+f.Publisher)
	}
	if f.PubDate != "" {
		args = append(args, "pubdate:"+f.PubDate)
	}
	if len(f.Tags) > 0 {
		args = append(args, "tags:"+strings.Join(f.Tags, ","))
	}
	if f.Series != "" {
		args = append(args, "series:"+f.Series)
	}
	if f.SeriesIndex != nil {
		args = append(args, "series_index:"+formatCalibreFloat(*f.SeriesIndex))
	}
	if f.ISBN != "" {
		args = append(args, "isbn:"+f.ISBN)
	}
	if f.Comments != "" {
		args = append(args, "comments:"+f.Comments)
	}
	if f.Rating != nil {
		args = append(args, "rating:"+formatCalibreFloat(*f.Rating))
	}
	return args
}

// formatCalibreFloat renders a float the way calibredb prints them, keeping a
// trailing .0 on whole numbers.
func formatCalibreFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// SetMetadata updates a book's metadata and returns the changed fields as
// reported by `calibredb set_metadata --for-machine`. An empty map means the
// book was not found or nothing changed; the CLI signals that condition
// inconsistently (empty JSON on exit 0, or a "No book with id" complaint on
// stderr with a non-zero exit) and both forms collapse into the same result.
func (l *Library) SetMetadata(bookID int, fields SetFields) (map[string]any, error) {
	if bookID <= 0 {
		return nil, inputErrorf("book ID must be a positive integer, got %d", bookID)
	}
	fieldArgs := fields.args()
	if len(fieldArgs) == 0 {
		return nil, inputErrorf("no metadata fields provided to set")
	}

	argv := []string{BinCalibreDB, "set_metadata", "--for-machine", strconv.Itoa(bookID)}
	argv = append(argv, fieldArgs...)
	if l.path != "" {
		argv = append(argv, "--with-library", l.path)
	}

	res, err := l.tools.runner.Run(argv, l.tools.timeouts.Query)
	if err != nil {
		return nil, err
	}
	if res.ExitCode != 0 {
		if strings.Contains(res.Stderr, "No book with id") {
			log.Printf("[INFO] calibredb set_metadata reported no book with ID %d.", bookID)
			return map[string]any{}, nil
		}
		return nil, &ToolError{
			Message:  "calibredb set_metadata command failed.",
			Stdout:   res.Stdout,
			Stderr:   res.Stderr,
			ExitCode: res.ExitCode,
		}
	}
	if res.Stdout == "" {
		return map[string]any{}, nil
	}

	var changed map[string]any
	if err := json.Unmarshal([]byte(res.Stdout), &changed); err != nil {
		return nil, &ToolError{
			Message:  "Failed to parse JSON output from calibredb set_metadata: " + err.Error(),
			Stdout:   res.Stdout,
			Stderr:   res.Stderr,
			ExitCode: res.ExitCode,
		}
	}
	if changed == nil {
		changed = map[string]any{}
	}
	return changed, nil
}
