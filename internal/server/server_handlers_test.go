// file: internal/server/server_handlers_test.go
// version: 1.0.0
// guid: d5f0d1c6-d368-46c0-9922-c33dfd55c5a0

package server

import (
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/jdfalk/calibre-api/internal/calibre"
)

const handlerTestOPF = `<?xml version='1.0' encoding='utf-8'?>
<package xmlns="http://www.idpf.org/2007/opf" version="2.0">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/">
    <dc:title>Dune</dc:title>
    <dc:creator>Frank Herbert</dc:creator>
    <dc:language>en</dc:language>
  </metadata>
</package>`

// writesFile returns a runner fn that writes content at the argv position
// resolved by pick, then reports success.
func writesFile(t *testing.T, pick func(argv []string) string, content []byte) func([]string, time.Duration) (calibre.Result, error) {
	return func(argv []string, _ time.Duration) (calibre.Result, error) {
		dest := pick(argv)
		if dest == "" {
			t.Fatalf("could not locate output path in argv: %v", argv)
		}
		if err := os.WriteFile(dest, content, 0o644); err != nil {
			t.Fatalf("fake tool failed to write %s: %v", dest, err)
		}
		return calibre.Result{}, nil
	}
}

func TestConvertBook(t *testing.T) {
	runner := &scriptRunner{}
	runner.fn = writesFile(t, func(argv []string) string { return argv[2] }, []byte("mobi-bytes"))
	srv, _ := newTestServer(t, runner)

	req := multipartRequest(t, "POST", "/api/v1/convert",
		map[string]string{"output_format": "mobi"},
		"book.epub", []byte("epub-bytes"))
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp ConvertResponse
	decodeJSON(t, w, &resp)
	if !strings.HasSuffix(resp.OutputFilename, "_book.mobi") {
		t.Errorf("expected output name ending _book.mobi, got %q", resp.OutputFilename)
	}

	// The produced artifact is retrievable through the downloads route.
	w = httptest.NewRecorder()
	dlReq, _ := http.NewRequest("GET", "/api/v1/downloads/"+resp.OutputFilename, nil)
	srv.Router().ServeHTTP(w, dlReq)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 downloading artifact, got %d", w.Code)
	}
	if w.Body.String() != "mobi-bytes" {
		t.Errorf("unexpected artifact content: %q", w.Body.String())
	}
}

func TestConvertBook_MissingFormat(t *testing.T) {
	runner := &scriptRunner{fn: func(argv []string, _ time.Duration) (calibre.Result, error) {
		return calibre.Result{}, nil
	}}
	srv, _ := newTestServer(t, runner)

	req := multipartRequest(t, "POST", "/api/v1/convert", nil, "book.epub", []byte("x"))
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 without output_format, got %d", w.Code)
	}
	if runner.callCount() != 0 {
		t.Errorf("expected no tool invocation, got %d", runner.callCount())
	}
}

func TestConvertBook_OptionsShlexSplit(t *testing.T) {
	runner := &scriptRunner{}
	runner.fn = writesFile(t, func(argv []string) string { return argv[2] }, []byte("out"))
	srv, _ := newTestServer(t, runner)

	req := multipartRequest(t, "POST", "/api/v1/convert",
		map[string]string{
			"output_format": "pdf",
			"options":       `--embed-font-family "Liberation Serif" --margin-top 20`,
		},
		"book.epub", []byte("x"))
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	argv := runner.calls[0]
	joined := strings.Join(argv, "\x00")
	if !strings.Contains(joined, "\x00Liberation Serif\x00") {
		t.Errorf("expected quoted option to survive as one argv word, got %v", argv)
	}
	if argAfter(argv, "--margin-top") != "20" {
		t.Errorf("expected --margin-top 20 in argv, got %v", argv)
	}
}

func TestConvertBook_OutputNotCreated(t *testing.T) {
	runner := &scriptRunner{fn: func(argv []string, _ time.Duration) (calibre.Result, error) {
		return calibre.Result{}, nil // zero exit, no file written
	}}
	srv, _ := newTestServer(t, runner)

	req := multipartRequest(t, "POST", "/api/v1/convert",
		map[string]string{"output_format": "mobi"}, "book.epub", []byte("x"))
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500 when the tool produced nothing, got %d", w.Code)
	}
}

func TestPolishBook(t *testing.T) {
	runner := &scriptRunner{}
	runner.fn = writesFile(t, func(argv []string) string { return argv[2] }, []byte("polished"))
	srv, _ := newTestServer(t, runner)

	req := multipartRequest(t, "POST", "/api/v1/polish",
		map[string]string{"options": "--subset-fonts"},
		"book.epub", []byte("x"))
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp ConvertResponse
	decodeJSON(t, w, &resp)
	if !strings.HasSuffix(resp.OutputFilename, "_book_polished.epub") {
		t.Errorf("expected default _polished suffix, got %q", resp.OutputFilename)
	}

	argv := runner.calls[0]
	if argv[0] != "ebook-polish" {
		t.Errorf("unexpected tool: %v", argv)
	}
	if argv[len(argv)-1] != "--subset-fonts" {
		t.Errorf("expected options after the paths, got %v", argv)
	}
}

func TestLRFRoundtripRoutes(t *testing.T) {
	for _, tc := range []struct {
		route   string
		tool    string
		wantExt string
	}{
		{"/api/v1/lrf2lrs", "lrf2lrs", ".lrs"},
		{"/api/v1/lrs2lrf", "lrs2lrf", ".lrf"},
	} {
		t.Run(tc.tool, func(t *testing.T) {
			runner := &scriptRunner{}
			runner.fn = writesFile(t, func(argv []string) string { return argv[2] }, []byte("converted"))
			srv, _ := newTestServer(t, runner)

			req := multipartRequest(t, "POST", tc.route, nil, "book.src", []byte("x"))
			w := httptest.NewRecorder()
			srv.Router().ServeHTTP(w, req)

			if w.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
			}

			var resp ConvertResponse
			decodeJSON(t, w, &resp)
			if !strings.HasSuffix(resp.OutputFilename, "_book"+tc.wantExt) {
				t.Errorf("expected output ending _book%s, got %q", tc.wantExt, resp.OutputFilename)
			}
			if runner.calls[0][0] != tc.tool {
				t.Errorf("expected %s invocation, got %v", tc.tool, runner.calls[0])
			}
		})
	}
}

func TestCheckBookRoute(t *testing.T) {
	t.Run("json report", func(t *testing.T) {
		runner := &scriptRunner{fn: func(argv []string, _ time.Duration) (calibre.Result, error) {
			return calibre.Result{Stdout: `{"book.epub": [{"level": 0, "msg": "ok"}]}`}, nil
		}}
		srv, _ := newTestServer(t, runner)

		req := multipartRequest(t, "POST", "/api/v1/books/check", nil, "book.epub", []byte("x"))
		w := httptest.NewRecorder()
		srv.Router().ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var resp CheckResponse
		decodeJSON(t, w, &resp)
		if resp.ReportFormat != "json" {
			t.Errorf("expected json report format, got %q", resp.ReportFormat)
		}
		if resp.Filename != "book.epub" {
			t.Errorf("expected original filename, got %q", resp.Filename)
		}
		report, ok := resp.Report.(map[string]any)
		if !ok || len(report) != 1 {
			t.Errorf("expected decoded report object, got %T %v", resp.Report, resp.Report)
		}

		argv := runner.calls[0]
		if argv[0] != "ebook-edit" || argv[1] != "--check-book" {
			t.Errorf("unexpected argv: %v", argv)
		}
		if !strings.Contains(strings.Join(argv, " "), "--output-format=json") {
			t.Errorf("expected JSON output flag, got %v", argv)
		}
	})

	t.Run("text report", func(t *testing.T) {
		runner := &scriptRunner{fn: func(argv []string, _ time.Duration) (calibre.Result, error) {
			return calibre.Result{Stdout: "No problems found"}, nil
		}}
		srv, _ := newTestServer(t, runner)

		req := multipartRequest(t, "POST", "/api/v1/books/check",
			map[string]string{"format": "text"}, "book.epub", []byte("x"))
		w := httptest.NewRecorder()
		srv.Router().ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}

		var resp CheckResponse
		decodeJSON(t, w, &resp)
		if resp.Report != "No problems found" {
			t.Errorf("expected text report passthrough, got %v", resp.Report)
		}
	})

	t.Run("bad format", func(t *testing.T) {
		runner := &scriptRunner{fn: func(argv []string, _ time.Duration) (calibre.Result, error) {
			return calibre.Result{}, nil
		}}
		srv, _ := newTestServer(t, runner)

		req := multipartRequest(t, "POST", "/api/v1/books/check",
			map[string]string{"format": "xml"}, "book.epub", []byte("x"))
		w := httptest.NewRecorder()
		srv.Router().ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("expected 400 for unknown format, got %d", w.Code)
		}
	})
}

func TestReadFileMetadata(t *testing.T) {
	t.Run("parsed", func(t *testing.T) {
		runner := &scriptRunner{}
		runner.fn = writesFile(t, func(argv []string) string {
			return argAfter(argv, "--to-opf")
		}, []byte(handlerTestOPF))
		srv, _ := newTestServer(t, runner)

		req := multipartRequest(t, "POST", "/api/v1/metadata/file", nil, "book.epub", []byte("x"))
		w := httptest.NewRecorder()
		srv.Router().ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var resp struct {
			Metadata map[string]any `json:"metadata_content"`
		}
		decodeJSON(t, w, &resp)
		if resp.Metadata["title"] != "Dune" {
			t.Errorf("expected parsed title Dune, got %v", resp.Metadata)
		}
	})

	t.Run("raw", func(t *testing.T) {
		runner := &scriptRunner{fn: func(argv []string, _ time.Duration) (calibre.Result, error) {
			return calibre.Result{Stdout: "Title : Dune\nAuthor(s) : Frank Herbert"}, nil
		}}
		srv, _ := newTestServer(t, runner)

		req := multipartRequest(t, "POST", "/api/v1/metadata/file?as_json=false", nil, "book.epub", []byte("x"))
		w := httptest.NewRecorder()
		srv.Router().ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}

		var resp struct {
			Metadata string `json:"metadata_content"`
		}
		decodeJSON(t, w, &resp)
		if !strings.Contains(resp.Metadata, "Title") {
			t.Errorf("expected raw tool output, got %q", resp.Metadata)
		}

		// Raw mode must not use the OPF detour.
		if argAfter(runner.calls[0], "--to-opf") != "" {
			t.Errorf("expected plain read argv, got %v", runner.calls[0])
		}
	})
}

func TestWriteFileMetadata(t *testing.T) {
	runner := &scriptRunner{fn: func(argv []string, _ time.Duration) (calibre.Result, error) {
		return calibre.Result{Stdout: "Field title updated"}, nil
	}}
	srv, _ := newTestServer(t, runner)

	req := multipartRequest(t, "PUT", "/api/v1/metadata/file",
		map[string]string{"options": `--title "New Title"`},
		"book.epub", []byte("x"))
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp MetadataResponse
	decodeJSON(t, w, &resp)
	if resp.Details != "Field title updated" {
		t.Errorf("expected tool confirmation in details, got %q", resp.Details)
	}
	if resp.Filename == "" {
		t.Fatal("expected a download filename for the modified file")
	}

	// The shlex-split option reached the tool as one word.
	if argAfter(runner.calls[0], "--title") != "New Title" {
		t.Errorf("expected --title 'New Title' in argv, got %v", runner.calls[0])
	}

	// The modified file is downloadable.
	w = httptest.NewRecorder()
	dlReq, _ := http.NewRequest("GET", "/api/v1/downloads/"+resp.Filename, nil)
	srv.Router().ServeHTTP(w, dlReq)
	if w.Code != http.StatusOK {
		t.Errorf("expected 200 downloading modified file, got %d", w.Code)
	}
}

func TestWriteFileMetadata_NoOptions(t *testing.T) {
	runner := &scriptRunner{fn: func(argv []string, _ time.Duration) (calibre.Result, error) {
		return calibre.Result{}, nil
	}}
	srv, _ := newTestServer(t, runner)

	req := multipartRequest(t, "PUT", "/api/v1/metadata/file", nil, "book.epub", []byte("x"))
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for empty options, got %d", w.Code)
	}
	if runner.callCount() != 0 {
		t.Errorf("expected no tool invocation, got %d", runner.callCount())
	}
}

func TestExtractCover(t *testing.T) {
	runner := &scriptRunner{}
	runner.fn = writesFile(t, func(argv []string) string {
		return argAfter(argv, "--get-cover")
	}, []byte("jpeg-bytes"))
	srv, _ := newTestServer(t, runner)

	req := multipartRequest(t, "POST", "/api/v1/metadata/cover", nil, "book.epub", []byte("x"))
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if w.Body.String() != "jpeg-bytes" {
		t.Errorf("expected cover bytes in response, got %q", w.Body.String())
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "book_cover.jpg") {
		t.Errorf("expected cover filename in disposition, got %q", cd)
	}
}

func TestExtractCover_NoCover(t *testing.T) {
	// Tool exits 0 but writes nothing: the book has no cover.
	runner := &scriptRunner{fn: func(argv []string, _ time.Duration) (calibre.Result, error) {
		return calibre.Result{}, nil
	}}
	srv, _ := newTestServer(t, runner)

	req := multipartRequest(t, "POST", "/api/v1/metadata/cover", nil, "book.epub", []byte("x"))
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500 when no cover was produced, got %d", w.Code)
	}
}

func TestFetchMetadataRoute(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		runner := &scriptRunner{}
		runner.fn = writesFile(t, func(argv []string) string {
			return argAfter(argv, "--opf")
		}, []byte(handlerTestOPF))
		srv, _ := newTestServer(t, runner)

		req := jsonRequest(t, "POST", "/api/v1/metadata/fetch",
			map[string]any{"title": "Dune", "authors": "Frank Herbert"})
		w := httptest.NewRecorder()
		srv.Router().ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var resp struct {
			SearchCriteria map[string]any `json:"search_criteria"`
			Metadata       map[string]any `json:"metadata"`
		}
		decodeJSON(t, w, &resp)
		if resp.SearchCriteria["title"] != "Dune" {
			t.Errorf("expected echoed criteria, got %v", resp.SearchCriteria)
		}
		if resp.Metadata["title"] != "Dune" {
			t.Errorf("expected fetched title, got %v", resp.Metadata)
		}
	})

	t.Run("not found", func(t *testing.T) {
		runner := &scriptRunner{fn: func(argv []string, _ time.Duration) (calibre.Result, error) {
			return calibre.Result{Stderr: "No metadata found", ExitCode: 1}, nil
		}}
		srv, _ := newTestServer(t, runner)

		req := jsonRequest(t, "POST", "/api/v1/metadata/fetch",
			map[string]any{"title": "Nonexistent Book"})
		w := httptest.NewRecorder()
		srv.Router().ServeHTTP(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("expected 404 for no-metadata outcome, got %d", w.Code)
		}
	})

	t.Run("no criteria", func(t *testing.T) {
		runner := &scriptRunner{fn: func(argv []string, _ time.Duration) (calibre.Result, error) {
			return calibre.Result{}, nil
		}}
		srv, _ := newTestServer(t, runner)

		req := jsonRequest(t, "POST", "/api/v1/metadata/fetch", map[string]any{})
		w := httptest.NewRecorder()
		srv.Router().ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("expected 400 without criteria, got %d", w.Code)
		}
		if runner.callCount() != 0 {
			t.Errorf("expected no tool invocation, got %d", runner.callCount())
		}
	})

	t.Run("raw opf", func(t *testing.T) {
		runner := &scriptRunner{fn: func(argv []string, _ time.Duration) (calibre.Result, error) {
			return calibre.Result{Stdout: handlerTestOPF}, nil
		}}
		srv, _ := newTestServer(t, runner)

		asJSON := false
		req := jsonRequest(t, "POST", "/api/v1/metadata/fetch",
			map[string]any{"title": "Dune", "as_json": asJSON})
		w := httptest.NewRecorder()
		srv.Router().ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var resp struct {
			Metadata string `json:"metadata"`
		}
		decodeJSON(t, w, &resp)
		if !strings.Contains(resp.Metadata, "<dc:title>Dune</dc:title>") {
			t.Errorf("expected raw OPF document, got %q", resp.Metadata)
		}
	})
}

func TestSendMailRoute(t *testing.T) {
	body := map[string]any{
		"recipient_email": "to@example.com",
		"subject":         "Hi",
		"body":            "Hello",
		"smtp_server":     "smtp.example.com",
		"smtp_port":       587,
		"smtp_username":   "user",
		"smtp_password":   "pass",
	}

	t.Run("success", func(t *testing.T) {
		fake := calibre.NewFakeRunner(calibre.FakeResponse{Result: calibre.Result{Stdout: ""}})
		srv, _ := newTestServer(t, fake)

		w := httptest.NewRecorder()
		srv.Router().ServeHTTP(w, jsonRequest(t, "POST", "/api/v1/smtp/send", body))

		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
		}
		var resp calibre.SendResult
		decodeJSON(t, w, &resp)
		if !resp.Success {
			t.Errorf("expected success, got %+v", resp)
		}
	})

	t.Run("tool failure is business data", func(t *testing.T) {
		fake := calibre.NewFakeRunner(calibre.FakeResponse{
			Result: calibre.Result{Stderr: "auth failed", ExitCode: 1},
		})
		srv, _ := newTestServer(t, fake)

		w := httptest.NewRecorder()
		srv.Router().ServeHTTP(w, jsonRequest(t, "POST", "/api/v1/smtp/send", body))

		if w.Code != http.StatusOK {
			t.Fatalf("expected 200 even for a failed send, got %d", w.Code)
		}
		var resp calibre.SendResult
		decodeJSON(t, w, &resp)
		if resp.Success {
			t.Error("expected success=false for non-zero exit")
		}
		if !strings.Contains(resp.Message, "auth failed") {
			t.Errorf("expected tool diagnostics in message, got %q", resp.Message)
		}
	})

	t.Run("missing recipient", func(t *testing.T) {
		fake := calibre.NewFakeRunner()
		srv, _ := newTestServer(t, fake)

		bad := map[string]any{"smtp_server": "smtp.example.com", "smtp_port": 587}
		w := httptest.NewRecorder()
		srv.Router().ServeHTTP(w, jsonRequest(t, "POST", "/api/v1/smtp/send", bad))

		if w.Code != http.StatusBadRequest {
			t.Errorf("expected 400 for missing recipient, got %d", w.Code)
		}
		if len(fake.Calls()) != 0 {
			t.Errorf("expected no tool invocation, got %d", len(fake.Calls()))
		}
	})
}

func TestListPluginsRoute(t *testing.T) {
	pluginOutput := "Alpha (1.0) by A\n  desc line\nBeta (2.0) by B\n  l1\n  l2"

	t.Run("all", func(t *testing.T) {
		fake := calibre.NewFakeRunner(calibre.FakeResponse{Result: calibre.Result{Stdout: pluginOutput}})
		srv, _ := newTestServer(t, fake)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/v1/plugins", nil)
		srv.Router().ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		var resp PluginListResponse
		decodeJSON(t, w, &resp)
		if resp.Count != 2 || len(resp.Plugins) != 2 {
			t.Errorf("expected 2 plugins, got count=%d len=%d", resp.Count, len(resp.Plugins))
		}
	})

	t.Run("fuzzy filter", func(t *testing.T) {
		fake := calibre.NewFakeRunner(calibre.FakeResponse{Result: calibre.Result{Stdout: pluginOutput}})
		srv, _ := newTestServer(t, fake)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/v1/plugins?q=alp", nil)
		srv.Router().ServeHTTP(w, req)

		var resp PluginListResponse
		decodeJSON(t, w, &resp)
		if resp.Count != 1 || resp.Plugins[0].Name != "Alpha" {
			t.Errorf("expected only Alpha to match, got %+v", resp.Plugins)
		}
	})

	t.Run("filter with no hits", func(t *testing.T) {
		fake := calibre.NewFakeRunner(calibre.FakeResponse{Result: calibre.Result{Stdout: pluginOutput}})
		srv, _ := newTestServer(t, fake)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/v1/plugins?q=zzzz", nil)
		srv.Router().ServeHTTP(w, req)

		var resp PluginListResponse
		decodeJSON(t, w, &resp)
		if resp.Count != 0 {
			t.Errorf("expected no matches, got %d", resp.Count)
		}
		if resp.Plugins == nil {
			t.Error("expected empty list, not null")
		}
	})
}

func TestGenerateRecipeRoute(t *testing.T) {
	runner := &scriptRunner{}
	runner.fn = writesFile(t, func(argv []string) string {
		return argv[len(argv)-1]
	}, []byte("recipe-content"))
	srv, _ := newTestServer(t, runner)

	req := jsonRequest(t, "POST", "/api/v1/recipes", map[string]any{
		"url":      "https://example.com/news",
		"filename": "news",
		"options":  "--max-recursions 2",
	})
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp RecipeResponse
	decodeJSON(t, w, &resp)
	if !strings.HasSuffix(resp.RecipeFilename, "_news.recipe") {
		t.Errorf("expected ULID-prefixed news.recipe, got %q", resp.RecipeFilename)
	}

	argv := runner.calls[0]
	if argv[0] != "web2disk" {
		t.Errorf("unexpected tool: %v", argv)
	}
	if argAfter(argv, "--max-recursions") != "2" {
		t.Errorf("expected shlex-split options, got %v", argv)
	}
	// Options come before the URL and recipe path.
	if argv[len(argv)-2] != "https://example.com/news" {
		t.Errorf("expected URL as second-to-last arg, got %v", argv)
	}
}

func TestGenerateRecipeRoute_MissingURL(t *testing.T) {
	runner := &scriptRunner{fn: func(argv []string, _ time.Duration) (calibre.Result, error) {
		return calibre.Result{}, nil
	}}
	srv, _ := newTestServer(t, runner)

	req := jsonRequest(t, "POST", "/api/v1/recipes", map[string]any{"filename": "news"})
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 without url, got %d", w.Code)
	}
	if runner.callCount() != 0 {
		t.Errorf("expected no tool invocation, got %d", runner.callCount())
	}
}

func TestDebugTestBuildRoute(t *testing.T) {
	fake := calibre.NewFakeRunner(calibre.FakeResponse{
		Result: calibre.Result{Stdout: "All tests passed"},
	})
	srv, _ := newTestServer(t, fake)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/v1/debug/test-build", nil)
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp DebugTestBuildResponse
	decodeJSON(t, w, &resp)
	if resp.Output != "All tests passed" {
		t.Errorf("expected raw output passthrough, got %q", resp.Output)
	}

	argv := fake.LastCall().Argv
	if argv[0] != "calibre-debug" {
		t.Errorf("unexpected tool: %v", argv)
	}
}
