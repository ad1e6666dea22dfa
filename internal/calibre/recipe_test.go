// file: internal/calibre/recipe_test.go
// version: 1.0.0
// guid: 1066a824-3833-436f-9b0c-906a7216ac34

package calibre

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestGenerateRecipe(t *testing.T) {
	recipePath := filepath.Join(t.TempDir(), "news.recipe")

	runner := runnerFunc(func(argv []string, timeout time.Duration) (Result, error) {
		want := []string{BinWeb2Disk, "--max-recursions", "2", "https://example.com/news", recipePath}
		if !reflect.DeepEqual(argv, want) {
			t.Errorf("argv mismatch:\nwant %v\ngot  %v", want, argv)
		}
		if err := os.WriteFile(recipePath, []byte("downloaded content"), 0644); err != nil {
			t.Fatalf("failed to write recipe: %v", err)
		}
		return Result{}, nil
	})

	tools := NewTools(Options{Runner: runner})
	got, err := tools.GenerateRecipe("https://example.com/news", recipePath, []string{"--max-recursions", "2"})
	if err != nil {
		t.Fatalf("GenerateRecipe failed: %v", err)
	}
	if got != recipePath {
		t.Errorf("expected %s, got %s", recipePath, got)
	}
}

func TestGenerateRecipe_BadExtension(t *testing.T) {
	fake := NewFakeRunner()
	tools := NewTools(Options{Runner: fake})

	_, err := tools.GenerateRecipe("https://example.com", "/tmp/out.txt", nil)
	var inputErr *InputError
	if !errors.As(err, &inputErr) {
		t.Fatalf("expected InputError, got %v", err)
	}
	if len(fake.Calls()) != 0 {
		t.Error("no process may run for a bad recipe extension")
	}
}

func TestGenerateRecipe_ZeroByteFileIsFailure(t *testing.T) {
	recipePath := filepath.Join(t.TempDir(), "empty.recipe")
	if err := os.WriteFile(recipePath, nil, 0644); err != nil {
		t.Fatalf("failed to create empty recipe: %v", err)
	}

	fake := NewFakeRunner(FakeResponse{Result: Result{}})
	tools := NewTools(Options{Runner: fake})

	_, err := tools.GenerateRecipe("https://example.com", recipePath, nil)
	var toolErr *ToolError
	if !errors.As(err, &toolErr) {
		t.Fatalf("expected ToolError for zero-byte recipe, got %v", err)
	}
	if !strings.Contains(toolErr.Message, "not created or is empty") {
		t.Errorf("message should call out the empty file: %s", toolErr.Message)
	}
}

func TestGenerateRecipe_MissingFileIsFailure(t *testing.T) {
	recipePath := filepath.Join(t.TempDir(), "never.recipe")

	fake := NewFakeRunner(FakeResponse{Result: Result{}})
	tools := NewTools(Options{Runner: fake})

	_, err := tools.GenerateRecipe("https://example.com", recipePath, nil)
	var toolErr *ToolError
	if !errors.As(err, &toolErr) {
		t.Fatalf("expected ToolError for missing recipe, got %v", err)
	}
}
