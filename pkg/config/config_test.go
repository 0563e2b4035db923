package config_test

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/convroute/pkg/config"
	cerrors "github.com/matzehuels/convroute/pkg/errors"
	"github.com/matzehuels/convroute/pkg/fgraph"
	"github.com/matzehuels/convroute/pkg/format"
	"github.com/matzehuels/convroute/pkg/search"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "convroute.toml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestBuiltin(t *testing.T) {
	cfg, err := config.Builtin()
	if err != nil {
		t.Fatalf("Builtin() error = %v", err)
	}

	var names []string
	for _, h := range cfg.Handlers {
		names = append(names, h.Name)
	}
	want := []string{"canvas", "ffmpeg", "pandoc", "pdftoppm", "tesseract", "espeak"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("handler order mismatch (-want +got):\n%s", diff)
	}
	if got := cfg.Search.Timeout.Std(); got != 5*time.Second {
		t.Errorf("timeout = %v, want 5s", got)
	}
	if !cfg.Search.SafetyFilter {
		t.Error("safety filter disabled in builtin config")
	}

	r, err := cfg.Registry()
	if err != nil {
		t.Fatalf("Registry() error = %v", err)
	}
	if r.Len() != len(want) {
		t.Errorf("registry has %d handlers, want %d", r.Len(), len(want))
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	if !cerrors.Is(err, cerrors.ErrCodeFileNotFound) {
		t.Fatalf("Load() error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestLoadKeepsDefaults(t *testing.T) {
	path := writeConfig(t, `
[search]
timeout = "250ms"

[cache]
max_size = 0

[[handler]]
name = " FFmpeg "

  [[handler.format]]
  mime = "Video/MP4"
  extension = ".mp4"
  category = [" Video "]
  from = true
  to = true
`)

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := cfg.Search.Timeout.Std(); got != 250*time.Millisecond {
		t.Errorf("timeout = %v, want 250ms", got)
	}
	if cfg.Cache.MaxSize != config.Default().Cache.MaxSize {
		t.Errorf("max_size = %d, want default %d", cfg.Cache.MaxSize, config.Default().Cache.MaxSize)
	}
	if !cfg.Search.SafetyFilter {
		t.Error("safety_filter should default to true")
	}
	if diff := cmp.Diff(search.DefaultSafetyPattern, cfg.Search.SafetyPattern); diff != "" {
		t.Errorf("safety pattern mismatch (-want +got):\n%s", diff)
	}

	h := cfg.Handlers[0]
	if h.Name != "ffmpeg" {
		t.Errorf("handler name = %q, want ffmpeg", h.Name)
	}
	d := h.Formats[0]
	if d.MIME != "video/mp4" || d.Extension != "mp4" || d.Category[0] != "video" {
		t.Errorf("format not normalized: %+v", d)
	}
}

func TestParseDisabledTimeout(t *testing.T) {
	cfg, err := config.Parse("[search]\ntimeout = \"0s\"\nsafety_filter = false\n")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.Search.Timeout != 0 {
		t.Errorf("timeout = %v, want 0", cfg.Search.Timeout.Std())
	}
	if cfg.Search.SafetyFilter {
		t.Error("safety_filter = true, want false")
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantText string
	}{
		{"syntax", "[search\n", "parse config"},
		{"bad duration", "[search]\ntimeout = \"5 parsecs\"\n", "parse config"},
		{"unknown key", "[search]\nbogus = 1\n", "search.bogus"},
		{"negative cache", "[cache]\nmax_size = -1\n", "max_size"},
		{"negative cost", "[[category_change]]\nfrom = \"image\"\nto = \"video\"\ncost = -1\n", "category_change[0]"},
		{"empty sequence", "[[category_adaptive]]\nsequence = []\ncost = 1\n", "category_adaptive[0]"},
		{"bad mime", "[[handler]]\nname = \"x\"\n[[handler.format]]\nmime = \"png\"\ncategory = [\"image\"]\nfrom = true\n", "png"},
		{"no category", "[[handler]]\nname = \"x\"\n[[handler.format]]\nmime = \"image/png\"\nfrom = true\n", "category"},
		{"no direction", "[[handler]]\nname = \"x\"\n[[handler.format]]\nmime = \"image/png\"\ncategory = [\"image\"]\n", "neither"},
		{"duplicate handler", "[[handler]]\nname = \"x\"\n[[handler]]\nname = \"X\"\n", "duplicate handler"},
		{"empty handler name", "[[handler]]\nname = \" \"\n", "handler name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Parse(tt.input)
			if err == nil {
				t.Fatal("Parse() error = nil")
			}
			if !cerrors.Is(err, cerrors.ErrCodeInvalidConfig) {
				t.Errorf("code = %v, want INVALID_CONFIG", cerrors.GetCode(err))
			}
			if !strings.Contains(err.Error(), tt.wantText) {
				t.Errorf("error %q does not mention %q", err, tt.wantText)
			}
		})
	}
}

func TestValidateReportsAllProblems(t *testing.T) {
	cfg := config.Default()
	cfg.Cache.MaxSize = -1
	cfg.CategoryChange = []fgraph.CategoryChangeRule{{From: "image", To: "", Cost: 1}}
	cfg.Handlers = []config.Handler{{Name: "a/b"}}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() = nil")
	}
	if !strings.Contains(err.Error(), "3 invalid setting(s)") {
		t.Errorf("error = %q, want three problems", err)
	}
}

func TestRules(t *testing.T) {
	t.Run("override default", func(t *testing.T) {
		cfg, err := config.Parse("[[category_change]]\nfrom = \"image\"\nto = \"video\"\ncost = 0.9\n")
		if err != nil {
			t.Fatalf("Parse() error = %v", err)
		}
		rules, err := cfg.Rules()
		if err != nil {
			t.Fatalf("Rules() error = %v", err)
		}
		got := rules.CategoryChangeRules()
		if len(got) != len(fgraph.DefaultCategoryChangeRules()) {
			t.Errorf("got %d rules, want %d", len(got), len(fgraph.DefaultCategoryChangeRules()))
		}
		if got[0].From != "image" || got[0].To != "video" || got[0].Cost != 0.9 {
			t.Errorf("rule[0] = %+v, want image -> video 0.9", got[0])
		}
	})

	t.Run("replace defaults", func(t *testing.T) {
		cfg, err := config.Parse(`
[graph]
replace_default_rules = true

[[category_change]]
from = "text"
to = "audio"
handler = "ESpeak"
cost = 0.1

[[category_adaptive]]
sequence = ["text", "audio", "text"]
cost = 50
`)
		if err != nil {
			t.Fatalf("Parse() error = %v", err)
		}
		rules, err := cfg.Rules()
		if err != nil {
			t.Fatalf("Rules() error = %v", err)
		}
		wantChange := []fgraph.CategoryChangeRule{{From: "text", To: "audio", Handler: "espeak", Cost: 0.1}}
		if diff := cmp.Diff(wantChange, rules.CategoryChangeRules()); diff != "" {
			t.Errorf("change rules mismatch (-want +got):\n%s", diff)
		}
		wantAdaptive := []fgraph.CategoryAdaptiveRule{{Sequence: []string{"text", "audio", "text"}, Cost: 50}}
		if diff := cmp.Diff(wantAdaptive, rules.CategoryAdaptiveRules()); diff != "" {
			t.Errorf("adaptive rules mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestEngineOptions(t *testing.T) {
	cfg, err := config.Builtin()
	if err != nil {
		t.Fatalf("Builtin() error = %v", err)
	}
	opts, err := cfg.EngineOptions(log.New(io.Discard))
	if err != nil {
		t.Fatalf("EngineOptions() error = %v", err)
	}
	r, err := cfg.Registry()
	if err != nil {
		t.Fatalf("Registry() error = %v", err)
	}

	e := search.New(opts...)
	if err := e.InitRegistry(context.Background(), r, cfg.Graph.StrictCategories); err != nil {
		t.Fatalf("InitRegistry() error = %v", err)
	}
	if !e.Rules().HasCategoryChangeCost("document", "image", "pdftoppm") {
		t.Error("configured rule missing from engine")
	}

	src := format.PathStep{Format: format.Descriptor{MIME: "image/jpeg"}}
	dst := format.PathStep{Format: format.Descriptor{MIME: "text/plain"}}
	path, ok := e.FindPath(context.Background(), src, dst, false)
	if !ok {
		t.Fatal("no route from image/jpeg to text/plain")
	}
	if got := path[len(path)-1].Handler; got != "tesseract" {
		t.Errorf("last handler = %q, want tesseract", got)
	}
}
