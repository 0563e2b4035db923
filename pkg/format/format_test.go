package format

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestNewHandlerName(t *testing.T) {
	tests := []struct {
		in   string
		want HandlerName
	}{
		{"FFmpeg", "ffmpeg"},
		{"  ImageMagick ", "imagemagick"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NewHandlerName(tt.in); got != tt.want {
			t.Errorf("NewHandlerName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
	if NewHandlerName("FFMPEG") != NewHandlerName("ffmpeg") {
		t.Error("handler names should compare case-insensitively")
	}
}

func TestDescriptorCategories(t *testing.T) {
	gif := Descriptor{MIME: "image/gif", Category: []string{"image", "video"}}
	mp4 := Descriptor{MIME: "video/mp4", Category: []string{"video"}}
	wav := Descriptor{MIME: "audio/wav", Category: []string{"audio"}}

	if gif.PrimaryCategory() != "image" {
		t.Errorf("PrimaryCategory() = %q, want image", gif.PrimaryCategory())
	}
	if (Descriptor{}).PrimaryCategory() != "" {
		t.Error("PrimaryCategory of empty descriptor should be empty")
	}
	if !gif.SharesCategory(mp4) {
		t.Error("gif and mp4 share the video category")
	}
	if mp4.SharesCategory(wav) {
		t.Error("mp4 and wav share no category")
	}
}

func TestClonePathIsDeep(t *testing.T) {
	path := []PathStep{{Handler: "a", Format: Descriptor{MIME: "image/png", Category: []string{"image"}}}}
	c := ClonePath(path)
	c[0].Format.Category[0] = "mutated"
	if path[0].Format.Category[0] != "image" {
		t.Error("ClonePath shares category slices with the original")
	}
	if ClonePath(nil) != nil {
		t.Error("ClonePath(nil) should be nil")
	}
}

func TestPathString(t *testing.T) {
	path := []PathStep{
		{Format: Descriptor{MIME: "image/png"}},
		{Handler: "ffmpeg", Format: Descriptor{MIME: "video/mp4"}},
	}
	if got, want := PathString(path), "image/png -> video/mp4@ffmpeg"; got != want {
		t.Errorf("PathString() = %q, want %q", got, want)
	}
}

type failingHandler struct{ name string }

func (f failingHandler) Name() string               { return f.name }
func (f failingHandler) Init(context.Context) error { return errors.New("codec missing") }
func (f failingHandler) Formats() []Descriptor      { return []Descriptor{{MIME: "x/never"}} }

func TestRegistryRegister(t *testing.T) {
	r, err := NewRegistry(NewStaticHandler("FFmpeg"))
	if err != nil {
		t.Fatal(err)
	}
	if err := r.Register(NewStaticHandler("ffmpeg")); !errors.Is(err, ErrDuplicateHandler) {
		t.Errorf("duplicate register error = %v, want ErrDuplicateHandler", err)
	}
	if err := r.Register(NewStaticHandler("  ")); !errors.Is(err, ErrEmptyHandlerName) {
		t.Errorf("empty register error = %v, want ErrEmptyHandlerName", err)
	}
	if r.Len() != 1 {
		t.Errorf("Len() = %d, want 1", r.Len())
	}
}

func TestRegistryCollect(t *testing.T) {
	png := Descriptor{MIME: "image/png", Category: []string{"image"}, From: true, To: true}
	r, err := NewRegistry(
		NewStaticHandler("Canvas", png),
		failingHandler{name: "Broken"},
	)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})
	formats, handlers, err := r.Collect(context.Background(), logger)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(handlers) != 2 {
		t.Fatalf("handlers = %d, want 2", len(handlers))
	}
	if got := formats["canvas"]; len(got) != 1 || got[0].MIME != "image/png" {
		t.Errorf("canvas formats = %v", got)
	}
	if got, ok := formats["broken"]; !ok || len(got) != 0 {
		t.Errorf("failed handler should map to no formats, got %v (present=%v)", got, ok)
	}
	if !bytes.Contains(buf.Bytes(), []byte("handler init failed")) {
		t.Errorf("expected init failure to be logged, got %q", buf.String())
	}
}

func TestRegistryCollectCanceled(t *testing.T) {
	r, _ := NewRegistry(NewStaticHandler("a"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := r.Collect(ctx, nil); !errors.Is(err, context.Canceled) {
		t.Errorf("Collect error = %v, want context.Canceled", err)
	}
}

// slowHandler delays Init so later handlers finish first.
type slowHandler struct {
	*StaticHandler
	delay time.Duration
}

func (h slowHandler) Init(ctx context.Context) error {
	select {
	case <-time.After(h.delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func TestRegistryCollectKeepsOrder(t *testing.T) {
	png := Descriptor{MIME: "image/png", Category: []string{"image"}, From: true, To: true}
	r, err := NewRegistry(
		slowHandler{StaticHandler: NewStaticHandler("first", png), delay: 20 * time.Millisecond},
		NewStaticHandler("second", png),
		NewStaticHandler("third", png),
	)
	if err != nil {
		t.Fatal(err)
	}

	formats, handlers, err := r.Collect(context.Background(), log.New(io.Discard))
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	for i, want := range []string{"first", "second", "third"} {
		if got := handlers[i].Name(); got != want {
			t.Errorf("handlers[%d] = %q, want %q", i, got, want)
		}
		if len(formats[HandlerName(want)]) != 1 {
			t.Errorf("formats[%s] = %v, want one format", want, formats[HandlerName(want)])
		}
	}
}
