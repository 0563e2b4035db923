package fgraph

import (
	"testing"

	"github.com/matzehuels/convroute/pkg/format"
)

func TestAdaptiveCost(t *testing.T) {
	iva := []CategoryAdaptiveRule{{Sequence: []string{"image", "video", "audio"}, Cost: 10000}}

	tests := []struct {
		name  string
		rules []CategoryAdaptiveRule
		trace []string
		want  float64
	}{
		{"ExactMatch", iva, []string{"image", "video", "audio"}, 10000},
		{"MatchAtTail", iva, []string{"text", "image", "video", "audio"}, 10000},
		{"NotAtTail", iva, []string{"image", "video", "audio", "text"}, 0},
		{"Partial", iva, []string{"video", "audio"}, 0},
		{"Empty", iva, nil, 0},
		{"RepeatedMiddle", iva, []string{"image", "video", "video", "audio"}, 10000},
		{"RepeatedTail", iva, []string{"image", "video", "audio", "audio"}, 10000},
		{"RepeatedHead", iva, []string{"image", "image", "video", "audio"}, 10000},
		{"GapBreaksMatch", iva, []string{"image", "text", "video", "audio"}, 0},
		{"Reversed", iva, []string{"audio", "video", "image"}, 0},
		{
			name: "Sums",
			rules: []CategoryAdaptiveRule{
				{Sequence: []string{"video", "audio"}, Cost: 3},
				{Sequence: []string{"audio"}, Cost: 2},
				{Sequence: []string{"image", "audio"}, Cost: 100},
			},
			trace: []string{"image", "video", "audio"},
			want:  5,
		},
		{"EmptySequenceNeverMatches", []CategoryAdaptiveRule{{Cost: 1}}, []string{"image"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AdaptiveCost(tt.rules, tt.trace); got != tt.want {
				t.Errorf("AdaptiveCost(%v) = %v, want %v", tt.trace, got, tt.want)
			}
		})
	}
}

func TestCategoryTrace(t *testing.T) {
	path := []format.PathStep{
		{Format: format.Descriptor{MIME: "image/gif", Category: []string{"image", "video"}}},
		{Format: format.Descriptor{MIME: "video/mp4", Category: []string{"video"}}},
		{Format: format.Descriptor{MIME: "x/unknown"}},
	}
	got := CategoryTrace(path)
	want := []string{"image", "video", ""}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("trace[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestCategoryChangeResolution(t *testing.T) {
	png := format.Descriptor{MIME: "image/png", Category: []string{"image"}}
	gif := format.Descriptor{MIME: "image/gif", Category: []string{"image", "video"}}
	mp3 := format.Descriptor{MIME: "audio/mpeg", Category: []string{"audio"}}

	rules := NewEmptyRules()
	rules.AddCategoryChangeCost("image", "audio", "", 1.5)
	rules.AddCategoryChangeCost("image", "audio", "FFmpeg", 0.3)
	rules.AddCategoryChangeCost("video", "audio", "", 0.9)

	tests := []struct {
		name    string
		from    format.Descriptor
		handler format.HandlerName
		want    float64
	}{
		{"HandlerSpecificWins", png, "ffmpeg", 0.3},
		{"GenericFallback", png, "sox", 1.5},
		{"AnyCategoryMatches", gif, "sox", 1.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := rules.categoryChangeCost(tt.from, mp3, tt.handler); got != tt.want {
				t.Errorf("categoryChangeCost = %v, want %v", got, tt.want)
			}
		})
	}

	txt := format.Descriptor{MIME: "text/plain", Category: []string{"text"}}
	if got := rules.categoryChangeCost(txt, mp3, ""); got != DefaultCategoryChangeCost {
		t.Errorf("no matching rule: cost = %v, want default %v", got, DefaultCategoryChangeCost)
	}
}
