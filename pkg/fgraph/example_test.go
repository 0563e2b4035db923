package fgraph_test

import (
	"fmt"

	"github.com/matzehuels/convroute/pkg/fgraph"
	"github.com/matzehuels/convroute/pkg/format"
)

func ExampleBuild() {
	png := format.Descriptor{MIME: "image/png", Category: []string{"image"}, Lossless: true, From: true, To: true}
	jpg := format.Descriptor{MIME: "image/jpeg", Category: []string{"image"}, From: true, To: true}

	h := format.NewStaticHandler("canvas", png, jpg)
	formats := map[format.HandlerName][]format.Descriptor{"canvas": h.Formats()}

	g := fgraph.Build(formats, []format.Handler{h}, false, fgraph.NewRules())
	for _, e := range g.Edges() {
		fmt.Printf("%s -> %s: %.2f\n", e.From.MIME, e.To.MIME, e.Cost)
	}
	// Output:
	// image/png -> image/jpeg: 1.47
	// image/jpeg -> image/png: 1.00
}

func ExampleAdaptiveCost() {
	rules := []fgraph.CategoryAdaptiveRule{
		{Sequence: []string{"image", "video", "audio"}, Cost: 10000},
	}
	fmt.Println(fgraph.AdaptiveCost(rules, []string{"image", "video", "audio"}))
	fmt.Println(fgraph.AdaptiveCost(rules, []string{"image", "video"}))
	// Output:
	// 10000
	// 0
}
