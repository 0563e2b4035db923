package config

import (
	"strings"

	"github.com/matzehuels/convroute/pkg/format"
)

func (c *Config) normalize() {
	for i := range c.Handlers {
		h := &c.Handlers[i]
		h.Name = format.NewHandlerName(h.Name).String()
		for j := range h.Formats {
			d := &h.Formats[j]
			d.MIME = strings.ToLower(strings.TrimSpace(d.MIME))
			d.Extension = strings.TrimPrefix(strings.TrimSpace(d.Extension), ".")
			d.Category = normalizeCategories(d.Category)
		}
	}
	for i := range c.CategoryChange {
		r := &c.CategoryChange[i]
		r.From = strings.ToLower(strings.TrimSpace(r.From))
		r.To = strings.ToLower(strings.TrimSpace(r.To))
		r.Handler = format.NewHandlerName(string(r.Handler))
	}
	for i := range c.CategoryAdaptive {
		c.CategoryAdaptive[i].Sequence = normalizeCategories(c.CategoryAdaptive[i].Sequence)
	}
	c.Search.SafetyPattern = normalizeCategories(c.Search.SafetyPattern)
}

func normalizeCategories(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	for i, c := range in {
		out[i] = strings.ToLower(strings.TrimSpace(c))
	}
	return out
}
