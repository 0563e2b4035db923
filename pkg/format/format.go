package format

import (
	"slices"
	"strings"
)

// HandlerName is a normalized handler identifier. Two names that differ
// only in case or surrounding whitespace are equal.
//
// The zero value means "no handler".
type HandlerName string

// NewHandlerName normalizes s into a HandlerName.
func NewHandlerName(s string) HandlerName {
	return HandlerName(strings.ToLower(strings.TrimSpace(s)))
}

// String returns the normalized name.
func (h HandlerName) String() string { return string(h) }

// IsZero reports whether h names no handler.
func (h HandlerName) IsZero() bool { return h == "" }

// Descriptor describes one format as advertised by a handler.
type Descriptor struct {
	Name      string   `json:"name,omitempty" toml:"name"`           // Display name, e.g. "Portable Network Graphics"
	Format    string   `json:"format,omitempty" toml:"format"`       // Short identifier, e.g. "png"
	Extension string   `json:"extension,omitempty" toml:"extension"` // File extension without dot
	MIME      string   `json:"mime" toml:"mime"`                     // Unique key of the format across handlers
	Category  []string `json:"category" toml:"category"`             // One or more coarse categories
	Lossless  bool     `json:"lossless" toml:"lossless"`
	From      bool     `json:"from" toml:"from"` // Handler can read this format
	To        bool     `json:"to" toml:"to"`     // Handler can write this format
}

// Categories returns the descriptor's categories. The slice must not be
// modified.
func (d Descriptor) Categories() []string { return d.Category }

// PrimaryCategory returns the first category, or "" if there is none.
func (d Descriptor) PrimaryCategory() string {
	if len(d.Category) == 0 {
		return ""
	}
	return d.Category[0]
}

// HasCategory reports whether the descriptor belongs to category c.
func (d Descriptor) HasCategory(c string) bool {
	return slices.Contains(d.Category, c)
}

// SharesCategory reports whether d and other have at least one category in
// common.
func (d Descriptor) SharesCategory(other Descriptor) bool {
	return slices.ContainsFunc(d.Category, other.HasCategory)
}

// Clone returns a deep copy of d.
func (d Descriptor) Clone() Descriptor {
	d.Category = slices.Clone(d.Category)
	return d
}

// PathStep is one hop of a route: the format reached and the handler that
// produces it. The first step of a route names the source format; its
// handler is the one expected to read it.
type PathStep struct {
	Handler HandlerName `json:"handler"`
	Format  Descriptor  `json:"format"`
}

// String renders the step as "mime@handler", or just the MIME type when no
// handler is set.
func (s PathStep) String() string {
	if s.Handler.IsZero() {
		return s.Format.MIME
	}
	return s.Format.MIME + "@" + s.Handler.String()
}

// ClonePath returns a deep copy of path.
func ClonePath(path []PathStep) []PathStep {
	if path == nil {
		return nil
	}
	out := make([]PathStep, len(path))
	for i, s := range path {
		out[i] = PathStep{Handler: s.Handler, Format: s.Format.Clone()}
	}
	return out
}

// PathString renders a route as "a@h1 -> b@h2 -> c@h3".
func PathString(path []PathStep) string {
	parts := make([]string, len(path))
	for i, s := range path {
		parts[i] = s.String()
	}
	return strings.Join(parts, " -> ")
}
