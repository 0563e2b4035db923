package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	cerrors "github.com/matzehuels/convroute/pkg/errors"
	"github.com/matzehuels/convroute/pkg/fgraph"
	"github.com/matzehuels/convroute/pkg/format"
	"github.com/matzehuels/convroute/pkg/search"
)

//go:embed sample_config.toml
var sampleConfig string

// Search contains route search settings.
type Search struct {
	Timeout       Duration `toml:"timeout"` // <= 0 disables the timeout
	SafetyFilter  bool     `toml:"safety_filter"`
	SafetyPattern []string `toml:"safety_pattern"`
}

// Cache contains route cache settings.
type Cache struct {
	MaxSize int `toml:"max_size"`
}

// Graph contains graph construction settings.
type Graph struct {
	StrictCategories    bool `toml:"strict_categories"`
	ReplaceDefaultRules bool `toml:"replace_default_rules"`
}

// Handler is one [[handler]] table: a conversion tool and the formats it
// supports, in order of preference.
type Handler struct {
	Name    string              `toml:"name"`
	Formats []format.Descriptor `toml:"format"`
}

// Config encapsulates all configuration values for convroute.
type Config struct {
	Search           Search                        `toml:"search"`
	Cache            Cache                         `toml:"cache"`
	Graph            Graph                         `toml:"graph"`
	CategoryChange   []fgraph.CategoryChangeRule   `toml:"category_change"`
	CategoryAdaptive []fgraph.CategoryAdaptiveRule `toml:"category_adaptive"`
	Handlers         []Handler                     `toml:"handler"`
}

// Sample returns the embedded sample configuration.
func Sample() string { return sampleConfig }

// Builtin returns the configuration embedded in the binary.
func Builtin() (*Config, error) {
	return Parse(sampleConfig)
}

// Load reads, normalizes, and validates the configuration file at path.
// Settings missing from the file keep their defaults; unknown keys are
// rejected.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, cerrors.Wrap(cerrors.ErrCodeFileNotFound, err, "config file %s", path)
		}
		return nil, cerrors.Wrap(cerrors.ErrCodeInvalidConfig, err, "read config %s", path)
	}
	cfg, err := Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes TOML text over [Default], then applies defaults and
// validates the result.
func Parse(data string) (*Config, error) {
	cfg := Default()
	md, err := toml.Decode(data, &cfg)
	if err != nil {
		return nil, cerrors.Wrap(cerrors.ErrCodeInvalidConfig, err, "parse config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, cerrors.New(cerrors.ErrCodeInvalidConfig, "unknown keys: %s", strings.Join(keys, ", "))
	}

	cfg.normalize()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Registry returns the configured handlers registered in file order.
func (c *Config) Registry() (*format.Registry, error) {
	r, err := format.NewRegistry()
	if err != nil {
		return nil, err
	}
	for _, h := range c.StaticHandlers() {
		if err := r.Register(h); err != nil {
			return nil, cerrors.Wrap(cerrors.ErrCodeInvalidRegistry, err, "register %q", h.Name())
		}
	}
	return r, nil
}

// StaticHandlers returns one handler per [[handler]] table, in file order.
func (c *Config) StaticHandlers() []*format.StaticHandler {
	out := make([]*format.StaticHandler, len(c.Handlers))
	for i, h := range c.Handlers {
		formats := make([]format.Descriptor, len(h.Formats))
		for j, d := range h.Formats {
			formats[j] = d.Clone()
		}
		out[i] = format.NewStaticHandler(h.Name, formats...)
	}
	return out
}

// Rules returns the cost rule tables: the defaults (unless
// graph.replace_default_rules is set) with the configured rules added or
// overriding existing ones.
func (c *Config) Rules() (*fgraph.Rules, error) {
	rules := fgraph.NewRules()
	if c.Graph.ReplaceDefaultRules {
		rules = fgraph.NewEmptyRules()
	}
	for _, r := range c.CategoryChange {
		ok := rules.UpdateCategoryChangeCost(r.From, r.To, r.Handler, r.Cost) ||
			rules.AddCategoryChangeCost(r.From, r.To, r.Handler, r.Cost)
		if !ok {
			return nil, cerrors.New(cerrors.ErrCodeInvalidRule, "category change %s -> %s rejected", r.From, r.To)
		}
	}
	for _, r := range c.CategoryAdaptive {
		ok := rules.UpdateCategoryAdaptiveCost(r.Sequence, r.Cost) ||
			rules.AddCategoryAdaptiveCost(r.Sequence, r.Cost)
		if !ok {
			return nil, cerrors.New(cerrors.ErrCodeInvalidRule, "adaptive sequence %v rejected", r.Sequence)
		}
	}
	return rules, nil
}

// EngineOptions returns the search engine options for this configuration,
// including its cost rules.
func (c *Config) EngineOptions(logger *log.Logger) ([]search.Option, error) {
	rules, err := c.Rules()
	if err != nil {
		return nil, err
	}
	return []search.Option{
		search.WithLogger(logger),
		search.WithRules(rules),
		search.WithTimeout(c.Search.Timeout.Std()),
		search.WithCacheSize(c.Cache.MaxSize),
		search.WithSafetyFilter(c.Search.SafetyFilter),
		search.WithSafetyPattern(c.Search.SafetyPattern...),
	}, nil
}
