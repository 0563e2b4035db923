package config

import (
	"time"

	"github.com/matzehuels/convroute/pkg/pathcache"
	"github.com/matzehuels/convroute/pkg/search"
)

const (
	defaultTimeout   = search.DefaultTimeout
	defaultCacheSize = pathcache.DefaultMaxSize
)

// Default returns a Config populated with engine defaults and no handlers.
func Default() Config {
	return Config{
		Search: Search{
			Timeout:       Duration(defaultTimeout),
			SafetyFilter:  true,
			SafetyPattern: append([]string(nil), search.DefaultSafetyPattern...),
		},
		Cache: Cache{
			MaxSize: defaultCacheSize,
		},
	}
}

// SetDefaults fills fields left at their zero value where zero is not a
// meaningful setting.
func (c *Config) SetDefaults() {
	if c.Cache.MaxSize == 0 {
		c.Cache.MaxSize = defaultCacheSize
	}
	if c.Search.SafetyPattern == nil {
		c.Search.SafetyPattern = append([]string(nil), search.DefaultSafetyPattern...)
	}
}

// Duration is a time.Duration written as a string such as "5s" or
// "250ms" in TOML.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }
