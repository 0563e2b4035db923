package config

import (
	"fmt"

	cerrors "github.com/matzehuels/convroute/pkg/errors"
)

// Validate ensures the configuration is usable. All problems are reported
// together in one INVALID_CONFIG error.
func (c *Config) Validate() error {
	var problems []error
	problems = append(problems, c.validateSearch()...)
	problems = append(problems, c.validateCache()...)
	problems = append(problems, c.validateRules()...)
	problems = append(problems, c.validateHandlers()...)
	joined := cerrors.Join(problems...)
	if joined == nil {
		return nil
	}
	return cerrors.Wrap(cerrors.ErrCodeInvalidConfig, joined, "%d invalid setting(s)", len(cerrors.Errors(joined)))
}

func (c *Config) validateSearch() []error {
	var errs []error
	for _, cat := range c.Search.SafetyPattern {
		if err := cerrors.ValidateCategory(cat); err != nil {
			errs = append(errs, fmt.Errorf("search.safety_pattern: %w", err))
		}
	}
	return errs
}

func (c *Config) validateCache() []error {
	if c.Cache.MaxSize < 0 {
		return []error{cerrors.New(cerrors.ErrCodeInvalidConfig, "cache.max_size must not be negative")}
	}
	return nil
}

func (c *Config) validateRules() []error {
	var errs []error
	for i, r := range c.CategoryChange {
		prefix := fmt.Sprintf("category_change[%d]", i)
		for _, cat := range []string{r.From, r.To} {
			if err := cerrors.ValidateCategory(cat); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", prefix, err))
			}
		}
		if !r.Handler.IsZero() {
			if err := cerrors.ValidateHandlerName(r.Handler.String()); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", prefix, err))
			}
		}
		if err := cerrors.ValidateCost(r.Cost); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", prefix, err))
		}
	}
	for i, r := range c.CategoryAdaptive {
		prefix := fmt.Sprintf("category_adaptive[%d]", i)
		if len(r.Sequence) == 0 {
			errs = append(errs, fmt.Errorf("%s: %w", prefix, cerrors.New(cerrors.ErrCodeInvalidRule, "sequence must not be empty")))
		}
		for _, cat := range r.Sequence {
			if err := cerrors.ValidateCategory(cat); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", prefix, err))
			}
		}
		if err := cerrors.ValidateCost(r.Cost); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", prefix, err))
		}
	}
	return errs
}

func (c *Config) validateHandlers() []error {
	var errs []error
	seen := make(map[string]bool, len(c.Handlers))
	for i, h := range c.Handlers {
		prefix := fmt.Sprintf("handler[%d]", i)
		if err := cerrors.ValidateHandlerName(h.Name); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", prefix, err))
		} else {
			prefix = fmt.Sprintf("handler %q", h.Name)
		}
		if seen[h.Name] {
			errs = append(errs, fmt.Errorf("%s: %w", prefix, cerrors.New(cerrors.ErrCodeInvalidRegistry, "duplicate handler")))
		}
		seen[h.Name] = true

		mimes := make(map[string]bool, len(h.Formats))
		for j, d := range h.Formats {
			fprefix := fmt.Sprintf("%s format[%d]", prefix, j)
			if err := cerrors.ValidateMIME(d.MIME); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", fprefix, err))
			}
			if mimes[d.MIME] {
				errs = append(errs, fmt.Errorf("%s: %w", fprefix, cerrors.New(cerrors.ErrCodeInvalidRegistry, "duplicate MIME type %s", d.MIME)))
			}
			mimes[d.MIME] = true
			if len(d.Category) == 0 {
				errs = append(errs, fmt.Errorf("%s: %w", fprefix, cerrors.New(cerrors.ErrCodeInvalidFormat, "at least one category is required")))
			}
			for _, cat := range d.Category {
				if err := cerrors.ValidateCategory(cat); err != nil {
					errs = append(errs, fmt.Errorf("%s: %w", fprefix, err))
				}
			}
			if !d.From && !d.To {
				errs = append(errs, fmt.Errorf("%s: %w", fprefix, cerrors.New(cerrors.ErrCodeInvalidFormat, "%s is neither readable nor writable", d.MIME)))
			}
		}
	}
	return errs
}
