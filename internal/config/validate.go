// internal/config/validate.go
package config

import (
	"fmt"
	"os"
	"time"

	"golang.org/x/text/language"

	"github.com/vmunix/culler/internal/classify"
)

var validLogLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "error": true, "": true,
}

var supportedLanguages = map[string]bool{
	"en": true, "es": true,
}

// Validate checks the configuration for errors.
// Returns a slice of error messages (empty if valid).
func (c *Config) Validate() []string {
	var errs []string

	if c.Library.Root == "" {
		errs = append(errs, "library.root: required")
	}

	if c.Library.TrashRetention != "" {
		if d, err := time.ParseDuration(c.Library.TrashRetention); err != nil || d < 0 {
			errs = append(errs, fmt.Sprintf("library.trash_retention: must be a non-negative duration like \"720h\", got %q", c.Library.TrashRetention))
		}
	}

	if c.Review.BatchSize < 0 {
		errs = append(errs, fmt.Sprintf("review.batch_size: must be positive, got %d", c.Review.BatchSize))
	}
	if c.Review.PreviewSize < 0 {
		errs = append(errs, fmt.Sprintf("review.preview_size: must be positive, got %d", c.Review.PreviewSize))
	}
	if c.Review.Filter != "" {
		if _, err := classify.ParseMode(c.Review.Filter); err != nil {
			errs = append(errs, fmt.Sprintf("review.filter: %v", err))
		}
	}

	if !validLogLevels[c.Log.Level] {
		errs = append(errs, fmt.Sprintf("log.level: must be one of debug, info, warn, error; got %q", c.Log.Level))
	}

	if c.User.Language != "" {
		tag, err := language.Parse(c.User.Language)
		if err != nil {
			errs = append(errs, fmt.Sprintf("user.language: %q is not a language tag", c.User.Language))
		} else if base, _ := tag.Base(); !supportedLanguages[base.String()] {
			errs = append(errs, fmt.Sprintf("user.language: must be en or es; got %q", c.User.Language))
		}
	}

	return errs
}

// Warnings reports non-fatal problems, such as a library root that does not
// exist yet.
func (c *Config) Warnings() []string {
	var warns []string
	if c.Library.Root != "" {
		if _, err := os.Stat(c.Library.Root); os.IsNotExist(err) {
			warns = append(warns, fmt.Sprintf("library.root: directory %q does not exist", c.Library.Root))
		}
	}
	return warns
}
