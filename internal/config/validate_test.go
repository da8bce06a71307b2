// internal/config/validate_test.go
package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate_MinimalValid(t *testing.T) {
	cfg := &Config{
		Library: LibraryConfig{Root: "/tmp"},
	}
	errs := cfg.Validate()
	assert.Empty(t, errs, "expected no errors for minimal valid config")
}

func TestValidate_NoLibrary(t *testing.T) {
	cfg := &Config{}
	errs := cfg.Validate()
	assert.True(t, containsErrorBoth(errs, "library.root", "required"), "expected library error, got %v", errs)
}

func TestValidate_NegativeBatchSize(t *testing.T) {
	cfg := &Config{
		Library: LibraryConfig{Root: "/tmp"},
		Review:  ReviewConfig{BatchSize: -1},
	}
	errs := cfg.Validate()
	assert.True(t, containsError(errs, "review.batch_size"), "expected batch_size error, got %v", errs)
}

func TestValidate_NegativePreviewSize(t *testing.T) {
	cfg := &Config{
		Library: LibraryConfig{Root: "/tmp"},
		Review:  ReviewConfig{PreviewSize: -800},
	}
	errs := cfg.Validate()
	assert.True(t, containsError(errs, "review.preview_size"), "expected preview_size error, got %v", errs)
}

func TestValidate_Filter(t *testing.T) {
	tests := []struct {
		filter  string
		wantErr bool
	}{
		{"random", false},
		{"screenshots", false},
		{"Current-Month", false},
		{"archive", false},
		{"screenshts", true},
		{"everything", true},
	}
	for _, tt := range tests {
		t.Run(tt.filter, func(t *testing.T) {
			cfg := &Config{
				Library: LibraryConfig{Root: "/tmp"},
				Review:  ReviewConfig{Filter: tt.filter},
			}
			errs := cfg.Validate()
			assert.Equal(t, tt.wantErr, containsError(errs, "review.filter"), "errors: %v", errs)
		})
	}
}

func TestValidate_FilterSuggestion(t *testing.T) {
	cfg := &Config{
		Library: LibraryConfig{Root: "/tmp"},
		Review:  ReviewConfig{Filter: "screenshts"},
	}
	errs := cfg.Validate()
	assert.True(t, containsErrorBoth(errs, "review.filter", "did you mean"), "expected suggestion, got %v", errs)
}

func TestValidate_TrashRetention(t *testing.T) {
	for _, v := range []string{"720h", "0", "36h30m"} {
		cfg := &Config{Library: LibraryConfig{Root: "/tmp", TrashRetention: v}}
		assert.False(t, containsError(cfg.Validate(), "library.trash_retention"), v)
	}
	for _, v := range []string{"30 days", "-1h"} {
		cfg := &Config{Library: LibraryConfig{Root: "/tmp", TrashRetention: v}}
		assert.True(t, containsError(cfg.Validate(), "library.trash_retention"), v)
	}
}

func TestValidate_InvalidLogLevel(t *testing.T) {
	cfg := &Config{
		Library: LibraryConfig{Root: "/tmp"},
		Log:     LogConfig{Level: "verbose"},
	}
	errs := cfg.Validate()
	assert.True(t, containsError(errs, "log.level"), "expected log.level error, got %v", errs)
}

func TestValidate_Language(t *testing.T) {
	tests := []struct {
		lang    string
		wantErr bool
	}{
		{"en", false},
		{"es", false},
		{"es-MX", false},
		{"en-GB", false},
		{"fr", true},
		{"not a tag!", true},
	}
	for _, tt := range tests {
		t.Run(tt.lang, func(t *testing.T) {
			cfg := &Config{
				Library: LibraryConfig{Root: "/tmp"},
				User:    UserConfig{Language: tt.lang},
			}
			errs := cfg.Validate()
			assert.Equal(t, tt.wantErr, containsError(errs, "user.language"), "errors: %v", errs)
		})
	}
}

func TestWarnings_LibraryRootMissing(t *testing.T) {
	cfg := &Config{
		Library: LibraryConfig{Root: "/nonexistent/path/12345"},
	}
	assert.Empty(t, cfg.Validate())
	assert.True(t, containsError(cfg.Warnings(), "does not exist"), "expected warning for nonexistent path, got %v", cfg.Warnings())
}

func TestWarnings_LibraryRootExists(t *testing.T) {
	tmp := t.TempDir()
	cfg := &Config{
		Library: LibraryConfig{Root: tmp},
	}
	assert.Empty(t, cfg.Warnings())
}

// Helper functions to check for errors containing specific strings
func containsError(errs []string, substr string) bool {
	for _, e := range errs {
		if strings.Contains(e, substr) {
			return true
		}
	}
	return false
}

func containsErrorBoth(errs []string, substr1, substr2 string) bool {
	for _, e := range errs {
		if strings.Contains(e, substr1) && strings.Contains(e, substr2) {
			return true
		}
	}
	return false
}
