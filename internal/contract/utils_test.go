package contract

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShouldIgnore(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		excludes []string
		expected bool
	}{
		{"no patterns", "project_a", nil, false},
		{"blank pattern", "project_a", []string{"  "}, false},
		{"glob on name", "legacy_billing", []string{"legacy_*"}, true},
		{"glob miss", "billing", []string{"legacy_*"}, false},
		{"double star glob", "tmp_cache", []string{"**_cache"}, true},
		{"directory prefix", "vendor", []string{"vendor/"}, true},
		{"directory prefix nested", "vendor/lib", []string{"vendor/"}, true},
		{"directory prefix miss", "vendored", []string{"vendor/"}, false},
		{"suffix", "project.bak", []string{".bak"}, true},
		{"substring", "old-project", []string{"old"}, true},
		{"any pattern matches", "scratch", []string{"vendor/", "scratch"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ShouldIgnore(tt.path, tt.excludes))
		})
	}
}

func TestSelectOutputFile(t *testing.T) {
	t.Run("empty path is stdout", func(t *testing.T) {
		f, err := SelectOutputFile("")
		require.NoError(t, err)
		assert.Equal(t, os.Stdout, f)
	})

	t.Run("creates file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.csv")
		f, err := SelectOutputFile(path)
		require.NoError(t, err)
		require.NoError(t, f.Close())
		assert.FileExists(t, path)
	})

	t.Run("missing parent directory", func(t *testing.T) {
		_, err := SelectOutputFile(filepath.Join(t.TempDir(), "missing", "out.csv"))
		assert.Error(t, err)
	})
}

func TestTruncatePath(t *testing.T) {
	tests := []struct {
		path     string
		maxWidth int
		expected string
	}{
		{"short", 10, "short"},
		{"exactly_10", 10, "exactly_10"},
		{"a_much_longer_folder_name", 10, "...er_name"},
		{"abcdef", 3, "abcdef"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			result := TruncatePath(tt.path, tt.maxWidth)
			assert.Equal(t, tt.expected, result)
			if len(tt.path) > tt.maxWidth && tt.maxWidth > 3 {
				assert.True(t, strings.HasPrefix(result, "..."))
				assert.Len(t, []rune(result), tt.maxWidth)
			}
		})
	}
}

func TestParseBoolString(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
		wantErr  bool
	}{
		{"yes", true, false},
		{"TRUE", true, false},
		{"1", true, false},
		{"no", false, false},
		{"False", false, false},
		{"0", false, false},
		{"", false, true},
		{"maybe", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseBoolString(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestGetHistoryDBFilePath(t *testing.T) {
	path := GetHistoryDBFilePath()
	assert.Equal(t, ".metricsagg_history.db", filepath.Base(path))
}

func TestSetColors(t *testing.T) {
	original := color.NoColor
	t.Cleanup(func() { color.NoColor = original })

	tests := []struct {
		name     string
		detected bool
		enabled  bool
		expected bool
	}{
		{"disabled on a terminal", false, false, true},
		{"disabled when redirected", true, false, true},
		{"enabled keeps terminal detection", false, true, false},
		{"enabled keeps redirect detection", true, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			color.NoColor = tt.detected
			SetColors(tt.enabled)
			assert.Equal(t, tt.expected, color.NoColor)
		})
	}

	color.NoColor = true
	SetColors(true)
	assert.Equal(t, "done", SuccessColor.Sprint("done"))
}
