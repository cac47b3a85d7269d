package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{name: "Test1 OK", args: []string{"-b", "redis", "-r", "cache:6379", "-t", "30", "-z", "UTC", "-l", "debug"},
			expected: &Config{StorageBackend: "redis", RedisAddr: "cache:6379", ExtractTimeout: 30 * time.Second, Timezone: "UTC", LogLevel: "debug"}},
		{name: "Test2 unrelated flags ignored", args: []string{"-c", "cfg.json", "-env", "x.env", "-d", "/tmp/sora"},
			expected: &Config{DataDir: "/tmp/sora"}},
		{name: "Test3 incorrect timeout", args: []string{"-t", "abc"}, expectPanic: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := &Config{}

			if !tt.expectPanic {
				require.NotPanics(t, func() { parseFlags(config, tt.args) })
				assert.Empty(t, cmp.Diff(config, tt.expected))
			} else {
				require.Panics(t, func() { parseFlags(config, tt.args) })
			}
		})
	}
}
