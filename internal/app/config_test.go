package app

import (
	"testing"

	"dojo/internal/config"

	"github.com/stretchr/testify/assert"
)

func TestNewConfig(t *testing.T) {
	cfg := NewConfig(true, "/etc/dojo")

	assert.True(t, cfg.Debug)
	assert.Equal(t, "/etc/dojo", cfg.ConfigPath)
	assert.True(t, cfg.WatchConfig)
	assert.Nil(t, cfg.DojoConfig)
}

func TestApplyOverrides(t *testing.T) {
	tests := []struct {
		name  string
		cfg   Config
		check func(t *testing.T, dc config.DojoConfig)
	}{
		{
			name: "zero values leave config untouched",
			cfg:  Config{},
			check: func(t *testing.T, dc config.DojoConfig) {
				assert.Equal(t, config.GetDefaultConfig(), dc)
			},
		},
		{
			name: "flags win",
			cfg: Config{
				Port:          8080,
				AllowedOrigin: "*",
				StartupPolicy: "lenient",
				LogFormat:     "json",
			},
			check: func(t *testing.T, dc config.DojoConfig) {
				assert.Equal(t, 8080, dc.Server.Port)
				assert.Equal(t, "*", dc.Server.AllowedOrigin)
				assert.Equal(t, config.StartupPolicyLenient, dc.Engine.StartupPolicy)
				assert.Equal(t, "json", dc.Log.Format)
			},
		},
		{
			name: "debug forces debug level",
			cfg:  Config{Debug: true},
			check: func(t *testing.T, dc config.DojoConfig) {
				assert.Equal(t, "debug", dc.Log.Level)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dc := config.GetDefaultConfig()
			tt.cfg.applyOverrides(&dc)
			tt.check(t, dc)
		})
	}
}
