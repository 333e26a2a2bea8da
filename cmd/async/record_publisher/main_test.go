package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/log4j_xml_reader_service/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const event = `<log4j:event logger="a" timestamp="1000" level="INFO" thread="main">
<log4j:message>hello</log4j:message>
</log4j:event>
`

func TestRun_PublishesSources(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.xml")
	require.NoError(t, os.WriteFile(path, []byte(event), 0o644))

	cfg := config.Default()
	cfg.Sources = []string{path}

	assert.NoError(t, run(context.Background(), cfg, zap.NewNop().Sugar()))
}

func TestRun_ReportsFailures(t *testing.T) {
	unreadable := filepath.Join(t.TempDir(), "missing-dir", "app.xml")

	tests := []struct {
		name   string
		modify func(cfg *config.Config)
	}{
		{"no sources", func(cfg *config.Config) {}},
		{"invalid filter", func(cfg *config.Config) {
			cfg.Sources = []string{unreadable}
			cfg.Filter.Level = "LOUD"
		}},
		{"unreadable source", func(cfg *config.Config) {
			cfg.Sources = []string{unreadable}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.modify(cfg)
			assert.Error(t, run(context.Background(), cfg, zap.NewNop().Sugar()))
		})
	}

	cfg := config.Default()
	assert.ErrorIs(t, run(context.Background(), cfg, zap.NewNop().Sugar()), errNoSources)
}
