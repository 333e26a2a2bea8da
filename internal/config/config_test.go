package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/log4j_xml_reader_service/internal/config"
	"github.com/log4j_xml_reader_service/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load("", "")
	require.NoError(t, err)
	assert.Equal(t, 500, cfg.BatchSize)
	assert.Equal(t, 500*time.Millisecond, cfg.BatchTimeout)
	assert.Equal(t, "log4j_records", cfg.Kafka.RecordsTopic)
	assert.Equal(t, "records", cfg.Mongo.Collection)
}

func TestLoad_YamlThenEnv(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(`
sources:
  - /var/log/app/app.xml
batch_size: 50
batch_timeout: 2s
filter:
  level: warn
  logger: com.acme
kafka:
  records_topic: from_yaml
`), 0o644))

	t.Setenv("KAFKA_RECORDS_TOPIC", "from_env")
	t.Setenv("LOG4J_SOURCES", "/a.xml, /b.xml,")

	cfg, err := config.Load("", yamlPath)
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.BatchSize)
	assert.Equal(t, 2*time.Second, cfg.BatchTimeout)
	assert.Equal(t, "from_env", cfg.Kafka.RecordsTopic)
	assert.Equal(t, []string{"/a.xml", "/b.xml"}, cfg.Sources)

	params, err := cfg.Filter.Params()
	require.NoError(t, err)
	assert.Equal(t, entity.LevelWarn, params.Level)
	assert.Equal(t, "com.acme", params.Logger)
	assert.Nil(t, params.Date)
}

func TestLoad_EnvFile(t *testing.T) {
	t.Setenv("LOG4J_FILTER_THREAD", "")
	require.NoError(t, os.Unsetenv("LOG4J_FILTER_THREAD"))

	envPath := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envPath, []byte("LOG4J_FILTER_THREAD=worker-9\n"), 0o644))

	cfg, err := config.Load(envPath, "")
	require.NoError(t, err)
	assert.Equal(t, "worker-9", cfg.Filter.Thread)

	_, err = config.Load(filepath.Join(t.TempDir(), "absent.env"), "")
	assert.NoError(t, err, "a missing env file is not an error")
}

func TestLoad_Invalid(t *testing.T) {
	t.Run("batch size", func(t *testing.T) {
		t.Setenv("BATCH_SIZE", "zero")
		_, err := config.Load("", "")
		assert.Error(t, err)
	})
	t.Run("kafka without server", func(t *testing.T) {
		t.Setenv("USE_KAFKA", "true")
		t.Setenv("KAFKA_BOOTSTRAP_SERVER", "")
		_, err := config.Load("", "")
		assert.Error(t, err)
	})
	t.Run("filter level", func(t *testing.T) {
		t.Setenv("LOG4J_FILTER_LEVEL", "verbose")
		_, err := config.Load("", "")
		assert.Error(t, err)
	})
}

func TestFilterConfig_Since(t *testing.T) {
	params, err := config.FilterConfig{Since: "2024-03-09 10:15:00"}.Params()
	require.NoError(t, err)
	require.NotNil(t, params.Date)
	assert.True(t, params.Date.Equal(time.Date(2024, 3, 9, 10, 15, 0, 0, time.Local)))

	params, err = config.FilterConfig{Since: "2024-03-09T10:15:00Z"}.Params()
	require.NoError(t, err)
	assert.True(t, params.Date.Equal(time.Date(2024, 3, 9, 10, 15, 0, 0, time.UTC)))

	_, err = config.FilterConfig{Since: "last tuesday"}.Params()
	assert.Error(t, err)
}
