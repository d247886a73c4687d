package settings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kafkagen/internal/kafkaconf"
)

func TestLoadDefaults(t *testing.T) {
	s, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "kafka", s.Namespace)
	assert.Equal(t, "src/main/resources/config/application.yml", s.MainConfig)
	assert.Equal(t, "src/test/resources/config/application.yml", s.TestConfig)
	assert.Equal(t, "localhost:9092", s.BootstrapServers)
	assert.True(t, s.Artifacts)
	assert.Empty(t, s.TopicList())
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(`bootstrap_servers: ${KAFKA_BOOTSTRAP_SERVERS:localhost:9092}
artifacts: false
topics:
  zeta: z-topic
  alpha: a-topic
`), 0o644))

	s, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "${KAFKA_BOOTSTRAP_SERVERS:localhost:9092}", s.BootstrapServers)
	assert.False(t, s.Artifacts)
	assert.Equal(t, "kafka", s.Namespace, "unset keys keep defaults")
	assert.Equal(t, []kafkaconf.Topic{
		{Key: "alpha", Value: "a-topic"},
		{Key: "zeta", Value: "z-topic"},
	}, s.TopicList())
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte("namespace: broker\n"), 0o644))
	t.Setenv("KAFKAGEN_NAMESPACE", "messaging")

	s, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "messaging", s.Namespace)
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte("namespace: [\n"), 0o644))
	_, err := Load(dir)
	assert.Error(t, err)

	dir = t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte("namespace: \"\"\n"), 0o644))
	_, err = Load(dir)
	assert.Error(t, err)
}
