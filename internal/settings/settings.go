// Package settings loads kafkagen configuration from <project>/.kafkagen.yaml
// and KAFKAGEN_* environment variables.
//
// Precedence (lowest to highest): defaults < file < environment. Command-line
// flags are applied by the caller on top of the returned Settings.
package settings

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"

	"kafkagen/internal/kafkaconf"
)

// FileName is the settings file looked up in the project directory.
const FileName = ".kafkagen.yaml"

// Settings holds kafkagen configuration.
type Settings struct {
	// Namespace is the top-level config key holding the managed block.
	Namespace string `mapstructure:"namespace"`
	// MainConfig and TestConfig are relative to the project directory.
	MainConfig string `mapstructure:"main_config"`
	TestConfig string `mapstructure:"test_config"`
	// BootstrapServers is written only when a config has none yet.
	BootstrapServers string `mapstructure:"bootstrap_servers"`
	// Artifacts toggles generation of source files next to the config.
	Artifacts bool `mapstructure:"artifacts"`
	// Topics are upserted into the topic map on every run.
	Topics map[string]string `mapstructure:"topics"`
}

// SetDefaults configures default values for every option.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("namespace", kafkaconf.DefaultNamespace)
	v.SetDefault("main_config", "src/main/resources/config/application.yml")
	v.SetDefault("test_config", "src/test/resources/config/application.yml")
	v.SetDefault("bootstrap_servers", "localhost:9092")
	v.SetDefault("artifacts", true)
}

// Load reads settings for the project rooted at root. A missing settings file
// is not an error; defaults and environment still apply.
func Load(root string) (*Settings, error) {
	v := viper.New()
	v.SetEnvPrefix("KAFKAGEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)

	path := filepath.Join(root, FileName)
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "read %s", path)
		}
	} else if !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "stat %s", path)
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, errors.Wrapf(err, "unmarshal settings")
	}
	if strings.TrimSpace(s.Namespace) == "" {
		return nil, errors.WithHint(errors.New("namespace must not be empty"),
			"remove the namespace key from "+FileName+" to use the default")
	}
	return &s, nil
}

// TopicList returns Topics sorted by key.
func (s *Settings) TopicList() []kafkaconf.Topic {
	if s == nil || len(s.Topics) == 0 {
		return nil
	}
	keys := make([]string, 0, len(s.Topics))
	for k := range s.Topics {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]kafkaconf.Topic, len(keys))
	for i, k := range keys {
		out[i] = kafkaconf.Topic{Key: k, Value: s.Topics[k]}
	}
	return out
}
