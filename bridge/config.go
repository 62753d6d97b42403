package bridge

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"
)

// ABIVersion is the engine ABI this package speaks.
const ABIVersion = 1

// Config locates and checks the native engine library.
type Config struct {
	// LibPath is the engine shared library; empty means next to the executable.
	LibPath    string `mapstructure:"lib_path"`
	ABIVersion uint32 `mapstructure:"abi_version"`
	LogLevel   string `mapstructure:"log_level"`
}

// LoadConfig reads CIDER_BRIDGE_* environment variables and, when path is not
// empty, a config file. Environment variables win over the file.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("CIDER_BRIDGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("lib_path", "")
	v.SetDefault("abi_version", ABIVersion)
	v.SetDefault("log_level", "info")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrap(err, "read config")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}
	return &cfg, nil
}
