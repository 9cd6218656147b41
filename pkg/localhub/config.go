package localhub

import (
	"fmt"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// Config tells the hub where entity state lives on disk.
type Config interface {
	BasePath() string
}

// LoadConfig resolves hub settings from an .alarmdeck config file and the
// environment. The base path defaults into the home directory.
func LoadConfig() (Config, error) {
	v := viper.New()
	v.SetDefault("path", "~/.alarmdeck.db")
	v.SetConfigName(".alarmdeck") // .yaml is implicit
	v.SetEnvPrefix("ALARMDECK")
	v.AutomaticEnv()
	v.AddConfigPath("./")
	v.AddConfigPath("$HOME")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("localhub: read config: %w", err)
		}
	}

	path, err := homedir.Expand(v.GetString("path"))
	if err != nil {
		return nil, fmt.Errorf("localhub: expand path: %w", err)
	}
	return &fileConfig{Path: path}, nil
}

// PathConfig wraps an explicit base path, mostly for tests.
func PathConfig(path string) Config {
	return &fileConfig{Path: path}
}

type fileConfig struct {
	Path string `json:"path"`
}

func (f *fileConfig) BasePath() string {
	return f.Path
}
