package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/sensemap/internal/paths"
	"github.com/mesh-intelligence/sensemap/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	envPrefix      = "SENSEMAP"

	cfgKeyBackend       = "backend"
	cfgKeyRedisAddr     = "redis.addr"
	cfgKeyRedisPassword = "redis.password"
	cfgKeyRedisDB       = "redis.db"
	cfgKeyRedisPrefix   = "redis.prefix"
	cfgKeyLogLevel      = "log.level"

	defaultBackend   = types.BackendSQLite
	defaultRedisAddr = "localhost:6379"
	defaultLogLevel  = "warn"
)

// configFile is the structure written to config.yaml by init.
type configFile struct {
	Backend string        `yaml:"backend"`
	DataDir string        `yaml:"data_dir,omitempty"`
	Redis   redisSection  `yaml:"redis"`
	Log     loggerSection `yaml:"log"`
}

type redisSection struct {
	Addr   string `yaml:"addr"`
	DB     int    `yaml:"db"`
	Prefix string `yaml:"prefix,omitempty"`
}

type loggerSection struct {
	Level string `yaml:"level"`
}

// loadConfig reads config.yaml from configDir. A missing file is not an
// error; defaults and SENSEMAP_* environment variables still apply.
func loadConfig(configDir string) (*viper.Viper, error) {
	v := viper.New()
	v.SetDefault(cfgKeyBackend, defaultBackend)
	v.SetDefault(cfgKeyRedisAddr, defaultRedisAddr)
	v.SetDefault(cfgKeyRedisDB, 0)
	v.SetDefault(cfgKeyLogLevel, defaultLogLevel)
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

// writeConfigIfMissing creates config.yaml with default values. An existing
// file is left alone. Reports whether a file was written.
func writeConfigIfMissing(path, dataDir string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return false, err
	}

	cfg := configFile{
		Backend: defaultBackend,
		DataDir: dataDir,
		Redis:   redisSection{Addr: defaultRedisAddr},
		Log:     loggerSection{Level: defaultLogLevel},
	}
	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return false, fmt.Errorf("marshal config: %w", err)
	}
	header := "# sensemap configuration\n# backend: sqlite or redis\n"
	if err := os.WriteFile(path, append([]byte(header), data...), 0o644); err != nil {
		return false, err
	}
	return true, nil
}

func configPath(dir string) string {
	return paths.ConfigFile(dir)
}

// dataDirFromConfig reads data_dir from config.yaml in dir, bypassing the
// environment so SENSEMAP_DATA_DIR ranks below the file. Returns "" if the
// file is missing or unreadable.
func dataDirFromConfig(dir string) string {
	data, err := os.ReadFile(configPath(dir))
	if err != nil {
		return ""
	}
	var cfg configFile
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return ""
	}
	return cfg.DataDir
}
