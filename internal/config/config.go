// file: internal/config/config.go

package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

func homeDir() (string, error) {
	return os.UserHomeDir()
}

// Config holds the runtime settings read from a YAML config file and
// FLOPPYARCHIVE_* environment variables, the environment taking
// precedence over the file; flags a caller binds on the viper
// instance take precedence over both.
type Config struct {
	StorageDir   string
	GwPath       string
	ListenAddr   string
	InfoTimeout  time.Duration
	RpmTimeout   time.Duration
}

// Load builds a Config on v from the default config search path and
// the environment, over built-in defaults. It binds no flags itself;
// the serve command passes a fresh viper with none bound.
func Load(v *viper.Viper) (*Config, error) {
	if v == nil {
		v = viper.New()
	}

	home, err := homeDir()
	if err == nil {
		v.AddConfigPath(filepath.Join(home, ".floppyarchive"))
	}
	v.AddConfigPath(".")
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetEnvPrefix("FLOPPYARCHIVE")
	v.AutomaticEnv()

	v.SetDefault("storage_dir", defaultStorageDir(home))
	v.SetDefault("gw_path", "gw")
	v.SetDefault("listen_addr", ":8080")
	v.SetDefault("info_timeout", 30*time.Second)
	v.SetDefault("rpm_timeout", 15*time.Second)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	return &Config{
		StorageDir:  v.GetString("storage_dir"),
		GwPath:      v.GetString("gw_path"),
		ListenAddr:  v.GetString("listen_addr"),
		InfoTimeout: v.GetDuration("info_timeout"),
		RpmTimeout:  v.GetDuration("rpm_timeout"),
	}, nil
}

// WatchStorageDir re-reads the config on change and invokes onChange
// with the new storage directory whenever it differs from the
// previous value, so a caller can wholesale-invalidate its cache.
func WatchStorageDir(v *viper.Viper, onChange func(newDir string)) {
	last := v.GetString("storage_dir")
	v.OnConfigChange(func(_ fsnotify.Event) {
		next := v.GetString("storage_dir")
		if next != last {
			last = next
			onChange(next)
		}
	})
	v.WatchConfig()
}

func defaultStorageDir(home string) string {
	if home == "" {
		return "./images"
	}
	return filepath.Join(home, ".floppyarchive", "images")
}
