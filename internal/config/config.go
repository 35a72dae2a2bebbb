package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/deploymenttheory/go-interactor/internal/common/fsutil"
	"github.com/deploymenttheory/go-interactor/internal/common/osutil"
	"github.com/spf13/viper"
)

const (
	// AppName is the application name used for config files and directories
	AppName = "go-interactor"

	// EnvPrefix is the prefix for environment variables
	EnvPrefix = "INTERACTOR"
)

// AppConfig holds the application configuration
type AppConfig struct {
	// Core settings
	Debug     bool   `mapstructure:"debug"`
	LogFormat string `mapstructure:"log_format"`
	LogFile   string `mapstructure:"log_file"`
	LogDir    string `mapstructure:"log_dir"` // where a bare log_file name is placed

	// Workflow settings
	Workflow struct {
		TempDir  string `mapstructure:"temp_dir"`
		CacheDir string `mapstructure:"cache_dir"`
	} `mapstructure:"workflow"`

	// Scanner settings
	Scanner struct {
		APIKey string `mapstructure:"api_key"` // VirusTotal API key
	} `mapstructure:"scanner"`
}

// Global variables
var (
	// Global configuration instance
	Instance AppConfig

	// Status indicators
	ConfigLoaded bool
	ConfigFile   string

	initOnce sync.Once
	initErr  error
)

// Initialize sets up the configuration system. Only the first call has any effect.
func Initialize(cfgFile string) error {
	initOnce.Do(func() {
		initErr = load(cfgFile)
	})
	return initErr
}

// Reload discards the current configuration and loads it again from cfgFile
func Reload(cfgFile string) error {
	initErr = load(cfgFile)
	return initErr
}

func load(cfgFile string) error {
	v := viper.New()

	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(AppName)
		v.SetConfigType("yaml")
		addSearchPaths(v)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	var err error
	if readErr := v.ReadInConfig(); readErr != nil {
		if _, ok := readErr.(viper.ConfigFileNotFoundError); !ok {
			// Only capture error if the config file was found but couldn't be read
			err = fmt.Errorf("error reading config file: %w", readErr)
		}
		ConfigLoaded = false
		ConfigFile = ""
	} else {
		ConfigLoaded = true
		ConfigFile = v.ConfigFileUsed()
	}

	cfg := AppConfig{}
	if unmarshalErr := v.Unmarshal(&cfg); unmarshalErr != nil {
		return fmt.Errorf("error parsing config: %w", unmarshalErr)
	}
	cfg.LogFile = resolveLogFile(cfg.LogDir, cfg.LogFile)
	Instance = cfg

	ensureDirectories()
	return err
}

// resolveLogFile places a bare file name in logDir; paths are kept as given
func resolveLogFile(logDir, logFile string) string {
	if logFile == "" || logDir == "" || filepath.Base(logFile) != logFile {
		return logFile
	}
	return filepath.Join(logDir, logFile)
}

// setDefaults sets default values for configuration
func setDefaults(v *viper.Viper) {
	v.SetDefault("debug", false)
	v.SetDefault("log_format", "human")
	v.SetDefault("log_file", "")

	if logDir, err := fsutil.GetLogDir(AppName); err == nil {
		v.SetDefault("log_dir", logDir)
	} else {
		v.SetDefault("log_dir", "logs")
	}

	v.SetDefault("workflow.temp_dir", fsutil.GetTempDir(AppName))

	cacheDir, err := fsutil.GetCacheDir(AppName)
	if err == nil {
		v.SetDefault("workflow.cache_dir", cacheDir)
	} else {
		v.SetDefault("workflow.cache_dir", "cache")
	}

	v.SetDefault("scanner.api_key", "")
}

// addSearchPaths adds config search paths
func addSearchPaths(v *viper.Viper) {
	// Always check current directory first
	v.AddConfigPath(".")

	if osutil.IsDevEnvironment() {
		return
	}

	if osutil.IsRunningInPipeline() {
		v.AddConfigPath("/etc/" + AppName)
		return
	}

	if configDir, err := fsutil.GetConfigDir(AppName); err == nil {
		v.AddConfigPath(configDir)
	}
	if systemConfigDir, err := fsutil.GetSystemConfigDir(AppName); err == nil {
		v.AddConfigPath(systemConfigDir)
	}
}

// ensureDirectories creates necessary directories based on configuration
func ensureDirectories() {
	// Don't create directories in a pipeline environment unless explicitly requested
	if osutil.IsRunningInPipeline() && os.Getenv("CREATE_DIRS") != "true" {
		return
	}

	if Instance.LogFile != "" {
		_ = fsutil.CreateDirIfNotExists(filepath.Dir(Instance.LogFile))
	}
	if Instance.Workflow.TempDir != "" {
		_ = fsutil.CreateDirIfNotExists(Instance.Workflow.TempDir)
	}
}
