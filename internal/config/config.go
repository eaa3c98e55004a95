package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Conf holds the application configuration, making it accessible globally.
var Conf *Config

var (
	mu sync.RWMutex
	v  *viper.Viper
)

// Config struct is the top-level configuration structure.
type Config struct {
	Server         ServerConfig         `mapstructure:"server"`
	Logging        LoggingConfig        `mapstructure:"logging"`
	Export         ExportConfig         `mapstructure:"export"`
	Render         RenderConfig         `mapstructure:"render"`
	Autocorrect    AutocorrectConfig    `mapstructure:"autocorrect"`
	Questionnaires QuestionnairesConfig `mapstructure:"questionnaires"`
}

// ServerConfig holds settings for the local wizard API.
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
	// ExportLimit caps export requests per client per minute.
	ExportLimit uint `mapstructure:"export_limit"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}

// LoggingConfig holds settings for the logger.
type LoggingConfig struct {
	Directory  string `mapstructure:"directory"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
	Console    bool   `mapstructure:"console"`
}

// ExportConfig holds settings for the export pipeline.
type ExportConfig struct {
	// SavePayload writes the snapshot JSON next to the archive so it can be
	// rebuilt later with `kscore bundle`.
	SavePayload bool `mapstructure:"save_payload"`
}

// RenderConfig holds the fixed page layout used for PDF documents.
type RenderConfig struct {
	BrowserBin  string  `mapstructure:"browser_bin"`
	Headless    bool    `mapstructure:"headless"`
	PaperWidth  float64 `mapstructure:"paper_width"`  // inches
	PaperHeight float64 `mapstructure:"paper_height"` // inches
	Margin      float64 `mapstructure:"margin"`       // inches
	Background  bool    `mapstructure:"print_background"`
}

// AutocorrectConfig holds settings for the word corrector.
type AutocorrectConfig struct {
	// Dictionary is an optional newline-separated word list. The embedded
	// list is used when empty.
	Dictionary  string `mapstructure:"dictionary"`
	MaxDistance int    `mapstructure:"max_distance"`
}

// QuestionnairesConfig points at the questionnaire definitions.
type QuestionnairesConfig struct {
	// Path to a questionnaires.yaml. The embedded definitions are used when empty.
	Path string `mapstructure:"path"`
}

// setDefaults sets the default values for the configuration.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", "5051")
	v.SetDefault("server.export_limit", 10)

	// Logging defaults
	v.SetDefault("logging.directory", "logs")
	v.SetDefault("logging.max_size", 10)   // 10 MB
	v.SetDefault("logging.max_backups", 3) // Keep 3 backups
	v.SetDefault("logging.max_age", 7)     // 7 days
	v.SetDefault("logging.compress", true) // Compress old logs
	v.SetDefault("logging.console", true)

	v.SetDefault("export.save_payload", false)

	// A4, no margins
	v.SetDefault("render.browser_bin", "")
	v.SetDefault("render.headless", true)
	v.SetDefault("render.paper_width", 8.27)
	v.SetDefault("render.paper_height", 11.69)
	v.SetDefault("render.margin", 0.0)
	v.SetDefault("render.print_background", true)

	v.SetDefault("autocorrect.dictionary", "")
	v.SetDefault("autocorrect.max_distance", 2)

	v.SetDefault("questionnaires.path", "")
}

// Load reads the configuration from <projectRoot>/config/config.yaml, the
// environment and the defaults, and stores it in Conf.
func Load(projectRoot string) (*Config, error) {
	nv := viper.New()

	// Set default values
	setDefaults(nv)

	// --- File Configuration ---
	nv.AddConfigPath(filepath.Join(projectRoot, "config"))
	nv.SetConfigName("config")
	nv.SetConfigType("yaml")

	// --- Environment Variable Binding ---
	nv.SetEnvPrefix("KSCORE") // e.g., KSCORE_SERVER_PORT
	nv.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	nv.AutomaticEnv()

	// It's okay if the file doesn't exist; defaults and env vars will be used.
	if err := nv.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var conf Config
	if err := nv.Unmarshal(&conf); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	mu.Lock()
	v = nv
	Conf = &conf
	mu.Unlock()
	return &conf, nil
}

// Watch reloads Conf whenever the config file changes. Components that were
// already built keep the values they were constructed with.
func Watch(log *zap.Logger) {
	mu.RLock()
	nv := v
	mu.RUnlock()
	if nv == nil || nv.ConfigFileUsed() == "" {
		return
	}

	nv.WatchConfig()
	nv.OnConfigChange(func(e fsnotify.Event) {
		log.Info("Configuration file changed, reloading.", zap.String("file", e.Name))
		var conf Config
		if err := nv.Unmarshal(&conf); err != nil {
			log.Error("Error reloading configuration", zap.Error(err))
			return
		}
		mu.Lock()
		Conf = &conf
		mu.Unlock()
	})
}
