// Package config loads chartstudio settings.
//
// Priority: flags > environment > config file > .env > defaults. Environment
// variables use the CHARTSTUDIO_ prefix with dots replaced by underscores
// (CHARTSTUDIO_SERVER_PORT); the PORT and POSTGRES_* variables are honoured too.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/golammostafa13/chartstudio/database"
	"github.com/golammostafa13/chartstudio/datasource"
	"github.com/golammostafa13/chartstudio/errors"
)

const (
	EnvPrefix      = "CHARTSTUDIO"
	ConfigFileName = "chartstudio"
)

// LocalOrigins are the browser origins allowed by default.
var LocalOrigins = []string{
	"http://localhost", "http://localhost:*",
	"https://localhost", "https://localhost:*",
	"http://127.0.0.1", "http://127.0.0.1:*",
}

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	State    StateConfig    `mapstructure:"state"`
	Database DatabaseConfig `mapstructure:"database"`
	Log      LogConfig      `mapstructure:"log"`
	Render   RenderConfig   `mapstructure:"render"`
	Sources  SourcesConfig  `mapstructure:"sources"`

	// Debounce delays style commits coming from interactive editors.
	Debounce time.Duration `mapstructure:"debounce"`
}

type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// StateConfig locates the persisted session. An empty path keeps it in memory.
type StateConfig struct {
	Path string `mapstructure:"path"`
}

type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"`
	DSN      string `mapstructure:"dsn"`
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	MaxConns int32  `mapstructure:"max_conns"`
	MaxRows  int    `mapstructure:"max_rows"`
}

// SourcesConfig limits what HTTP clients may load. File sources are read
// only from below Root.
type SourcesConfig struct {
	Allowed []string `mapstructure:"allowed"`
	Root    string   `mapstructure:"root"`
}

// Policy converts the settings for the HTTP handlers.
func (s SourcesConfig) Policy() datasource.Policy {
	p := datasource.Policy{Root: s.Root}
	for _, k := range s.Allowed {
		p.Allowed = append(p.Allowed, datasource.Kind(strings.ToLower(strings.TrimSpace(k))))
	}
	return p
}

type LogConfig struct {
	JSON bool `mapstructure:"json"`
}

type RenderConfig struct {
	Width  int `mapstructure:"width"`
	Height int `mapstructure:"height"`
}

// Addr returns the listen address. A bare port gets a leading colon.
func (s ServerConfig) Addr() string {
	if strings.Contains(s.Port, ":") {
		return s.Port
	}
	return ":" + s.Port
}

// Connection converts the settings for database.Open.
func (d DatabaseConfig) Connection() database.Config {
	return database.Config{
		Driver:   d.Driver,
		DSN:      d.DSN,
		Host:     d.Host,
		Port:     d.Port,
		User:     d.User,
		Password: d.Password,
		Name:     d.Name,
		MaxConns: d.MaxConns,
	}
}

// New returns a viper instance with defaults and environment bindings.
func New() *viper.Viper {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Variables shared with other tools, without the prefix.
	_ = v.BindEnv("server.port", EnvPrefix+"_SERVER_PORT", "PORT")
	_ = v.BindEnv("database.host", EnvPrefix+"_DATABASE_HOST", "POSTGRES_HOST")
	_ = v.BindEnv("database.port", EnvPrefix+"_DATABASE_PORT", "POSTGRES_PORT")
	_ = v.BindEnv("database.user", EnvPrefix+"_DATABASE_USER", "POSTGRES_USER")
	_ = v.BindEnv("database.password", EnvPrefix+"_DATABASE_PASSWORD", "POSTGRES_PASSWORD")
	_ = v.BindEnv("database.name", EnvPrefix+"_DATABASE_NAME", "POSTGRES_DB")
	_ = v.BindEnv("database.dsn", EnvPrefix+"_DATABASE_DSN", "DATABASE_URL")
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.allowed_origins", LocalOrigins)

	v.SetDefault("state.path", "")

	v.SetDefault("sources.allowed", []string{string(datasource.KindStatic), string(datasource.KindSQL)})
	v.SetDefault("sources.root", "")

	v.SetDefault("database.driver", database.DriverPGX)
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.host", "")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "")
	v.SetDefault("database.max_conns", database.DefaultMaxConns)
	v.SetDefault("database.max_rows", 10000)

	v.SetDefault("debounce", 300*time.Millisecond)
	v.SetDefault("log.json", false)
	v.SetDefault("render.width", 800)
	v.SetDefault("render.height", 480)
}

// LoadDotEnv loads a .env file into the process environment without
// overriding variables that are already set. Callers treat a failure as a
// warning.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		return errors.Wrapf(err, "error loading %s file", path)
	}
	return nil
}

// Load reads the optional config file and unmarshals v. With cfgFile empty,
// chartstudio.yaml is looked up in the working directory.
func Load(v *viper.Viper, cfgFile string) (*Config, error) {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName(ConfigFileName)
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && (cfgFile != "" || !os.IsNotExist(err)) {
			return nil, errors.Wrapf(err, "error reading config file %s", v.ConfigFileUsed())
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	if cfg.Debounce < 0 {
		return nil, errors.Newf("debounce must not be negative, got %s", cfg.Debounce)
	}
	return &cfg, nil
}
