package config

import (
	"fmt"
	"net"
	"path/filepath"
	"strings"

	"github.com/go-ozzo/ozzo-validation/v4/is"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/mitchellh/mapstructure"

	"github.com/spf13/viper"
)

const (
	defaultExtension = "yaml"
	defaultTagName   = "yaml"
)

const (
	ModeStandalone = "standalone"
	ModeClient     = "client"
	ModeServer     = "server"
)

type Binder interface {
	Bind(v *viper.Viper) error
}

type Loader interface {
	Load(name, path, envPrefix string, binder Binder) (Config, error)
}

type Config struct {
	Server    Server    `yaml:"server"`
	Metastore Metastore `yaml:"metastore"`
	LLM       LLM       `yaml:"llm"`
	Security  Security  `yaml:"security"`
	Export    Export    `yaml:"export"`
	API       API       `yaml:"api"`

	Mode     string `yaml:"mode"`
	LogLevel string `yaml:"log_level"`
	Debug    bool   `yaml:"debug"`
}

func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Server, validation.Required),
		validation.Field(&c.Security, validation.Required),
		validation.Field(&c.Export, validation.Required),
		validation.Field(&c.Mode, validation.Required, validation.In(ModeStandalone, ModeClient, ModeServer)),
		validation.Field(&c.LogLevel, validation.Required),
		validation.Field(&c.Metastore, validation.Skip.When(c.Mode == ModeClient), validation.Required),
	)
}

type Server struct {
	Hostname string `yaml:"hostname"`
	Address  string `yaml:"address"`
	Port     string `yaml:"port"`
	GRPCPort string `yaml:"grpc_port"`
	// RemoteEndpoint is the host:port of the server a client mode
	// process connects to.
	RemoteEndpoint string `yaml:"remote_endpoint"`
}

func (s Server) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Address, validation.Required, is.IP),
		validation.Field(&s.Hostname, validation.Required, is.Host),
		validation.Field(&s.Port, validation.Required, is.Port),
		validation.Field(&s.GRPCPort, validation.Required, is.Port),
	)
}

// Metastore is the postgres database where InsightPilot keeps saved
// connections, query history and cached schemas. Target databases that
// users query live in the connections table, not here.
type Metastore struct {
	UserName      string                 `yaml:"user_name"`
	Password      string                 `yaml:"password"`
	Host          string                 `yaml:"host"`
	Port          string                 `yaml:"port"`
	DatabaseName  string                 `yaml:"database_name"`
	SSLMode       string                 `yaml:"ssl_mode"`
	Configuration MetastoreConfiguration `yaml:"configuration"`
}

func (m Metastore) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.UserName, validation.Required),
		validation.Field(&m.Password, validation.Required),
		validation.Field(&m.Host, validation.Required, is.Host),
		validation.Field(&m.Port, validation.Required, is.Port),
		validation.Field(&m.DatabaseName, validation.Required),
		validation.Field(&m.SSLMode, validation.Required, validation.In("disable", "allow", "prefer", "require")),
	)
}

func (m Metastore) ConnectionString() string {
	return fmt.Sprintf("postgresql://%s:%s@%s/%s?sslmode=%s",
		m.UserName,
		m.Password,
		net.JoinHostPort(m.Host, m.Port),
		m.DatabaseName,
		m.SSLMode,
	)
}

type MetastoreConfiguration struct {
	MaxIdleConnections int `yaml:"max_idle_connections"`
	MaxOpenConnections int `yaml:"max_open_connections"`
}

type LLM struct {
	// DefaultConnection names the llm connection used when a request
	// does not pin a provider.
	DefaultConnection string `yaml:"default_connection"`
	TimeoutSeconds    int    `yaml:"timeout_seconds"`
}

type Security struct {
	QueryTimeoutSeconds int `yaml:"query_timeout_seconds"`
	MaxRows             int `yaml:"max_rows"`
	MaxHistoryDays      int `yaml:"max_history_days"`
}

func (s Security) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.QueryTimeoutSeconds, validation.Required),
		validation.Field(&s.MaxRows, validation.Required),
		validation.Field(&s.MaxHistoryDays, validation.Required),
	)
}

type Export struct {
	DefaultFormat string `yaml:"default_format"`
	ChartDPI      int    `yaml:"chart_dpi"`
	ChartWidth    int    `yaml:"chart_width"`
	ChartHeight   int    `yaml:"chart_height"`
}

func (e Export) Validate() error {
	return validation.ValidateStruct(&e,
		validation.Field(&e.DefaultFormat, validation.Required, validation.In("json", "csv")),
		validation.Field(&e.ChartDPI, validation.Required),
		validation.Field(&e.ChartWidth, validation.Required),
		validation.Field(&e.ChartHeight, validation.Required),
	)
}

type API struct {
	AuthToken string `yaml:"auth_token"`
}

type FileParts struct {
	FileName string
	Path     string
}

func ProcessConfigPath(configFile string) (FileParts, error) {
	absolutePath, err := filepath.Abs(configFile)
	if err != nil {
		return FileParts{}, fmt.Errorf("convert to absolute path: %w", err)
	}

	// Extract file name and extension
	fileName := filepath.Base(absolutePath)
	path := filepath.Dir(absolutePath)
	extension := filepath.Ext(fileName)

	if strings.ReplaceAll(strings.ToLower(extension), ".", "") != defaultExtension {
		return FileParts{}, fmt.Errorf("config file must have extension %s, got: %s", defaultExtension, extension)
	}

	return FileParts{
		FileName: fileName[:len(fileName)-len(extension)],
		Path:     path,
	}, nil
}

func NewFileSystemLoader() *FileSystemLoader {
	return &FileSystemLoader{}
}

type FileSystemLoader struct{}

func (fs *FileSystemLoader) Load(name, path, envPrefix string, b Binder) (Config, error) {
	v := viper.New()

	v.AddConfigPath(path)
	v.SetConfigName(name)
	v.SetConfigType(defaultExtension)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // So that env vars are translated properly
	v.AutomaticEnv()

	if b != nil {
		err := b.Bind(v)
		if err != nil {
			return Config{}, err
		}
	}

	v.SetEnvPrefix(envPrefix)

	err := v.ReadInConfig()
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var config Config

	err = v.Unmarshal(&config, func(cfg *mapstructure.DecoderConfig) {
		cfg.TagName = defaultTagName // We use yaml tags in the config structs so we can marshal to yaml
	})
	if err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	return config, nil
}

type EnvBinder struct {
	binders map[string]string
}

func (e *EnvBinder) Bind(v *viper.Viper) error {
	for envVar, key := range e.binders {
		err := v.BindEnv(key, envVar)
		if err != nil {
			return fmt.Errorf("bind env var %s to key %s: %w", envVar, key, err)
		}
	}

	return nil
}

func NewEnvBinder(binders map[string]string) *EnvBinder {
	return &EnvBinder{
		binders: binders,
	}
}

func NewDefaultEnvBinder() *EnvBinder {
	return NewEnvBinder(map[string]string{
		"INSIGHTPILOT_METASTORE_PASSWORD": "metastore.password",
		"INSIGHTPILOT_API_AUTH_TOKEN":     "api.auth_token",
	})
}
