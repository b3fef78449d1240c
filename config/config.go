package config

import (
	"os"
	"path/filepath"

	"github.com/labstack/gommon/random"

	"github.com/phonemart/phonemart/pkg/common"
	"gopkg.in/yaml.v2"
)

type SysConfig struct {
	Appid    string `yaml:"appid" json:"appid"`
	Location string `yaml:"location" json:"location"`
	Workdir  string `yaml:"workdir" json:"workdir"`
	Debug    bool   `yaml:"debug" json:"debug"`
}

type WebConfig struct {
	Host     string `yaml:"host" json:"host"`
	Port     int    `yaml:"port" json:"port"`
	Secret   string `yaml:"secret" json:"secret"`
	MediaURL string `yaml:"media_url" json:"media_url"`
}

type DBConfig struct {
	Type     string `yaml:"type" json:"type"`
	Host     string `yaml:"host" json:"host"`
	Port     int    `yaml:"port" json:"port"`
	Name     string `yaml:"name" json:"name"`
	User     string `yaml:"user" json:"user"`
	Passwd   string `yaml:"passwd" json:"passwd"`
	MaxConn  int    `yaml:"max_conn" json:"max_conn"`
	IdleConn int    `yaml:"idle_conn" json:"idle_conn"`
	Debug    bool   `yaml:"debug" json:"debug"`
}

type LoggerConfig struct {
	Mode       string `yaml:"mode" json:"mode"`
	FileEnable bool   `yaml:"file_enable" json:"file_enable"`
	Filename   string `yaml:"filename" json:"filename"`
}

type StripeConfig struct {
	Enabled  bool   `yaml:"enabled" json:"enabled"`
	ApiKey   string `yaml:"api_key" json:"api_key"`
	Endpoint string `yaml:"endpoint" json:"endpoint"`
	Currency string `yaml:"currency" json:"currency"`
}

type AppConfig struct {
	System   SysConfig    `yaml:"system" json:"system"`
	Web      WebConfig    `yaml:"web" json:"web"`
	Database DBConfig     `yaml:"database" json:"database"`
	Logger   LoggerConfig `yaml:"logger" json:"logger"`
	Stripe   StripeConfig `yaml:"stripe" json:"stripe"`
}

func (c *AppConfig) GetLogDir() string {
	return filepath.Join(c.System.Workdir, "logs")
}

func (c *AppConfig) GetDataDir() string {
	return filepath.Join(c.System.Workdir, "data")
}

var DefaultAppConfig = &AppConfig{
	System: SysConfig{
		Appid:    "phonemart",
		Location: "Asia/Shanghai",
		Workdir:  "/var/phonemart",
		Debug:    true,
	},
	Web: WebConfig{
		Host:     "0.0.0.0",
		Port:     1816,
		Secret:   "9b6de5cc-0001-1203-xxtt-0f568ac9da37",
		MediaURL: "http://127.0.0.1:1816/media",
	},
	Database: DBConfig{
		Type:     "postgres",
		Host:     "127.0.0.1",
		Port:     5432,
		Name:     "phonemart",
		User:     "postgres",
		Passwd:   "myroot",
		MaxConn:  100,
		IdleConn: 10,
		Debug:    false,
	},
	Logger: LoggerConfig{
		Mode:       "development",
		FileEnable: true,
		Filename:   "/var/phonemart/phonemart.log",
	},
	Stripe: StripeConfig{
		Enabled:  false,
		Endpoint: "https://api.stripe.com",
		Currency: "usd",
	},
}

func setEnvValue(name string, f func(v string)) {
	if v := os.Getenv(name); v != "" {
		f(v)
	}
}

func setEnvBoolValue(name string, f func(v bool)) {
	if v := os.Getenv(name); v != "" {
		f(v == "true" || v == "1" || v == "on")
	}
}

// LoadConfig reads the YAML configuration file and applies environment
// overrides. A missing file yields the default configuration.
func LoadConfig(cfile string) *AppConfig {
	cfg := new(AppConfig)
	*cfg = *DefaultAppConfig
	if common.FileExists(cfile) {
		data, err := os.ReadFile(cfile)
		if err == nil {
			_ = yaml.Unmarshal(data, cfg)
		}
	}

	setEnvValue("PHONEMART_SYSTEM_WORKDIR", func(v string) { cfg.System.Workdir = v })
	setEnvBoolValue("PHONEMART_SYSTEM_DEBUG", func(v bool) { cfg.System.Debug = v })
	setEnvValue("PHONEMART_WEB_HOST", func(v string) { cfg.Web.Host = v })
	setEnvValue("PHONEMART_WEB_SECRET", func(v string) { cfg.Web.Secret = v })
	setEnvValue("PHONEMART_WEB_MEDIA_URL", func(v string) { cfg.Web.MediaURL = v })
	setEnvValue("PHONEMART_DB_TYPE", func(v string) { cfg.Database.Type = v })
	setEnvValue("PHONEMART_DB_HOST", func(v string) { cfg.Database.Host = v })
	setEnvValue("PHONEMART_DB_NAME", func(v string) { cfg.Database.Name = v })
	setEnvValue("PHONEMART_DB_USER", func(v string) { cfg.Database.User = v })
	setEnvValue("PHONEMART_DB_PWD", func(v string) { cfg.Database.Passwd = v })
	setEnvValue("PHONEMART_STRIPE_API_KEY", func(v string) { cfg.Stripe.ApiKey = v })
	setEnvBoolValue("PHONEMART_STRIPE_ENABLED", func(v bool) { cfg.Stripe.Enabled = v })

	// Never run with an empty signing secret.
	if cfg.Web.Secret == "" {
		cfg.Web.Secret = random.String(32)
	}

	return cfg
}
