package config

import (
	"os"
	"path"
	"strings"

	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// DBConfig Database config
type DBConfig struct {
	Type     string `yaml:"type"` // postgres, sqlite, mongo, memory
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Passwd   string `yaml:"passwd"`
	URI      string `yaml:"uri"` // mongodb connection string
	MaxConn  int    `yaml:"max_conn"`
	IdleConn int    `yaml:"idle_conn"`
	Debug    bool   `yaml:"debug"`
}

// SysConfig System config
type SysConfig struct {
	Appid             string `yaml:"appid"`
	Location          string `yaml:"location"`
	Workdir           string `yaml:"workdir"`
	Env               string `yaml:"env"`
	SeedCatalog       bool   `yaml:"seed_catalog"`
	LowStockThreshold int    `yaml:"low_stock_threshold"`
}

// WebConfig Web config
type WebConfig struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	CorsOrigin     string `yaml:"cors_origin"`
	BodyLimit      string `yaml:"body_limit"`
	RequestTimeout int    `yaml:"request_timeout"` // seconds
	Metrics        bool   `yaml:"metrics"`
	Swagger        bool   `yaml:"swagger"`
}

// LogConfig Logger config
type LogConfig struct {
	Mode       string `yaml:"mode"`
	FileEnable bool   `yaml:"file_enable"`
	Filename   string `yaml:"filename"`
}

// OrdersConfig order placement behaviour
type OrdersConfig struct {
	// CompensateOnFailure releases stock reserved by a placement that fails
	// part way. When false, earlier reservations are kept.
	CompensateOnFailure bool  `yaml:"compensate_on_failure"`
	NodeID              int64 `yaml:"node_id"`
}

type IdempotencyConfig struct {
	Enabled bool `yaml:"enabled"`
	TTL     int  `yaml:"ttl"` // seconds
}

type MailConfig struct {
	Enabled      bool   `yaml:"enabled"`
	Host         string `yaml:"host"`
	Port         int    `yaml:"port"`
	Username     string `yaml:"username"`
	Password     string `yaml:"password"`
	From         string `yaml:"from"`
	OwnerAddress string `yaml:"owner_address"`
	Workers      int    `yaml:"workers"`
}

// AssistantConfig generative language API settings. The API key is read
// from the environment and never written to the config file by default.
type AssistantConfig struct {
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
	APIKey  string `yaml:"api_key"`
	Timeout int    `yaml:"timeout"` // seconds
}

type AppConfig struct {
	System      SysConfig         `yaml:"system"`
	Web         WebConfig         `yaml:"web"`
	Database    DBConfig          `yaml:"database"`
	Logger      LogConfig         `yaml:"logger"`
	Orders      OrdersConfig      `yaml:"orders"`
	Idempotency IdempotencyConfig `yaml:"idempotency"`
	Mail        MailConfig        `yaml:"mail"`
	Assistant   AssistantConfig   `yaml:"assistant"`
}

func (c *AppConfig) GetLogDir() string {
	return path.Join(c.System.Workdir, "logs")
}

func (c *AppConfig) GetDataDir() string {
	return path.Join(c.System.Workdir, "data")
}

func (c *AppConfig) IsDevelopment() bool {
	return strings.EqualFold(c.System.Env, EnvDevelopment)
}

func (c *AppConfig) initDirs() {
	_ = os.MkdirAll(c.GetLogDir(), 0o700)
	_ = os.MkdirAll(c.GetDataDir(), 0o700)
}

func setEnvValue(name string, val *string) {
	var evalue = os.Getenv(name)
	if evalue != "" {
		*val = evalue
	}
}

func setEnvBoolValue(name string, val *bool) {
	var evalue = os.Getenv(name)
	if evalue != "" {
		*val = cast.ToBool(evalue)
	}
}

func setEnvInt64Value(name string, val *int64) {
	var evalue = os.Getenv(name)
	if evalue == "" {
		return
	}
	*val = cast.ToInt64(evalue)
}

func setEnvIntValue(name string, val *int) {
	var evalue = os.Getenv(name)
	if evalue == "" {
		return
	}
	*val = cast.ToInt(evalue)
}

var DefaultAppConfig = &AppConfig{
	System: SysConfig{
		Appid:             "Plantee",
		Location:          "UTC",
		Workdir:           "/var/plantee",
		Env:               EnvProduction,
		SeedCatalog:       true,
		LowStockThreshold: 3,
	},
	Web: WebConfig{
		Host:           "0.0.0.0",
		Port:           5000,
		CorsOrigin:     "http://localhost:3000",
		BodyLimit:      "10M",
		RequestTimeout: 15,
		Metrics:        true,
		Swagger:        true,
	},
	Database: DBConfig{
		Type:     "postgres",
		Host:     "127.0.0.1",
		Port:     5432,
		Name:     "plantee",
		User:     "postgres",
		Passwd:   "postgres",
		URI:      "mongodb://127.0.0.1:27017",
		MaxConn:  100,
		IdleConn: 10,
		Debug:    false,
	},
	Logger: LogConfig{
		Mode:       "development",
		FileEnable: false,
		Filename:   "/var/plantee/logs/plantee.log",
	},
	Orders: OrdersConfig{
		CompensateOnFailure: true,
		NodeID:              1,
	},
	Idempotency: IdempotencyConfig{
		Enabled: true,
		TTL:     86400,
	},
	Mail: MailConfig{
		Enabled: false,
		Port:    587,
		From:    "Plantee <no-reply@plantee.local>",
		Workers: 4,
	},
	Assistant: AssistantConfig{
		BaseURL: "https://generativelanguage.googleapis.com",
		Model:   "gemini-2.0-flash",
		Timeout: 20,
	},
}

// Default returns a copy of DefaultAppConfig that callers may mutate.
func Default() *AppConfig {
	cfg := *DefaultAppConfig
	return &cfg
}

// LoadConfig reads a yaml config file on top of the defaults, then applies
// environment overrides. An empty or missing file yields the defaults.
func LoadConfig(cfile string) *AppConfig {
	cfg := Default()
	if cfile != "" {
		if data, err := os.ReadFile(cfile); err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				panic(err)
			}
		}
	}
	applyEnv(cfg)
	cfg.initDirs()
	return cfg
}

func applyEnv(cfg *AppConfig) {
	setEnvValue("PLANTEE_SYSTEM_WORKER_DIR", &cfg.System.Workdir)
	setEnvValue("PLANTEE_SYSTEM_ENV", &cfg.System.Env)
	setEnvValue("PLANTEE_SYSTEM_LOCATION", &cfg.System.Location)
	setEnvBoolValue("PLANTEE_SYSTEM_SEED_CATALOG", &cfg.System.SeedCatalog)
	setEnvIntValue("PLANTEE_SYSTEM_LOW_STOCK_THRESHOLD", &cfg.System.LowStockThreshold)

	setEnvValue("PLANTEE_WEB_HOST", &cfg.Web.Host)
	setEnvIntValue("PLANTEE_WEB_PORT", &cfg.Web.Port)
	setEnvValue("PLANTEE_WEB_CORS_ORIGIN", &cfg.Web.CorsOrigin)
	setEnvValue("PLANTEE_WEB_BODY_LIMIT", &cfg.Web.BodyLimit)
	setEnvBoolValue("PLANTEE_WEB_METRICS", &cfg.Web.Metrics)
	setEnvBoolValue("PLANTEE_WEB_SWAGGER", &cfg.Web.Swagger)

	setEnvValue("PLANTEE_DB_TYPE", &cfg.Database.Type)
	setEnvValue("PLANTEE_DB_HOST", &cfg.Database.Host)
	setEnvIntValue("PLANTEE_DB_PORT", &cfg.Database.Port)
	setEnvValue("PLANTEE_DB_NAME", &cfg.Database.Name)
	setEnvValue("PLANTEE_DB_USER", &cfg.Database.User)
	setEnvValue("PLANTEE_DB_PWD", &cfg.Database.Passwd)
	setEnvValue("PLANTEE_DB_URI", &cfg.Database.URI)
	setEnvBoolValue("PLANTEE_DB_DEBUG", &cfg.Database.Debug)

	setEnvValue("PLANTEE_LOGGER_MODE", &cfg.Logger.Mode)
	setEnvBoolValue("PLANTEE_LOGGER_FILE_ENABLE", &cfg.Logger.FileEnable)

	setEnvBoolValue("PLANTEE_ORDERS_COMPENSATE", &cfg.Orders.CompensateOnFailure)
	setEnvInt64Value("PLANTEE_ORDERS_NODE_ID", &cfg.Orders.NodeID)

	setEnvBoolValue("PLANTEE_IDEMPOTENCY_ENABLED", &cfg.Idempotency.Enabled)

	setEnvBoolValue("PLANTEE_MAIL_ENABLED", &cfg.Mail.Enabled)
	setEnvValue("PLANTEE_MAIL_HOST", &cfg.Mail.Host)
	setEnvIntValue("PLANTEE_MAIL_PORT", &cfg.Mail.Port)
	setEnvValue("PLANTEE_MAIL_USERNAME", &cfg.Mail.Username)
	setEnvValue("PLANTEE_MAIL_PASSWORD", &cfg.Mail.Password)
	setEnvValue("PLANTEE_MAIL_FROM", &cfg.Mail.From)
	setEnvValue("PLANTEE_MAIL_OWNER", &cfg.Mail.OwnerAddress)

	setEnvValue("GEMINI_API_KEY", &cfg.Assistant.APIKey)
	setEnvValue("PLANTEE_ASSISTANT_API_KEY", &cfg.Assistant.APIKey)
	setEnvValue("PLANTEE_ASSISTANT_MODEL", &cfg.Assistant.Model)
	setEnvValue("PLANTEE_ASSISTANT_BASE_URL", &cfg.Assistant.BaseURL)
}
