package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/cast"
	"gopkg.in/yaml.v2"
)

type SysConfig struct {
	Appid             string `yaml:"appid"`
	Location          string `yaml:"location"`
	Workdir           string `yaml:"workdir"`
	LowStockThreshold int    `yaml:"low_stock_threshold"`
	ActivityRetention int    `yaml:"activity_retention_days"`
	Debug             bool   `yaml:"debug"`
}

type WebConfig struct {
	Host   string `yaml:"host"`
	Port   int    `yaml:"port"`
	Secret string `yaml:"secret"`
}

type StorageConfig struct {
	// Path of the bbolt database file; defaults to <workdir>/stockpilot.db.
	Path string `yaml:"path"`
}

type LogConfig struct {
	Mode       string `yaml:"mode"`
	FileEnable bool   `yaml:"file_enable"`
	Filename   string `yaml:"filename"`
}

type AdvisorConfig struct {
	ApiUrl  string `yaml:"apiurl"`
	ApiKey  string `yaml:"apikey"`
	Timeout int    `yaml:"timeout"`
}

type BackupConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Passphrase string `yaml:"passphrase"`
	Dir        string `yaml:"dir"`
	SftpHost   string `yaml:"sftp_host"`
	SftpPort   int    `yaml:"sftp_port"`
	SftpUser   string `yaml:"sftp_user"`
	SftpPasswd string `yaml:"sftp_passwd"`
	SftpDir    string `yaml:"sftp_dir"`
}

type SmtpConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
	To       string `yaml:"to"`
}

type AppConfig struct {
	System  SysConfig     `yaml:"system" json:"system"`
	Web     WebConfig     `yaml:"web" json:"web"`
	Storage StorageConfig `yaml:"storage" json:"storage"`
	Logger  LogConfig     `yaml:"logger" json:"logger"`
	Advisor AdvisorConfig `yaml:"advisor" json:"advisor"`
	Backup  BackupConfig  `yaml:"backup" json:"backup"`
	Smtp    SmtpConfig    `yaml:"smtp" json:"smtp"`
}

var DefaultAppConfig = &AppConfig{
	System: SysConfig{
		Appid:             "StockPilot",
		Location:          "Africa/Algiers",
		Workdir:           "/var/stockpilot",
		LowStockThreshold: 10,
		ActivityRetention: 365,
	},
	Web: WebConfig{
		Host:   "0.0.0.0",
		Port:   1880,
		Secret: "9b6de5cc-0001-1203-xxtt-0f568ac9da37",
	},
	Logger: LogConfig{
		Mode:       "development",
		FileEnable: true,
		Filename:   "/var/stockpilot/stockpilot.log",
	},
	Advisor: AdvisorConfig{
		Timeout: 60,
	},
	Backup: BackupConfig{
		SftpPort: 22,
	},
	Smtp: SmtpConfig{
		Port: 587,
	},
}

func setEnvValue(name string, val *string) {
	if v, ok := os.LookupEnv(name); ok {
		*val = v
	}
}

func setEnvIntValue(name string, val *int) {
	if v, ok := os.LookupEnv(name); ok {
		*val = cast.ToInt(v)
	}
}

func setEnvBoolValue(name string, val *bool) {
	if v, ok := os.LookupEnv(name); ok {
		*val = cast.ToBool(v)
	}
}

// LoadConfig reads the yaml configuration file and applies environment
// overrides. A missing file yields the defaults.
func LoadConfig(cfile string) *AppConfig {
	cfg := new(AppConfig)
	*cfg = *DefaultAppConfig
	if cfile != "" {
		if data, err := os.ReadFile(cfile); err == nil {
			_ = yaml.Unmarshal(data, cfg)
		}
	}

	setEnvValue("STOCKPILOT_SYSTEM_WORKDIR", &cfg.System.Workdir)
	setEnvValue("STOCKPILOT_SYSTEM_LOCATION", &cfg.System.Location)
	setEnvBoolValue("STOCKPILOT_SYSTEM_DEBUG", &cfg.System.Debug)
	setEnvValue("STOCKPILOT_WEB_HOST", &cfg.Web.Host)
	setEnvIntValue("STOCKPILOT_WEB_PORT", &cfg.Web.Port)
	setEnvValue("STOCKPILOT_WEB_SECRET", &cfg.Web.Secret)
	setEnvValue("STOCKPILOT_STORAGE_PATH", &cfg.Storage.Path)
	setEnvValue("STOCKPILOT_LOGGER_MODE", &cfg.Logger.Mode)
	setEnvValue("STOCKPILOT_ADVISOR_APIURL", &cfg.Advisor.ApiUrl)
	setEnvValue("STOCKPILOT_ADVISOR_APIKEY", &cfg.Advisor.ApiKey)
	setEnvValue("STOCKPILOT_BACKUP_PASSPHRASE", &cfg.Backup.Passphrase)
	setEnvValue("STOCKPILOT_SMTP_HOST", &cfg.Smtp.Host)
	setEnvValue("STOCKPILOT_SMTP_PASSWORD", &cfg.Smtp.Password)

	if cfg.Storage.Path == "" {
		cfg.Storage.Path = filepath.Join(cfg.System.Workdir, "stockpilot.db")
	}
	if cfg.Backup.Dir == "" {
		cfg.Backup.Dir = filepath.Join(cfg.System.Workdir, "backup")
	}
	return cfg
}
