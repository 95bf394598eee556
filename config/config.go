package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cast"
	"gopkg.in/yaml.v2"
)

type SysConfig struct {
	Appid    string `yaml:"appid" json:"appid"`
	Location string `yaml:"location" json:"location"`
	Workdir  string `yaml:"workdir" json:"workdir"`
	Debug    bool   `yaml:"debug" json:"debug"`
}

type WebConfig struct {
	Host string `yaml:"host" json:"host"`
	Port int    `yaml:"port" json:"port"`
	// Secret signs the admin session cookie.
	Secret string `yaml:"secret" json:"secret"`
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

// StorageConfig describes the S3-compatible object storage endpoint
// that uploaded images are offloaded to.
type StorageConfig struct {
	Endpoint  string `yaml:"endpoint" json:"endpoint"`
	Region    string `yaml:"region" json:"region"`
	Bucket    string `yaml:"bucket" json:"bucket"`
	AccessKey string `yaml:"access_key" json:"access_key"`
	SecretKey string `yaml:"secret_key" json:"secret_key"`
	// PublicURL is the base under which uploaded objects are publicly
	// dereferenceable, e.g. a CDN or the provider's public bucket URL.
	PublicURL string `yaml:"public_url" json:"public_url"`
}

// AdminConfig holds the bootstrap credential pair used until an admin
// record exists in the database.
type AdminConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

type LogConfig struct {
	Mode       string `yaml:"mode" json:"mode"`
	FileEnable bool   `yaml:"file_enable" json:"file_enable"`
	Filename   string `yaml:"filename" json:"filename"`
}

type AppConfig struct {
	System   SysConfig     `yaml:"system" json:"system"`
	Web      WebConfig     `yaml:"web" json:"web"`
	Database DBConfig      `yaml:"database" json:"database"`
	Storage  StorageConfig `yaml:"storage" json:"storage"`
	Admin    AdminConfig   `yaml:"admin" json:"admin"`
	Logger   LogConfig     `yaml:"logger" json:"logger"`
}

func (c *AppConfig) GetLogDir() string {
	return filepath.Join(c.System.Workdir, "logs")
}

func (c *AppConfig) GetStageDir() string {
	return filepath.Join(c.System.Workdir, "temp-uploads")
}

func (c *AppConfig) GetPublicDir() string {
	return filepath.Join(c.System.Workdir, "public")
}

var DefaultAppConfig = &AppConfig{
	System: SysConfig{
		Appid:    "AyurCMS",
		Location: "Asia/Kolkata",
		Workdir:  "/var/ayurcms",
		Debug:    true,
	},
	Web: WebConfig{
		Host:   "0.0.0.0",
		Port:   3000,
		Secret: "9b6de5cc-ayurcms-0338-4f96-9917",
	},
	Database: DBConfig{
		Type:     "postgres",
		Host:     "127.0.0.1",
		Port:     5432,
		Name:     "ayurcms",
		User:     "postgres",
		Passwd:   "",
		MaxConn:  100,
		IdleConn: 10,
	},
	Storage: StorageConfig{
		Region: "us-east-1",
		Bucket: "images",
	},
	Admin: AdminConfig{
		Username: "doctor",
		Password: "ayurveda123",
	},
	Logger: LogConfig{
		Mode:       "development",
		FileEnable: true,
		Filename:   "/var/ayurcms/ayurcms.log",
	},
}

func setEnvValue(name string, val *string) {
	if evalue := os.Getenv(name); evalue != "" {
		*val = evalue
	}
}

func setEnvIntValue(name string, val *int) {
	if evalue := os.Getenv(name); evalue != "" {
		*val = cast.ToInt(evalue)
	}
}

func setEnvBoolValue(name string, val *bool) {
	if evalue := os.Getenv(name); evalue != "" {
		*val = cast.ToBool(evalue)
	}
}

// LoadConfig reads the YAML config file when it exists and then applies
// environment overrides. A missing file is not an error; defaults apply.
func LoadConfig(cfile string) *AppConfig {
	cfg := new(AppConfig)
	*cfg = *DefaultAppConfig
	if cfile != "" {
		if data, err := os.ReadFile(cfile); err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				fmt.Fprintf(os.Stderr, "config file %s parse error: %v\n", cfile, err)
			}
		}
	}

	setEnvValue("ACMS_SYSTEM_WORKDIR", &cfg.System.Workdir)
	setEnvBoolValue("ACMS_SYSTEM_DEBUG", &cfg.System.Debug)

	setEnvValue("ACMS_WEB_HOST", &cfg.Web.Host)
	setEnvIntValue("ACMS_WEB_PORT", &cfg.Web.Port)
	setEnvValue("ACMS_WEB_SECRET", &cfg.Web.Secret)

	setEnvValue("ACMS_DB_HOST", &cfg.Database.Host)
	setEnvIntValue("ACMS_DB_PORT", &cfg.Database.Port)
	setEnvValue("ACMS_DB_NAME", &cfg.Database.Name)
	setEnvValue("ACMS_DB_USER", &cfg.Database.User)
	setEnvValue("ACMS_DB_PWD", &cfg.Database.Passwd)
	setEnvBoolValue("ACMS_DB_DEBUG", &cfg.Database.Debug)

	setEnvValue("ACMS_STORAGE_ENDPOINT", &cfg.Storage.Endpoint)
	setEnvValue("ACMS_STORAGE_REGION", &cfg.Storage.Region)
	setEnvValue("ACMS_STORAGE_BUCKET", &cfg.Storage.Bucket)
	setEnvValue("ACMS_STORAGE_ACCESS_KEY", &cfg.Storage.AccessKey)
	setEnvValue("ACMS_STORAGE_SECRET_KEY", &cfg.Storage.SecretKey)
	setEnvValue("ACMS_STORAGE_PUBLIC_URL", &cfg.Storage.PublicURL)

	setEnvValue("ACMS_ADMIN_USERNAME", &cfg.Admin.Username)
	setEnvValue("ACMS_ADMIN_PASSWORD", &cfg.Admin.Password)

	return cfg
}
