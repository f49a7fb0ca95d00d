package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type HTTP struct {
	Host              string
	Port              int
	BasePath          string
	ReadTimeoutSec    int
	WriteTimeoutSec   int
	IdleTimeoutSec    int
	RequestTimeoutSec int
	MaxInFlight       int
	MaxBodyBytes      int64
	CORSOrigins       []string `mapstructure:"corsOrigins"`
}

type App struct {
	Name string
	Env  string
	HTTP HTTP
}

type LogFile struct {
	Enable     bool
	Filename   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

type Log struct {
	Level string
	JSON  bool
	File  LogFile
}

type JWT struct {
	Secret            string
	Issuer            string
	AccessTokenTTLMin int
}

type Redis struct {
	Addr          string `mapstructure:"addr"`
	Password      string `mapstructure:"password"`
	DB            int    `mapstructure:"db"`
	ProfileTTLSec int    `mapstructure:"profileTTLSec"`
}

type DB struct {
	Driver             string
	DSN                string
	Username           string
	Password           string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int
	AutoMigrate        bool
	LogLevel           string
}

type Storage struct {
	Driver        string
	Endpoint      string
	Region        string
	Bucket        string
	AccessKey     string
	SecretKey     string
	PublicBaseURL string `mapstructure:"publicBaseURL"`
	UsePathStyle  bool
}

type Upload struct {
	MaxAvatarBytes int64
}

type Config struct {
	App     App
	Log     Log
	JWT     JWT
	DB      DB
	Redis   Redis `mapstructure:"redis"`
	Storage Storage
	Upload  Upload
}

func (h HTTP) RequestTimeout() time.Duration {
	return time.Duration(h.RequestTimeoutSec) * time.Second
}

func (j JWT) TTL() time.Duration {
	return time.Duration(j.AccessTokenTTLMin) * time.Minute
}

func (r Redis) ProfileTTL() time.Duration {
	return time.Duration(r.ProfileTTLSec) * time.Second
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "linkbio")
	v.SetDefault("app.env", "dev")
	v.SetDefault("app.http.host", "0.0.0.0")
	v.SetDefault("app.http.port", 5000)
	v.SetDefault("app.http.basePath", "/api")
	v.SetDefault("app.http.readTimeoutSec", 15)
	v.SetDefault("app.http.writeTimeoutSec", 30)
	v.SetDefault("app.http.idleTimeoutSec", 60)
	v.SetDefault("app.http.requestTimeoutSec", 10)
	v.SetDefault("app.http.maxInFlight", 256)
	v.SetDefault("app.http.maxBodyBytes", 4<<20)
	v.SetDefault("app.http.corsOrigins", []string{"*"})

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file.filename", "logs/linkbio.log")
	v.SetDefault("log.file.maxSizeMB", 100)
	v.SetDefault("log.file.maxBackups", 5)
	v.SetDefault("log.file.maxAgeDays", 14)

	v.SetDefault("jwt.issuer", "linkbio")
	v.SetDefault("jwt.accessTokenTTLMin", 1440)

	v.SetDefault("db.driver", "postgres")
	v.SetDefault("db.maxOpenConns", 20)
	v.SetDefault("db.maxIdleConns", 5)
	v.SetDefault("db.connMaxLifetimeMin", 30)
	v.SetDefault("db.logLevel", "warn")

	v.SetDefault("redis.profileTTLSec", 60)

	v.SetDefault("storage.driver", "s3")
	v.SetDefault("storage.region", "us-east-1")

	v.SetDefault("upload.maxAvatarBytes", 2<<20)
}

// Read loads the YAML file at path (or $CONFIG_PATH) with APP_ env overrides.
func Read(path string) (*Config, error) {
	v := viper.New()
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
		if path == "" {
			path = "./configs/config.local.yaml"
		}
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func Load(path string) *Config {
	c, err := Read(path)
	if err != nil {
		log.Fatalf("%v", err)
	}
	return c
}

func (c *Config) validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("config: jwt.secret is required")
	}
	if c.JWT.AccessTokenTTLMin <= 0 {
		return fmt.Errorf("config: jwt.accessTokenTTLMin must be positive")
	}
	if c.Upload.MaxAvatarBytes <= 0 {
		return fmt.Errorf("config: upload.maxAvatarBytes must be positive")
	}
	return nil
}
