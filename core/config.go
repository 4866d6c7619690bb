package core

import (
	"log"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	Config struct {
		AppName  string
		Env      string // DEV (default), TEST, QA, PROD
		Build    string
		Debug    bool
		TestMode bool
		WorkDir  string

		SecretKey        []byte
		FrontendBaseURL  string
		DefaultFromEmail mail.Address
		SendgridApiKey   string
		RollbarToken     string

		Server   ServerConfig
		Platform PlatformConfig
		Session  SessionConfig
		Redis    RedisConfig
		Database DatabaseConfig
		Cache    CacheConfig
		Upload   UploadConfig
	}

	ServerConfig struct {
		Host            string
		Addr            string
		DebugHost       string
		ShutdownTimeout time.Duration
	}

	PlatformConfig struct {
		BaseURL string
		Timeout time.Duration
	}

	SessionConfig struct {
		CookieName      string
		ExpirationDelta time.Duration
		Store           string // redis | postgres | memory
	}

	RedisConfig struct {
		Addr     string
		Password string
		DB       int
	}

	DatabaseConfig struct {
		Engine        string
		Name          string
		User          string
		Password      string
		Host          string
		Port          string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
	}

	CacheConfig struct {
		TTL time.Duration
	}

	UploadConfig struct {
		MaxRows  int
		BatchTTL time.Duration
	}
)

func (c DatabaseConfig) Address() string {
	return c.Host + ":" + c.Port
}

func NewConfig() *Config {
	v := viper.New()

	// defaults
	v.SetDefault("debug", true)
	v.SetDefault("appName", "DentaCamp Portal")
	v.SetDefault("build", "dev")
	v.SetDefault("secretKey", "q0w(e5rt#y&u1i_o7p!a=sd*fg2hj9kl4zx8cv3bn6m)")
	v.SetDefault("defaultFromEmail", "noreply@dentacamp.localhost")
	v.SetDefault("frontendBaseURL", "http://localhost:3000")
	v.SetDefault("serverHost", "localhost")
	v.SetDefault("serverAddr", ":8080")
	v.SetDefault("serverDebugHost", "localhost:4000")
	v.SetDefault("serverShutdownTimeout", 5*time.Second)
	v.SetDefault("platformBaseURL", "http://localhost:9000")
	v.SetDefault("platformTimeout", 30*time.Second)
	v.SetDefault("sessionCookieName", "dcp_session")
	v.SetDefault("sessionExpirationDelta", 12*time.Hour)
	v.SetDefault("sessionStore", "memory")
	v.SetDefault("redisAddr", "localhost:6379")
	v.SetDefault("redisDB", 0)
	v.SetDefault("dbEngine", "postgres")
	v.SetDefault("dbName", "dentacamp_portal")
	v.SetDefault("dbHost", "localhost")
	v.SetDefault("dbPort", "5432")
	v.SetDefault("dbDisableTLS", true)
	v.SetDefault("cacheTTL", 5*time.Minute)
	v.SetDefault("uploadMaxRows", 2000)
	v.SetDefault("uploadBatchTTL", 30*time.Minute)

	env := strings.ToUpper(os.Getenv("ENV"))
	if env == "" {
		env = "DEV"
	}
	v.SetEnvPrefix(env)

	wd := Getwd()

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err = godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	return &Config{
		AppName:          v.GetString("appName"),
		Env:              env,
		Build:            v.GetString("build"),
		Debug:            v.GetBool("debug"),
		TestMode:         env == "TEST",
		WorkDir:          wd,
		SecretKey:        []byte(v.GetString("secretKey")),
		FrontendBaseURL:  v.GetString("frontendBaseURL"),
		DefaultFromEmail: mail.Address{Name: v.GetString("appName"), Address: v.GetString("defaultFromEmail")},
		SendgridApiKey:   v.GetString("sendgridApiKey"),
		RollbarToken:     v.GetString("rollbarToken"),
		Server: ServerConfig{
			Host:            v.GetString("serverHost"),
			Addr:            v.GetString("serverAddr"),
			DebugHost:       v.GetString("serverDebugHost"),
			ShutdownTimeout: v.GetDuration("serverShutdownTimeout"),
		},
		Platform: PlatformConfig{
			BaseURL: v.GetString("platformBaseURL"),
			Timeout: v.GetDuration("platformTimeout"),
		},
		Session: SessionConfig{
			CookieName:      v.GetString("sessionCookieName"),
			ExpirationDelta: v.GetDuration("sessionExpirationDelta"),
			Store:           v.GetString("sessionStore"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("redisAddr"),
			Password: v.GetString("redisPassword"),
			DB:       v.GetInt("redisDB"),
		},
		Database: DatabaseConfig{
			Engine:        v.GetString("dbEngine"),
			Name:          v.GetString("dbName"),
			User:          v.GetString("dbUser"),
			Password:      v.GetString("dbPassword"),
			Host:          v.GetString("dbHost"),
			Port:          v.GetString("dbPort"),
			AdminUser:     v.GetString("dbAdminUser"),
			AdminPassword: v.GetString("dbAdminPassword"),
			DisableTLS:    v.GetBool("dbDisableTLS"),
		},
		Cache: CacheConfig{
			TTL: v.GetDuration("cacheTTL"),
		},
		Upload: UploadConfig{
			MaxRows:  v.GetInt("uploadMaxRows"),
			BatchTTL: v.GetDuration("uploadBatchTTL"),
		},
	}
}
