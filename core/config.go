package core

import (
	"log"
	"net"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	DatabaseConfig struct {
		Engine        string
		Host          string
		Port          string
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
	}

	ServerConfig struct {
		Host                      string
		DebugHost                 string
		ReadTimeout               time.Duration
		WriteTimeout              time.Duration
		ShutdownTimeout           time.Duration
		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration
		DisableReqLogs            bool
	}

	Config struct {
		Build                     string
		Env                       string
		Debug                     bool
		TestMode                  bool
		AppName                   string
		SecretKey                 string
		RollbarToken              string
		SendgridApiKey            string
		FrontendBaseURL           string
		PasswordResetTimeoutDelta time.Duration
		RecentActivityLimit       int
		WorkDir                   string
		Database                  DatabaseConfig
		Server                    ServerConfig

		defaultFromEmail string
	}
)

func (c DatabaseConfig) Address() string {
	return net.JoinHostPort(c.Host, c.Port)
}

func (c *Config) DefaultFromEmail() mail.Address {
	addr, err := mail.ParseAddress(c.defaultFromEmail)
	if err != nil {
		return mail.Address{Name: c.AppName, Address: "noreply@localhost"}
	}
	return *addr
}

func setDefaults(v *viper.Viper) {
	v.SetTypeByDefaultValue(true)
	v.SetDefault("build", "dev")
	v.SetDefault("debug", true)
	v.SetDefault("testMode", false)
	v.SetDefault("appName", "Gradebook")
	v.SetDefault("secretKey", "k3d!9x0vq#r6-gradebook-dev-only-l2$m8wzp@f4&t1uy")
	v.SetDefault("rollbarToken", "")
	v.SetDefault("sendgridApiKey", "")
	v.SetDefault("defaultFromEmail", "Gradebook <noreply@localhost>")
	v.SetDefault("frontendBaseURL", "http://localhost:3000")
	v.SetDefault("passwordResetTimeoutDelta", 3*24*time.Hour)
	v.SetDefault("recentActivityLimit", 5)

	v.SetDefault("db_engine", "postgres")
	v.SetDefault("db_host", "localhost")
	v.SetDefault("db_port", "5432")
	v.SetDefault("db_name", "gradebook")
	v.SetDefault("db_user", "gradebook")
	v.SetDefault("db_password", "gradebook")
	v.SetDefault("db_adminUser", "postgres")
	v.SetDefault("db_adminPassword", "postgres")
	v.SetDefault("db_disableTLS", true)

	v.SetDefault("server_host", "0.0.0.0:8000")
	v.SetDefault("server_debugHost", "0.0.0.0:4000")
	v.SetDefault("server_readTimeout", 5*time.Second)
	v.SetDefault("server_writeTimeout", 10*time.Second)
	v.SetDefault("server_shutdownTimeout", 5*time.Second)
	v.SetDefault("server_jwtExpirationDelta", 7*24*time.Hour)
	v.SetDefault("server_jwtRefreshExpirationDelta", 4*time.Hour)
	v.SetDefault("server_disableReqLogs", false)
}

// NewConfig reads the configuration from the environment.
// ENV selects both the variables prefix and the optional `config/.env.<env>` file.
func NewConfig() *Config {
	v := viper.New()
	setDefaults(v)

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	case "QA", "PROD":
		v.SetDefault("debug", false)
	}
	v.SetEnvPrefix(env)

	wd := Getwd()

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	return &Config{
		Build:                     v.GetString("build"),
		Env:                       env,
		Debug:                     v.GetBool("debug"),
		TestMode:                  v.GetBool("testMode"),
		AppName:                   v.GetString("appName"),
		SecretKey:                 v.GetString("secretKey"),
		RollbarToken:              v.GetString("rollbarToken"),
		SendgridApiKey:            v.GetString("sendgridApiKey"),
		FrontendBaseURL:           v.GetString("frontendBaseURL"),
		PasswordResetTimeoutDelta: v.GetDuration("passwordResetTimeoutDelta"),
		RecentActivityLimit:       v.GetInt("recentActivityLimit"),
		WorkDir:                   wd,
		Database: DatabaseConfig{
			Engine:        v.GetString("db_engine"),
			Host:          v.GetString("db_host"),
			Port:          v.GetString("db_port"),
			Name:          v.GetString("db_name"),
			User:          v.GetString("db_user"),
			Password:      v.GetString("db_password"),
			AdminUser:     v.GetString("db_adminUser"),
			AdminPassword: v.GetString("db_adminPassword"),
			DisableTLS:    v.GetBool("db_disableTLS"),
		},
		Server: ServerConfig{
			Host:                      v.GetString("server_host"),
			DebugHost:                 v.GetString("server_debugHost"),
			ReadTimeout:               v.GetDuration("server_readTimeout"),
			WriteTimeout:              v.GetDuration("server_writeTimeout"),
			ShutdownTimeout:           v.GetDuration("server_shutdownTimeout"),
			JWTExpirationDelta:        v.GetDuration("server_jwtExpirationDelta"),
			JWTRefreshExpirationDelta: v.GetDuration("server_jwtRefreshExpirationDelta"),
			DisableReqLogs:            v.GetBool("server_disableReqLogs"),
		},
		defaultFromEmail: v.GetString("defaultFromEmail"),
	}
}

// NewTestConfig returns the configuration used by tests.
func NewTestConfig() *Config {
	conf := NewConfig()
	conf.Env = "TEST"
	conf.TestMode = true
	conf.Server.DisableReqLogs = true
	return conf
}
