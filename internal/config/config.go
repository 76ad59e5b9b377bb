package config

import (
	"github.com/spf13/viper"
)

type Config struct {
	Port     int    `mapstructure:"PORT"`
	MongoURI string `mapstructure:"MONGO_URI"`
	MongoDB  string `mapstructure:"MONGO_DB"`

	JWTSecret string `mapstructure:"JWT_SECRET"`

	// BaseURL is the public URL used to build verification and reset links.
	BaseURL string `mapstructure:"BASE_URL"`

	// MailerDriver selects the outbound mail transport: "smtp" or "mailersend".
	MailerDriver     string `mapstructure:"MAILER_DRIVER"`
	SMTPHost         string `mapstructure:"SMTP_HOST"`
	SMTPPort         int    `mapstructure:"SMTP_PORT"`
	SMTPUsername     string `mapstructure:"SMTP_USERNAME"`
	SMTPPassword     string `mapstructure:"SMTP_PASSWORD"`
	MailFrom         string `mapstructure:"MAIL_FROM"`
	MailSenderName   string `mapstructure:"MAIL_SENDER_NAME"`
	MailerSendAPIKey string `mapstructure:"MAILERSEND_API_KEY"`
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Set default values
	viper.SetDefault("PORT", 3000)
	viper.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	viper.SetDefault("MONGO_DB", "auth_service")
	viper.SetDefault("JWT_SECRET", "your-secret-key")
	viper.SetDefault("BASE_URL", "http://localhost:3000")
	viper.SetDefault("MAILER_DRIVER", "smtp")
	viper.SetDefault("SMTP_HOST", "localhost")
	viper.SetDefault("SMTP_PORT", 587)
	viper.SetDefault("SMTP_USERNAME", "")
	viper.SetDefault("SMTP_PASSWORD", "")
	viper.SetDefault("MAIL_FROM", "no-reply@localhost")
	viper.SetDefault("MAIL_SENDER_NAME", "")
	viper.SetDefault("MAILERSEND_API_KEY", "")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
