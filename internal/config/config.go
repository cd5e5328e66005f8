package config

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	MQTT      MQTTConfig
	Storage   StorageConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
}

type ServerConfig struct {
	Port        string
	Host        string
	Environment string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type JWTConfig struct {
	Secret             string
	ExpiryHours        int
	RefreshExpiryHours int
}

// MQTTConfig configures the optional push channel for the mobile app.
// When Broker is empty the service runs with polling only.
type MQTTConfig struct {
	Broker         string
	ClientID       string
	Username       string
	Password       string
	KeepAlive      int
	ConnectTimeout int
	QoS            int
	IncidentTopic  string
	PatrolTopic    string
}

// StorageConfig configures the S3-compatible bucket for incident photo
// evidence. Incidents persist only the object key, never the binary.
type StorageConfig struct {
	AccountID            string
	AccessKeyID          string
	SecretAccessKey      string
	Bucket               string
	Region               string
	PublicBaseURL        string
	PresignExpiryMinutes int
}

type RateLimitConfig struct {
	GeneralRPS   float64 // Requests per second for general endpoints
	GeneralBurst int     // Burst size for general endpoints
}

type CORSConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	MaxAge           int
}

func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AddConfigPath(".")
	if homeDir, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(homeDir)
	}
	viper.AutomaticEnv()

	viper.SetDefault("JWT_EXPIRY_HOURS", 1)
	viper.SetDefault("JWT_REFRESH_EXPIRY_HOURS", 168)
	viper.SetDefault("MQTT_KEEPALIVE_SECONDS", 60)
	viper.SetDefault("MQTT_CONNECT_TIMEOUT_SECONDS", 10)
	viper.SetDefault("MQTT_QOS", 1)
	viper.SetDefault("MQTT_INCIDENT_TOPIC", "patroltrack/incidents")
	viper.SetDefault("MQTT_PATROL_TOPIC", "patroltrack/patrol")
	viper.SetDefault("STORAGE_PRESIGN_EXPIRY_MINUTES", 15)
	viper.SetDefault("RATE_LIMIT_GENERAL_RPS", 20.0)
	viper.SetDefault("RATE_LIMIT_GENERAL_BURST", 40)

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		log.Printf("Warning: config file not found: %v. Falling back to environment variables only.", err)
	}

	config := &Config{
		Server: ServerConfig{
			Port:        viper.GetString("SERVER_PORT"),
			Host:        viper.GetString("SERVER_HOST"),
			Environment: viper.GetString("ENVIRONMENT"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			DBName:   viper.GetString("DB_NAME"),
			SSLMode:  viper.GetString("DB_SSLMODE"),
		},
		JWT: JWTConfig{
			Secret:             viper.GetString("JWT_SECRET"),
			ExpiryHours:        viper.GetInt("JWT_EXPIRY_HOURS"),
			RefreshExpiryHours: viper.GetInt("JWT_REFRESH_EXPIRY_HOURS"),
		},
		MQTT: MQTTConfig{
			Broker:         viper.GetString("MQTT_BROKER"),
			ClientID:       viper.GetString("MQTT_CLIENT_ID"),
			Username:       viper.GetString("MQTT_USERNAME"),
			Password:       viper.GetString("MQTT_PASSWORD"),
			KeepAlive:      viper.GetInt("MQTT_KEEPALIVE_SECONDS"),
			ConnectTimeout: viper.GetInt("MQTT_CONNECT_TIMEOUT_SECONDS"),
			QoS:            viper.GetInt("MQTT_QOS"),
			IncidentTopic:  viper.GetString("MQTT_INCIDENT_TOPIC"),
			PatrolTopic:    viper.GetString("MQTT_PATROL_TOPIC"),
		},
		Storage: StorageConfig{
			AccountID:            viper.GetString("STORAGE_ACCOUNT_ID"),
			AccessKeyID:          viper.GetString("STORAGE_ACCESS_KEY_ID"),
			SecretAccessKey:      viper.GetString("STORAGE_SECRET_ACCESS_KEY"),
			Bucket:               viper.GetString("STORAGE_BUCKET"),
			Region:               viper.GetString("STORAGE_REGION"),
			PublicBaseURL:        viper.GetString("STORAGE_PUBLIC_BASE_URL"),
			PresignExpiryMinutes: viper.GetInt("STORAGE_PRESIGN_EXPIRY_MINUTES"),
		},
		RateLimit: RateLimitConfig{
			GeneralRPS:   viper.GetFloat64("RATE_LIMIT_GENERAL_RPS"),
			GeneralBurst: viper.GetInt("RATE_LIMIT_GENERAL_BURST"),
		},
		CORS: CORSConfig{
			AllowedOrigins:   viper.GetStringSlice("CORS_ALLOWED_ORIGINS"),
			AllowedMethods:   viper.GetStringSlice("CORS_ALLOWED_METHODS"),
			AllowedHeaders:   viper.GetStringSlice("CORS_ALLOWED_HEADERS"),
			ExposedHeaders:   viper.GetStringSlice("CORS_EXPOSED_HEADERS"),
			AllowCredentials: viper.GetBool("CORS_ALLOW_CREDENTIALS"),
			MaxAge:           viper.GetInt("CORS_MAX_AGE"),
		},
	}

	return config, nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}
