// Package config loads service settings from the environment via viper.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DatabaseConfig describes a Postgres connection.
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// DatabaseURL renders the config as a postgres:// URL for golang-migrate.
func (c DatabaseConfig) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
}

// JWTConfig holds token signing settings.
type JWTConfig struct {
	Secret string
}

// KafkaConfig holds broker settings.
type KafkaConfig struct {
	Brokers     []string
	GroupPrefix string
}

// CalendarConfig holds Google Calendar settings. An empty CredentialsFile disables the integration.
type CalendarConfig struct {
	CredentialsFile string
	TimeZone        string
}

// Enabled reports whether calendar credentials are configured.
func (c CalendarConfig) Enabled() bool { return c.CredentialsFile != "" }

// S3Config holds object storage settings for media uploads.
type S3Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	PublicURL string
}

// Enabled reports whether an S3 endpoint is configured.
func (c S3Config) Enabled() bool { return c.Endpoint != "" }

// Load reads an optional .env file and returns a viper instance bound to the environment
// under prefix. BOOKING_DB_HOST is read as v.GetString("DB_HOST").
func Load(prefix string) (*viper.Viper, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix(prefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("APP_ENV", "development")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("KAFKA_BROKERS", "localhost:9092")
	v.SetDefault("KAFKA_GROUP_PREFIX", "")
	v.SetDefault("CALENDAR_TIMEZONE", "UTC")
	v.SetDefault("S3_BUCKET", "property-media")

	return v, nil
}

// GetServicePort returns the listen address, ":8080" when unset.
func GetServicePort(v *viper.Viper, key string) string {
	port := v.GetString(key)
	if port == "" {
		return ":8080"
	}
	if !strings.HasPrefix(port, ":") {
		return ":" + port
	}
	return port
}

// GetAppEnv returns APP_ENV.
func GetAppEnv(v *viper.Viper) string {
	return v.GetString("APP_ENV")
}

// LoadDatabaseConfig reads the DB_* keys. dbNameKey lets services share defaults but not databases.
func LoadDatabaseConfig(v *viper.Viper, dbNameKey string) DatabaseConfig {
	return DatabaseConfig{
		Host:     v.GetString("DB_HOST"),
		Port:     v.GetInt("DB_PORT"),
		User:     v.GetString("DB_USER"),
		Password: v.GetString("DB_PASSWORD"),
		DBName:   v.GetString(dbNameKey),
		SSLMode:  v.GetString("DB_SSLMODE"),
	}
}

// LoadJWTConfig reads JWT_SECRET.
func LoadJWTConfig(v *viper.Viper) JWTConfig {
	return JWTConfig{Secret: v.GetString("JWT_SECRET")}
}

// LoadKafkaConfig reads KAFKA_BROKERS as a comma-separated list.
func LoadKafkaConfig(v *viper.Viper) KafkaConfig {
	var brokers []string
	for _, b := range strings.Split(v.GetString("KAFKA_BROKERS"), ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return KafkaConfig{
		Brokers:     brokers,
		GroupPrefix: v.GetString("KAFKA_GROUP_PREFIX"),
	}
}

// LoadCalendarConfig reads the CALENDAR_* keys.
func LoadCalendarConfig(v *viper.Viper) CalendarConfig {
	return CalendarConfig{
		CredentialsFile: v.GetString("CALENDAR_CREDENTIALS_FILE"),
		TimeZone:        v.GetString("CALENDAR_TIMEZONE"),
	}
}

// LoadS3Config reads the S3_* keys.
func LoadS3Config(v *viper.Viper) S3Config {
	return S3Config{
		Endpoint:  v.GetString("S3_ENDPOINT"),
		AccessKey: v.GetString("S3_ACCESS_KEY"),
		SecretKey: v.GetString("S3_SECRET_KEY"),
		Bucket:    v.GetString("S3_BUCKET"),
		UseSSL:    v.GetBool("S3_USE_SSL"),
		PublicURL: v.GetString("S3_PUBLIC_URL"),
	}
}
