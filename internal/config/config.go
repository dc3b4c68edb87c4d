package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server ServerConfig
	Mongo  MongoConfig
	Redis  RedisConfig
	Kafka  KafkaConfig
	MinIO  MinIOConfig
	JWT    JWTConfig
}

type ServerConfig struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type MongoConfig struct {
	URI    string
	DBName string
}

type RedisConfig struct {
	URL string
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
}

type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

type JWTConfig struct {
	Secret         string
	ExpirationTime time.Duration
}

// Load reads configuration from environment variables with sane
// defaults for local development.
func Load() (*Config, error) {
	viper.SetDefault("CHATTERBOX_HOST", "0.0.0.0")
	viper.SetDefault("CHATTERBOX_PORT", "8080")
	viper.SetDefault("CHATTERBOX_READ_TIMEOUT", 30*time.Second)
	viper.SetDefault("CHATTERBOX_WRITE_TIMEOUT", 30*time.Second)
	viper.SetDefault("CHATTERBOX_IDLE_TIMEOUT", 60*time.Second)
	viper.SetDefault("CHATTERBOX_JWT_SECRET", "secret")
	viper.SetDefault("CHATTERBOX_JWT_EXPIRE", "24h")
	viper.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	viper.SetDefault("MONGO_DB", "chatterbox")
	viper.SetDefault("REDIS_URL", "redis://localhost:6379/0")
	viper.SetDefault("KAFKA_BROKERS", []string{"localhost:9092"})
	viper.SetDefault("KAFKA_TOPIC", "chatterbox.messages")
	viper.SetDefault("MINIO_ENDPOINT", "localhost:9000")
	viper.SetDefault("MINIO_ACCESS_KEY", "minioadmin")
	viper.SetDefault("MINIO_SECRET_KEY", "minioadmin")
	viper.SetDefault("MINIO_BUCKET", "chatterbox-uploads")
	viper.SetDefault("MINIO_USE_SSL", false)
	viper.AutomaticEnv()

	cfg := &Config{
		Server: ServerConfig{
			Host:         viper.GetString("CHATTERBOX_HOST"),
			Port:         viper.GetString("CHATTERBOX_PORT"),
			ReadTimeout:  viper.GetDuration("CHATTERBOX_READ_TIMEOUT"),
			WriteTimeout: viper.GetDuration("CHATTERBOX_WRITE_TIMEOUT"),
			IdleTimeout:  viper.GetDuration("CHATTERBOX_IDLE_TIMEOUT"),
		},
		Mongo: MongoConfig{
			URI:    viper.GetString("MONGO_URI"),
			DBName: viper.GetString("MONGO_DB"),
		},
		Redis: RedisConfig{
			URL: viper.GetString("REDIS_URL"),
		},
		Kafka: KafkaConfig{
			Brokers: viper.GetStringSlice("KAFKA_BROKERS"),
			Topic:   viper.GetString("KAFKA_TOPIC"),
		},
		MinIO: MinIOConfig{
			Endpoint:  viper.GetString("MINIO_ENDPOINT"),
			AccessKey: viper.GetString("MINIO_ACCESS_KEY"),
			SecretKey: viper.GetString("MINIO_SECRET_KEY"),
			Bucket:    viper.GetString("MINIO_BUCKET"),
			UseSSL:    viper.GetBool("MINIO_USE_SSL"),
		},
		JWT: JWTConfig{
			Secret:         viper.GetString("CHATTERBOX_JWT_SECRET"),
			ExpirationTime: viper.GetDuration("CHATTERBOX_JWT_EXPIRE"),
		},
	}
	return cfg, nil
}

// Addr returns the host:port the HTTP server listens on.
func (s ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}
