package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	App struct {
		Port string `mapstructure:"port"`
		Env  string `mapstructure:"env"`
	} `mapstructure:"app"`
	DB struct {
		DSN string `mapstructure:"dsn"`
	} `mapstructure:"db"`
	Redis struct {
		Addr     string `mapstructure:"addr"`
		Password string `mapstructure:"password"`
	} `mapstructure:"redis"`
	Kafka struct {
		Brokers []string `mapstructure:"brokers"`
		GroupID string   `mapstructure:"group_id"`
	} `mapstructure:"kafka"`
	Auth struct {
		JWTSecret    string `mapstructure:"jwt_secret"`
		PublicKeyPEM string `mapstructure:"public_key_pem"`
	} `mapstructure:"auth"`
	Gateway struct {
		Port           string        `mapstructure:"port"`
		UserServiceURL string        `mapstructure:"user_service_url"`
		SyncTTL        time.Duration `mapstructure:"sync_ttl"`
		RequestTimeout time.Duration `mapstructure:"request_timeout"`
		AllowedOrigins []string      `mapstructure:"allowed_origins"`
	} `mapstructure:"gateway"`
	Cloudinary struct {
		CloudName string `mapstructure:"cloud_name"`
		ApiKey    string `mapstructure:"api_key"`
		ApiSecret string `mapstructure:"api_secret"`
	} `mapstructure:"cloudinary"`
	Jaeger struct {
		OTLPEndpoint string `mapstructure:"otlp_endpoint"`
	} `mapstructure:"jaeger"`
}

// LoadConfig reads .env, an optional config.yaml from the given paths (defaults to ".")
// and the environment, in increasing order of precedence.
func LoadConfig(paths ...string) (cfg Config, err error) {
	if len(paths) == 0 {
		paths = []string{"."}
	}

	if err := godotenv.Load(); err != nil {
		log.Println("warning: .env file not found, use default.")
	}

	v := viper.New()
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		log.Printf("note: config.yaml not found, read environment only. Error: %v", err)
	}

	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.BindEnv("app.port", "APP_PORT")
	v.BindEnv("app.env", "APP_ENV")
	v.BindEnv("db.dsn", "DB_DSN")
	v.BindEnv("redis.addr", "REDIS_ADDR")
	v.BindEnv("redis.password", "REDIS_PASSWORD")
	v.BindEnv("kafka.brokers", "KAFKA_BROKERS")
	v.BindEnv("kafka.group_id", "KAFKA_GROUP_ID")
	v.BindEnv("auth.jwt_secret", "AUTH_JWT_SECRET")
	v.BindEnv("auth.public_key_pem", "AUTH_PUBLIC_KEY_PEM")

	v.BindEnv("gateway.port", "GATEWAY_PORT")
	v.BindEnv("gateway.user_service_url", "GATEWAY_USER_SERVICE_URL")
	v.BindEnv("gateway.sync_ttl", "GATEWAY_SYNC_TTL")
	v.BindEnv("gateway.request_timeout", "GATEWAY_REQUEST_TIMEOUT")
	v.BindEnv("gateway.allowed_origins", "GATEWAY_ALLOWED_ORIGINS")

	v.BindEnv("cloudinary.cloud_name", "CLOUDINARY_CLOUD_NAME")
	v.BindEnv("cloudinary.api_key", "CLOUDINARY_API_KEY")
	v.BindEnv("cloudinary.api_secret", "CLOUDINARY_API_SECRET")

	v.BindEnv("jaeger.otlp_endpoint", "JAEGER_OTLP_ENDPOINT")

	err = v.Unmarshal(&cfg)
	return
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.port", "8081")
	v.SetDefault("app.env", "development")
	v.SetDefault("kafka.group_id", "profile-cleanup-group")
	v.SetDefault("gateway.port", "8080")
	v.SetDefault("gateway.user_service_url", "http://localhost:8081")
	v.SetDefault("gateway.sync_ttl", 10*time.Minute)
	v.SetDefault("gateway.request_timeout", 5*time.Second)
	v.SetDefault("gateway.allowed_origins", []string{"http://localhost:3000", "http://localhost:5173"})
}
