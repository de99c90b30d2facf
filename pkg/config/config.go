package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config agrupa la configuración de la aplicación (lectura vía Viper desde env y opcionalmente archivo).
type Config struct {
	App     AppConfig
	DB      DBConfig
	JWT     JWTConfig
	HTTP    HTTPConfig
	Redis   RedisConfig
	Storage StorageConfig
	SMS     SMSConfig
	Auth    AuthConfig
	Jobs    JobsConfig
	Empresa EmpresaConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env           string // development, staging, production
	Name          string
	LogLevel      string
	PortalBaseURL string // URL pública del portal, se usa para armar los links de activación
	Timezone      string // zona horaria para rangos mensuales del dashboard
}

// DBConfig configuración de PostgreSQL.
// Si DatabaseURL no está vacío, se usa como connection string completo.
type DBConfig struct {
	DatabaseURL string
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
	AutoMigrate bool // aplicar migraciones pendientes al iniciar la API
}

// ConnectionString devuelve el DSN a usar: DATABASE_URL si está definido, si no el construido con DSN().
func (c DBConfig) ConnectionString() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return c.DSN()
}

// DSN devuelve el connection string para PostgreSQL con URL encoding para caracteres especiales.
func (c DBConfig) DSN() string {
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.DBName,
		RawQuery: fmt.Sprintf("sslmode=%s", c.SSLMode),
	}
	return u.String()
}

// JWTConfig configuración de JWT.
type JWTConfig struct {
	Secret     string
	Expiration int // minutos
	Issuer     string
}

// HTTPConfig configuración del servidor HTTP.
type HTTPConfig struct {
	Host string
	Port int
}

// Addr devuelve la dirección de escucha (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// RedisConfig conexión a Redis para la lista de tokens revocados. Host vacío = deshabilitado.
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// Enabled indica si Redis está configurado.
func (c RedisConfig) Enabled() bool { return c.Host != "" }

// StorageConfig almacenamiento S3 compatible (AWS, MinIO, R2) para los PDF de boletas.
// Bucket vacío = los PDF se generan bajo demanda y no se almacenan.
type StorageConfig struct {
	Endpoint     string
	Region       string
	Bucket       string
	AccessKey    string
	SecretKey    string
	UsePathStyle bool
	PresignTTL   time.Duration
}

// Enabled indica si el almacenamiento de objetos está configurado.
func (c StorageConfig) Enabled() bool { return c.Bucket != "" }

// SMSConfig gateway HTTP de mensajería para enviar links de activación.
type SMSConfig struct {
	BaseURL string
	Token   string
	Sender  string
	Timeout time.Duration
}

// Enabled indica si hay gateway configurado.
func (c SMSConfig) Enabled() bool { return c.BaseURL != "" }

// AuthConfig parámetros del bloqueo por intentos fallidos y de los tokens de activación.
type AuthConfig struct {
	MaxIntentos    int
	BloqueoMinutos int
	SetupTokenTTL  time.Duration
}

// JobsConfig parámetros de los procesos batch.
type JobsConfig struct {
	Timeout time.Duration
}

// EmpresaConfig datos del emisor impresos en las boletas.
type EmpresaConfig struct {
	Nombre    string
	RUT       string
	Direccion string
	Telefono  string
}

// Load lee la configuración desde variables de entorno (y opcionalmente desde archivo).
// Las env vars tienen prioridad. Nombres esperados: APP_ENV, DB_HOST, DB_PORT, JWT_SECRET, etc.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // ignoramos error si no existe

	v.SetConfigName("config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig()

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{
		App: AppConfig{
			Env:           getString(v, "APP_ENV", "development"),
			Name:          getString(v, "APP_NAME", "coab-portal"),
			LogLevel:      getString(v, "LOG_LEVEL", "info"),
			PortalBaseURL: strings.TrimRight(getString(v, "PORTAL_BASE_URL", "http://localhost:5173"), "/"),
			Timezone:      getString(v, "APP_TIMEZONE", "America/Santiago"),
		},
		DB: DBConfig{
			DatabaseURL: getString(v, "DATABASE_URL", ""),
			Host:        getString(v, "DB_HOST", "localhost"),
			Port:        getInt(v, "DB_PORT", 5432),
			User:        getString(v, "DB_USER", "postgres"),
			Password:    getString(v, "DB_PASSWORD", ""),
			DBName:      getString(v, "DB_NAME", "coab"),
			SSLMode:     getString(v, "DB_SSLMODE", "disable"),
			AutoMigrate: getBool(v, "DB_AUTO_MIGRATE", false),
		},
		JWT: JWTConfig{
			Secret:     getString(v, "JWT_SECRET", ""),
			Expiration: getInt(v, "JWT_EXPIRATION_MINUTES", 60),
			Issuer:     getString(v, "JWT_ISSUER", "coab-portal"),
		},
		HTTP: HTTPConfig{
			Host: getString(v, "HTTP_HOST", "0.0.0.0"),
			Port: getInt(v, "HTTP_PORT", 8080),
		},
		Redis: RedisConfig{
			Host:     getString(v, "REDIS_HOST", ""),
			Port:     getInt(v, "REDIS_PORT", 6379),
			Password: getString(v, "REDIS_PASSWORD", ""),
			DB:       getInt(v, "REDIS_DB", 0),
		},
		Storage: StorageConfig{
			Endpoint:     getString(v, "S3_ENDPOINT", ""),
			Region:       getString(v, "S3_REGION", "us-east-1"),
			Bucket:       getString(v, "S3_BUCKET", ""),
			AccessKey:    getString(v, "S3_ACCESS_KEY", ""),
			SecretKey:    getString(v, "S3_SECRET_KEY", ""),
			UsePathStyle: getBool(v, "S3_USE_PATH_STYLE", true),
			PresignTTL:   time.Duration(getInt(v, "S3_PRESIGN_MINUTES", 15)) * time.Minute,
		},
		SMS: SMSConfig{
			BaseURL: getString(v, "SMS_BASE_URL", ""),
			Token:   getString(v, "SMS_TOKEN", ""),
			Sender:  getString(v, "SMS_SENDER", "COAB"),
			Timeout: time.Duration(getInt(v, "SMS_TIMEOUT_SECONDS", 10)) * time.Second,
		},
		Auth: AuthConfig{
			MaxIntentos:    getInt(v, "AUTH_MAX_INTENTOS", 5),
			BloqueoMinutos: getInt(v, "AUTH_BLOQUEO_MINUTOS", 30),
			SetupTokenTTL:  time.Duration(getInt(v, "AUTH_SETUP_TOKEN_HORAS", 72)) * time.Hour,
		},
		Jobs: JobsConfig{
			Timeout: time.Duration(getInt(v, "JOBS_TIMEOUT_MINUTES", 60)) * time.Minute,
		},
		Empresa: EmpresaConfig{
			Nombre:    getString(v, "EMPRESA_NOMBRE", "Comité de Agua Potable"),
			RUT:       getString(v, "EMPRESA_RUT", ""),
			Direccion: getString(v, "EMPRESA_DIRECCION", ""),
			Telefono:  getString(v, "EMPRESA_TELEFONO", ""),
		},
	}

	if cfg.JWT.Secret == "" && cfg.App.Env == "production" {
		return nil, fmt.Errorf("config: JWT_SECRET es obligatorio en producción")
	}
	return cfg, nil
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if v.IsSet(key) {
		switch v.Get(key).(type) {
		case int:
			return v.GetInt(key)
		case string:
			n, err := strconv.Atoi(v.GetString(key))
			if err != nil {
				return def
			}
			return n
		default:
			return v.GetInt(key)
		}
	}
	return def
}

func getBool(v *viper.Viper, key string, def bool) bool {
	if v.IsSet(key) {
		return v.GetBool(key)
	}
	return def
}
