package config

import (
	"errors"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"io/fs"
	"log"
	"os"
	"time"
)

const defaultConfigPath = "./config/local.yaml"

type Config struct {
	Env        string `yaml:"env" env:"ENV" env-default:"prod"`
	HTTPServer `yaml:"http_server"`
	DB         `yaml:"db"`
	Auth       `yaml:"auth"`
	Uploads    `yaml:"uploads"`
	Profit     `yaml:"profit"`

	CORSOrigins []string `yaml:"cors_origins" env:"CORS_ORIGINS" env-default:"http://localhost:5173,http://localhost:8081"`
}

type HTTPServer struct {
	Address     string        `yaml:"address" env:"HTTP_ADDRESS" env-default:"localhost:4001"`
	Timeout     time.Duration `yaml:"timeout" env-default:"15s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

type DB struct {
	User        string `yaml:"db_user" env:"DB_USER" env-required:"true"`
	Password    string `yaml:"db_password" env:"DB_PASSWORD"`
	Host        string `yaml:"db_host" env:"DB_HOST" env-default:"localhost"`
	Port        int    `yaml:"db_port" env:"DB_PORT" env-default:"3306"`
	Name        string `yaml:"db_name" env:"DB_NAME" env-required:"true"`
	ParseTime   bool   `yaml:"parse_time" env-default:"true"`
	AutoMigrate bool   `yaml:"auto_migrate" env:"DB_AUTO_MIGRATE" env-default:"false"`
}

// Auth: пароль администратора можно задать открытым текстом или bcrypt-хешем.
type Auth struct {
	AdminPassword     string `yaml:"admin_password" env:"ADMIN_PASSWORD"`
	AdminPasswordHash string `yaml:"admin_password_hash" env:"ADMIN_PASSWORD_HASH"`
	AppPassword       string `yaml:"app_password" env:"APP_PASSWORD"`

	MetricsUser     string `yaml:"metrics_user" env:"METRICS_USER" env-default:"metrics"`
	MetricsPassword string `yaml:"metrics_password" env:"METRICS_PASSWORD"`
}

type Uploads struct {
	Dir     string `yaml:"dir" env:"UPLOAD_DIR" env-default:"uploads"`
	MaxSize int64  `yaml:"max_size" env:"UPLOAD_MAX_SIZE" env-default:"16777216"`
	// MaxRequest ограничивает всё тело multipart-запроса: файлы плюс поля формы.
	MaxRequest int64 `yaml:"max_request" env:"UPLOAD_MAX_REQUEST" env-default:"17825792"`
}

// Profit задаёт метод расчёта прибыли для каждого эндпоинта: "balance" или "orders".
type Profit struct {
	Reports             string  `yaml:"reports" env:"PROFIT_REPORTS_METHOD" env-default:"balance"`
	Dashboard           string  `yaml:"dashboard" env:"PROFIT_DASHBOARD_METHOD" env-default:"orders"`
	Statistics          string  `yaml:"statistics" env:"PROFIT_STATISTICS_METHOD" env-default:"balance"`
	Salary              string  `yaml:"salary" env:"PROFIT_SALARY_METHOD" env-default:"balance"`
	Profile             string  `yaml:"profile" env:"PROFIT_PROFILE_METHOD" env-default:"orders"`
	DivergenceTolerance float64 `yaml:"divergence_tolerance" env:"PROFIT_DIVERGENCE_TOLERANCE" env-default:"0.01"`
}

func MustConfig() *Config {
	// .env не обязателен
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("cannot load .env: %s", err)
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = defaultConfigPath
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("config file does not exist: %s", configPath)
	}

	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("cannot read config: %s", err)
	}

	if cfg.AdminPassword == "" && cfg.AdminPasswordHash == "" {
		log.Fatalf("cannot read config: admin password is not set")
	}

	return &cfg
}
