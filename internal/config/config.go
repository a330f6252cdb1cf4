package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	DBDriverPostgres = "postgres"
	DBDriverMemory   = "memory"

	EventsDriverNone  = "none"
	EventsDriverAMQP  = "amqp"
	EventsDriverKafka = "kafka"
)

type HTTPConfig struct {
	Host           string
	Port           int
	CORSOrigins    []string
	RateLimitRPS   float64
	RateLimitBurst int
}

type DBConfig struct {
	Driver          string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type AuthConfig struct {
	AccessSecret string
}

type RentalConfig struct {
	TaxRate            float64
	ServiceIntervalKm  int64
	FidelityThresholds []int
	FidelityDiscounts  []float64
}

type EventsConfig struct {
	Driver       string
	AMQPURL      string
	AMQPExchange string
	KafkaBrokers []string
	KafkaTopic   string
}

type AlertsConfig struct {
	Enabled             bool
	InsuranceCron       string
	OverdueCron         string
	InsuranceWindowDays int
}

type Config struct {
	Environment string
	LogLevel    string
	HTTP        HTTPConfig
	DB          DBConfig
	Auth        AuthConfig
	Rental      RentalConfig
	Events      EventsConfig
	Alerts      AlertsConfig
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("./deploy")
	v.AutomaticEnv()
	setDefaults(v)

	_ = v.ReadInConfig()

	thresholds, err := parseInts(v.GetString("RENTAL_FIDELITY_THRESHOLDS"))
	if err != nil {
		return nil, fmt.Errorf("RENTAL_FIDELITY_THRESHOLDS: %w", err)
	}
	discounts, err := parseFloats(v.GetString("RENTAL_FIDELITY_DISCOUNTS"))
	if err != nil {
		return nil, fmt.Errorf("RENTAL_FIDELITY_DISCOUNTS: %w", err)
	}

	cfg := &Config{
		Environment: v.GetString("APP_ENV"),
		LogLevel:    v.GetString("LOG_LEVEL"),
		HTTP: HTTPConfig{
			Host:           v.GetString("HTTP_HOST"),
			Port:           v.GetInt("HTTP_PORT"),
			CORSOrigins:    parseList(v.GetString("HTTP_CORS_ORIGINS")),
			RateLimitRPS:   v.GetFloat64("HTTP_RATE_LIMIT_RPS"),
			RateLimitBurst: v.GetInt("HTTP_RATE_LIMIT_BURST"),
		},
		DB: DBConfig{
			Driver:          strings.ToLower(v.GetString("DB_DRIVER")),
			DSN:             v.GetString("DB_DSN"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetDuration("DB_CONN_MAX_LIFETIME"),
		},
		Auth: AuthConfig{
			AccessSecret: v.GetString("JWT_ACCESS_SECRET"),
		},
		Rental: RentalConfig{
			TaxRate:            v.GetFloat64("RENTAL_TAX_RATE"),
			ServiceIntervalKm:  v.GetInt64("RENTAL_SERVICE_INTERVAL_KM"),
			FidelityThresholds: thresholds,
			FidelityDiscounts:  discounts,
		},
		Events: EventsConfig{
			Driver:       strings.ToLower(v.GetString("EVENTS_DRIVER")),
			AMQPURL:      v.GetString("EVENTS_AMQP_URL"),
			AMQPExchange: v.GetString("EVENTS_AMQP_EXCHANGE"),
			KafkaBrokers: parseList(v.GetString("EVENTS_KAFKA_BROKERS")),
			KafkaTopic:   v.GetString("EVENTS_KAFKA_TOPIC"),
		},
		Alerts: AlertsConfig{
			Enabled:             v.GetBool("ALERTS_ENABLED"),
			InsuranceCron:       v.GetString("ALERTS_INSURANCE_CRON"),
			OverdueCron:         v.GetString("ALERTS_OVERDUE_CRON"),
			InsuranceWindowDays: v.GetInt("ALERTS_INSURANCE_WINDOW_DAYS"),
		},
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("HTTP_HOST", "0.0.0.0")
	v.SetDefault("HTTP_PORT", 7090)
	v.SetDefault("HTTP_CORS_ORIGINS", "*")
	v.SetDefault("HTTP_RATE_LIMIT_RPS", 20)
	v.SetDefault("HTTP_RATE_LIMIT_BURST", 40)
	v.SetDefault("DB_DRIVER", DBDriverPostgres)
	v.SetDefault("DB_MAX_OPEN_CONNS", 20)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_LIFETIME", "30m")
	v.SetDefault("RENTAL_TAX_RATE", 0.19)
	v.SetDefault("RENTAL_SERVICE_INTERVAL_KM", 10000)
	v.SetDefault("RENTAL_FIDELITY_THRESHOLDS", "3,7,10")
	v.SetDefault("RENTAL_FIDELITY_DISCOUNTS", "0.10,0.20,0.30")
	v.SetDefault("EVENTS_DRIVER", EventsDriverNone)
	v.SetDefault("EVENTS_AMQP_EXCHANGE", "fleet.events")
	v.SetDefault("EVENTS_KAFKA_TOPIC", "fleet.events")
	v.SetDefault("ALERTS_ENABLED", true)
	v.SetDefault("ALERTS_INSURANCE_CRON", "0 0 6 * * *")
	v.SetDefault("ALERTS_OVERDUE_CRON", "0 0 7 * * *")
	v.SetDefault("ALERTS_INSURANCE_WINDOW_DAYS", 15)
}

func validate(cfg *Config) error {
	switch cfg.DB.Driver {
	case DBDriverPostgres:
		if cfg.DB.DSN == "" {
			return fmt.Errorf("DB_DSN is required")
		}
	case DBDriverMemory:
	default:
		return fmt.Errorf("DB_DRIVER must be %q or %q", DBDriverPostgres, DBDriverMemory)
	}
	if cfg.Auth.AccessSecret == "" {
		return fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	if cfg.Rental.TaxRate < 0 {
		return fmt.Errorf("RENTAL_TAX_RATE must not be negative")
	}
	if cfg.Rental.ServiceIntervalKm <= 0 {
		return fmt.Errorf("RENTAL_SERVICE_INTERVAL_KM must be positive")
	}
	if len(cfg.Rental.FidelityThresholds) != len(cfg.Rental.FidelityDiscounts) {
		return fmt.Errorf("RENTAL_FIDELITY_THRESHOLDS and RENTAL_FIDELITY_DISCOUNTS must have the same length")
	}
	switch cfg.Events.Driver {
	case EventsDriverNone:
	case EventsDriverAMQP:
		if cfg.Events.AMQPURL == "" {
			return fmt.Errorf("EVENTS_AMQP_URL is required")
		}
	case EventsDriverKafka:
		if len(cfg.Events.KafkaBrokers) == 0 {
			return fmt.Errorf("EVENTS_KAFKA_BROKERS is required")
		}
	default:
		return fmt.Errorf("unknown EVENTS_DRIVER %q", cfg.Events.Driver)
	}
	if cfg.Alerts.InsuranceWindowDays < 0 {
		return fmt.Errorf("ALERTS_INSURANCE_WINDOW_DAYS must not be negative")
	}
	return nil
}

func parseList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	items := strings.Split(raw, ",")
	result := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item != "" {
			result = append(result, item)
		}
	}
	return result
}

func parseInts(raw string) ([]int, error) {
	items := parseList(raw)
	result := make([]int, 0, len(items))
	for _, item := range items {
		n, err := strconv.Atoi(item)
		if err != nil {
			return nil, fmt.Errorf("invalid integer %q", item)
		}
		result = append(result, n)
	}
	return result, nil
}

func parseFloats(raw string) ([]float64, error) {
	items := parseList(raw)
	result := make([]float64, 0, len(items))
	for _, item := range items {
		f, err := strconv.ParseFloat(item, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", item)
		}
		result = append(result, f)
	}
	return result, nil
}
