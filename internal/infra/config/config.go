package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP       HTTPConfig       `yaml:"http"`
	Tuya       TuyaConfig       `yaml:"tuya"`
	TokenCache TokenCacheConfig `yaml:"tokenCache"`
	MQTT       MQTTConfig       `yaml:"mqtt"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address        string        `yaml:"address"`
	ReadTimeout    time.Duration `yaml:"readTimeout"`
	WriteTimeout   time.Duration `yaml:"writeTimeout"`
	AllowedOrigins []string      `yaml:"allowedOrigins"`
}

// TuyaConfig holds the cloud project credentials and the station to query.
type TuyaConfig struct {
	BaseURL      string        `yaml:"baseUrl"`
	AccessID     string        `yaml:"accessId"`
	AccessSecret string        `yaml:"accessSecret"`
	DeviceID     string        `yaml:"deviceId"`
	Timeout      time.Duration `yaml:"timeout"`
}

// TokenCacheConfig selects where Tuya access tokens are cached.
type TokenCacheConfig struct {
	Valkey ValkeyConfig `yaml:"valkey"`
}

// ValkeyConfig contains connection information for the shared token cache.
type ValkeyConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
	Prefix  string `yaml:"prefix"`
}

// MQTTConfig controls forwarding of readings to a broker.
type MQTTConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Broker   string `yaml:"broker"`
	ClientID string `yaml:"clientId"`
	Topic    string `yaml:"topic"`
	QoS      int    `yaml:"qos"`
	Retained bool   `yaml:"retained"`
}

// Load reads configuration from a YAML file, an optional .env file and environment variables.
func Load() (*Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read .env file: %w", err)
	}
	applyEnvOverrides(cfg)
	cfg.HTTP.WriteTimeout = max(cfg.HTTP.WriteTimeout, cfg.MinWriteTimeout())

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		cfg.HTTP.Address = ":" + v
	}
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	}
	if v := os.Getenv("HTTP_READ_TIMEOUT"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.HTTP.ReadTimeout = parsed
		}
	}
	if v := os.Getenv("HTTP_WRITE_TIMEOUT"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.HTTP.WriteTimeout = parsed
		}
	}
	if v := os.Getenv("HTTP_ALLOWED_ORIGINS"); v != "" {
		cfg.HTTP.AllowedOrigins = splitList(v)
	}
	if v := os.Getenv("TUYA_BASE_URL"); v != "" {
		cfg.Tuya.BaseURL = v
	}
	if v := os.Getenv("TUYA_ACCESS_ID"); v != "" {
		cfg.Tuya.AccessID = v
	}
	if v := os.Getenv("TUYA_ACCESS_SECRET"); v != "" {
		cfg.Tuya.AccessSecret = v
	}
	if v := os.Getenv("TUYA_DEVICE_ID"); v != "" {
		cfg.Tuya.DeviceID = v
	}
	if v := os.Getenv("TUYA_TIMEOUT"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Tuya.Timeout = parsed
		}
	}
	if v := os.Getenv("TOKEN_CACHE_VALKEY_ENABLED"); v != "" {
		cfg.TokenCache.Valkey.Enabled = parseBool(v)
	}
	if v := os.Getenv("TOKEN_CACHE_VALKEY_ADDR"); v != "" {
		cfg.TokenCache.Valkey.Addr = v
	}
	if v := os.Getenv("TOKEN_CACHE_VALKEY_PREFIX"); v != "" {
		cfg.TokenCache.Valkey.Prefix = v
	}
	if v := os.Getenv("MQTT_ENABLED"); v != "" {
		cfg.MQTT.Enabled = parseBool(v)
	}
	if v := os.Getenv("MQTT_BROKER"); v != "" {
		cfg.MQTT.Broker = v
	}
	if v := os.Getenv("MQTT_CLIENT_ID"); v != "" {
		cfg.MQTT.ClientID = v
	}
	if v := os.Getenv("MQTT_TOPIC"); v != "" {
		cfg.MQTT.Topic = v
	}
	if v := os.Getenv("MQTT_QOS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.MQTT.QoS = parsed
		}
	}
	if v := os.Getenv("MQTT_RETAINED"); v != "" {
		cfg.MQTT.Retained = parseBool(v)
	}
}

// upstreamSlack covers the token store round trip, the MQTT publish and response writing.
const upstreamSlack = 10 * time.Second

// MinWriteTimeout is the shortest write deadline that still lets a cold /meteo request
// (token fetch plus status call) deliver its error envelope.
func (c *Config) MinWriteTimeout() time.Duration {
	upstream := c.Tuya.Timeout
	if upstream <= 0 {
		upstream = 10 * time.Second
	}
	return 2*upstream + upstreamSlack
}

func parseBool(v string) bool {
	return v == "1" || strings.EqualFold(v, "true")
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:      ":3000",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Tuya: TuyaConfig{
			BaseURL: "https://openapi.tuyaeu.com",
			Timeout: 10 * time.Second,
		},
		TokenCache: TokenCacheConfig{
			Valkey: ValkeyConfig{
				Enabled: false,
				Prefix:  "tuya",
			},
		},
		MQTT: MQTTConfig{
			Enabled:  false,
			ClientID: "meteo-tuya",
			Topic:    "meteo/reading",
			QoS:      1,
			Retained: true,
		},
	}
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	if strings.TrimSpace(c.Tuya.BaseURL) == "" {
		return errors.New("tuya.baseUrl cannot be empty")
	}
	if strings.TrimSpace(c.Tuya.AccessID) == "" {
		return errors.New("tuya.accessId cannot be empty")
	}
	if strings.TrimSpace(c.Tuya.AccessSecret) == "" {
		return errors.New("tuya.accessSecret cannot be empty")
	}
	if strings.TrimSpace(c.Tuya.DeviceID) == "" {
		return errors.New("tuya.deviceId cannot be empty")
	}
	if c.Tuya.Timeout < 0 {
		return errors.New("tuya.timeout cannot be negative")
	}
	if c.TokenCache.Valkey.Enabled && strings.TrimSpace(c.TokenCache.Valkey.Addr) == "" {
		return errors.New("tokenCache.valkey.addr cannot be empty when valkey cache is enabled")
	}
	if c.MQTT.Enabled {
		if strings.TrimSpace(c.MQTT.Broker) == "" {
			return errors.New("mqtt.broker cannot be empty when mqtt is enabled")
		}
		if strings.TrimSpace(c.MQTT.Topic) == "" {
			return errors.New("mqtt.topic cannot be empty when mqtt is enabled")
		}
		if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
			return errors.New("mqtt.qos must be 0, 1 or 2")
		}
	}
	return nil
}
