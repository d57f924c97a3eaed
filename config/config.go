// Package config carrega a configuração do serviço.
//
// A fonte principal é um arquivo YAML; variáveis de ambiente sobrescrevem os
// campos de infraestrutura (endereços, credenciais), o que facilita rodar o
// mesmo arquivo em ambientes diferentes. As cotas por rota têm defaults que
// batem com os limites públicos da API.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration embrulha time.Duration para aceitar strings tipo "8s" no YAML.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("config: invalid duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

// Quota é o par (rate, per) de uma rota protegida.
type Quota struct {
	Rate uint16   `yaml:"rate"`
	Per  Duration `yaml:"per"`
}

type ServerConfig struct {
	ListenAddr string `yaml:"listen_addr"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type GithubConfig struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

// LimitsConfig lista as cotas por rota. Os nomes espelham as rotas da API.
type LimitsConfig struct {
	CreateUser  Quota `yaml:"create_user"`
	Login       Quota `yaml:"login"`
	GetUser     Quota `yaml:"get_user"`
	GetPaste    Quota `yaml:"get_paste"`
	CreatePaste Quota `yaml:"create_paste"`
	StarPaste   Quota `yaml:"star_paste"`
}

type ConcurrencyConfig struct {
	Max            int      `yaml:"max"`
	AcquireTimeout Duration `yaml:"acquire_timeout"`
}

type StatsConfig struct {
	Enabled   bool     `yaml:"enabled"`
	Prefix    string   `yaml:"prefix"`
	TTL       Duration `yaml:"ttl"`
	TrackKeys bool     `yaml:"track_keys"`
}

type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Redis       RedisConfig       `yaml:"redis"`
	Github      GithubConfig      `yaml:"github"`
	Logging     LoggingConfig     `yaml:"logging"`
	Limits      LimitsConfig      `yaml:"limits"`
	Concurrency ConcurrencyConfig `yaml:"concurrency"`
	Stats       StatsConfig       `yaml:"stats"`
}

// Default devolve a configuração com todos os defaults aplicados.
func Default() Config {
	return Config{
		Server:  ServerConfig{ListenAddr: ":8081"},
		Redis:   RedisConfig{Addr: "localhost:6379"},
		Logging: LoggingConfig{Level: "info"},
		Limits: LimitsConfig{
			CreateUser:  Quota{Rate: 2, Per: Duration(20 * time.Second)},
			Login:       Quota{Rate: 2, Per: Duration(8 * time.Second)},
			GetUser:     Quota{Rate: 10, Per: Duration(15 * time.Second)},
			GetPaste:    Quota{Rate: 5, Per: Duration(5 * time.Second)},
			CreatePaste: Quota{Rate: 2, Per: Duration(5 * time.Second)},
			StarPaste:   Quota{Rate: 5, Per: Duration(7 * time.Second)},
		},
		Concurrency: ConcurrencyConfig{Max: 256},
		Stats: StatsConfig{
			Prefix: "admission:stats",
			TTL:    Duration(24 * time.Hour),
		},
	}
}

// Load lê o arquivo YAML (se existir) por cima dos defaults e aplica as
// sobrescritas de ambiente no final.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			// sem arquivo: só defaults + ambiente
		case err != nil:
			return Config{}, fmt.Errorf("config: reading %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("config: parsing %s: %w", path, err)
			}
		}
	}

	applyEnv(&cfg)

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.Server.ListenAddr = getenvDefault("LISTEN_ADDR", cfg.Server.ListenAddr)
	cfg.Redis.Addr = getenvDefault("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = getenvDefault("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = getenvIntDefault("REDIS_DB", cfg.Redis.DB)
	cfg.Github.ClientID = getenvDefault("GITHUB_CLIENT_ID", cfg.Github.ClientID)
	cfg.Github.ClientSecret = getenvDefault("GITHUB_CLIENT_SECRET", cfg.Github.ClientSecret)
	cfg.Logging.Level = getenvDefault("LOG_LEVEL", cfg.Logging.Level)
}

func (c Config) validate() error {
	if c.Server.ListenAddr == "" {
		return errors.New("config: server.listen_addr is required")
	}
	if c.Redis.Addr == "" {
		return errors.New("config: redis.addr is required")
	}
	if c.Concurrency.Max < 0 {
		return errors.New("config: concurrency.max must be >= 0")
	}

	quotas := map[string]Quota{
		"create_user":  c.Limits.CreateUser,
		"login":        c.Limits.Login,
		"get_user":     c.Limits.GetUser,
		"get_paste":    c.Limits.GetPaste,
		"create_paste": c.Limits.CreatePaste,
		"star_paste":   c.Limits.StarPaste,
	}
	for name, q := range quotas {
		if q.Rate == 0 {
			return fmt.Errorf("config: limits.%s.rate must be > 0", name)
		}
		if q.Per <= 0 {
			return fmt.Errorf("config: limits.%s.per must be > 0", name)
		}
	}
	return nil
}

func getenvDefault(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getenvIntDefault(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}
