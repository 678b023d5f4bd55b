package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/garnizeh/eduverify/pkg/ollama"
)

const insecureJWTSecret = "supersecretkey"

// Store backends.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

// Skill suggestion providers.
const (
	ProviderStatic = "static"
	ProviderOllama = "ollama"
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

type Config struct {
	Env           string        `yaml:"env"`
	Addr          string        `yaml:"addr"`
	JWTSecret     string        `yaml:"jwt_secret"`
	APITimeout    time.Duration `yaml:"timeout"`
	TokenDuration time.Duration `yaml:"token_duration"`
	LogLevel      string        `yaml:"log_level"`
	Store         StoreConfig   `yaml:"store"`
	Skills        SkillsConfig  `yaml:"skills"`
}

type StoreConfig struct {
	Backend      string `yaml:"backend"`
	DatabasePath string `yaml:"database_path"`
	// FixturePath overrides the embedded demo directory when set.
	FixturePath string `yaml:"fixture_path"`
	Seed        bool   `yaml:"seed"`
}

type SkillsConfig struct {
	Provider        string        `yaml:"provider"`
	Timeout         time.Duration `yaml:"timeout"`
	TemplateVersion string        `yaml:"template_version"`
	Ollama          ollama.Config `yaml:"ollama"`
	Gemini          GeminiConfig  `yaml:"gemini"`
	OpenAI          OpenAIConfig  `yaml:"openai"`
}

type GeminiConfig struct {
	ProjectID string `yaml:"project_id"`
	Location  string `yaml:"location"`
	Model     string `yaml:"model"`
}

type OpenAIConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

// LoadConfig builds defaults from the environment (a .env file in the working
// directory is honored) and decodes the optional YAML file over them.
func LoadConfig(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	ollamaCfg := ollama.DefaultConfig()
	ollamaCfg.BaseURL = getEnv("EDV_OLLAMA_URL", ollamaCfg.BaseURL)
	ollamaCfg.Model = getEnv("EDV_OLLAMA_MODEL", ollamaCfg.Model)

	cfg := &Config{
		Env:           getEnv("EDV_ENV", "development"),
		Addr:          getEnv("EDV_ADDR", ":8080"),
		JWTSecret:     getEnv("EDV_JWT_SECRET", insecureJWTSecret),
		APITimeout:    15 * time.Second,
		TokenDuration: 1 * time.Hour,
		LogLevel:      getEnv("EDV_LOG_LEVEL", "info"),
		Store: StoreConfig{
			Backend:      getEnv("EDV_STORE_BACKEND", BackendMemory),
			DatabasePath: getEnv("EDV_DATABASE_PATH", "eduverify.db"),
			FixturePath:  getEnv("EDV_FIXTURE_PATH", ""),
			Seed:         true,
		},
		Skills: SkillsConfig{
			Provider:        getEnv("EDV_SKILLS_PROVIDER", ProviderStatic),
			Timeout:         10 * time.Second,
			TemplateVersion: "v1",
			Ollama:          ollamaCfg,
			Gemini: GeminiConfig{
				ProjectID: getEnv("EDV_GEMINI_PROJECT", ""),
				Location:  getEnv("EDV_GEMINI_LOCATION", "us-central1"),
				Model:     getEnv("EDV_GEMINI_MODEL", "gemini-2.5-flash"),
			},
			OpenAI: OpenAIConfig{
				APIKey:  getEnv("OPENAI_API_KEY", ""),
				BaseURL: getEnv("EDV_OPENAI_BASE_URL", ""),
				Model:   getEnv("EDV_OPENAI_MODEL", "gpt-4o-mini"),
			},
		},
	}
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		dec := yaml.NewDecoder(f)
		if err := dec.Decode(cfg); err != nil {
			return nil, fmt.Errorf("decode config %s: %w", path, err)
		}
	}

	return cfg, nil
}

// Validate rejects unusable configurations and fills zero-valued tunables.
func (c *Config) Validate() error {
	var errs []error

	if c.Addr == "" {
		errs = append(errs, errors.New("addr is required"))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("jwt_secret is required"))
	} else if c.JWTSecret == insecureJWTSecret && c.Env != "development" {
		errs = append(errs, fmt.Errorf("insecure jwt_secret is only allowed in development (env=%q)", c.Env))
	}
	if c.APITimeout <= 0 {
		c.APITimeout = 15 * time.Second
	}
	if c.TokenDuration <= 0 {
		c.TokenDuration = time.Hour
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}

	switch c.Store.Backend {
	case BackendMemory:
	case BackendSQLite:
		if c.Store.DatabasePath == "" {
			errs = append(errs, errors.New("store.database_path is required for the sqlite backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown store.backend %q", c.Store.Backend))
	}

	s := &c.Skills
	if s.Timeout <= 0 {
		s.Timeout = 10 * time.Second
	}
	if s.TemplateVersion == "" {
		s.TemplateVersion = "v1"
	}
	switch s.Provider {
	case ProviderStatic:
	case ProviderOllama:
		if c.Store.Backend != BackendSQLite {
			errs = append(errs, errors.New("skills.provider ollama needs the sqlite store for its prompt templates"))
		}
		def := ollama.DefaultConfig()
		if s.Ollama.BaseURL == "" {
			s.Ollama.BaseURL = def.BaseURL
		}
		if s.Ollama.Model == "" {
			s.Ollama.Model = def.Model
		}
		if s.Ollama.Timeout <= 0 {
			s.Ollama.Timeout = def.Timeout
		}
		if s.Ollama.Backoff <= 0 {
			s.Ollama.Backoff = def.Backoff
		}
		if s.Ollama.CircuitReset <= 0 {
			s.Ollama.CircuitReset = def.CircuitReset
		}
		if s.Ollama.Retries < 0 {
			errs = append(errs, errors.New("skills.ollama.retries must be >= 0"))
		}
	case ProviderGemini:
		if s.Gemini.ProjectID == "" {
			errs = append(errs, errors.New("skills.gemini.project_id is required"))
		}
		if s.Gemini.Location == "" || s.Gemini.Model == "" {
			errs = append(errs, errors.New("skills.gemini.location and skills.gemini.model are required"))
		}
	case ProviderOpenAI:
		if s.OpenAI.APIKey == "" {
			errs = append(errs, errors.New("skills.openai.api_key is required"))
		}
		if s.OpenAI.Model == "" {
			errs = append(errs, errors.New("skills.openai.model is required"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown skills.provider %q", s.Provider))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// SlogLevel returns the configured log level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	l, err := parseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return l
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log_level %q", s)
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return def
}
