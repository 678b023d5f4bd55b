package skills

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/garnizeh/eduverify/internal/config"
	"github.com/garnizeh/eduverify/pkg/ollama"
	"github.com/garnizeh/eduverify/pkg/repository"
)

// Prompts is the prompt storage the ollama provider reads from.
type Prompts interface {
	repository.SchemaRepo
	repository.TemplateRepo
}

// New builds the extractor selected by cfg.Provider. The returned close
// function releases provider resources and is never nil.
func New(ctx context.Context, cfg config.SkillsConfig, prompts Prompts) (Extractor, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Provider {
	case "", config.ProviderStatic:
		logger.Info("skills: using static suggestions")
		return NewStatic(), noop, nil

	case config.ProviderOllama:
		if prompts == nil {
			return nil, noop, fmt.Errorf("ollama provider requires prompt storage")
		}
		client, err := ollama.NewDefaultClient(cfg.Ollama)
		if err != nil {
			return nil, noop, fmt.Errorf("create ollama client: %w", err)
		}
		ex, err := NewOllama(ctx, client, cfg.Ollama.Model, cfg.TemplateVersion, prompts, prompts)
		if err != nil {
			client.Close()
			return nil, noop, err
		}
		logger.Info("skills: using ollama",
			slog.String("base_url", cfg.Ollama.BaseURL),
			slog.String("model", cfg.Ollama.Model),
			slog.String("template_version", cfg.TemplateVersion),
		)
		checkOllama(ctx, client, cfg.Ollama.Model)
		return ex, client.Close, nil

	case config.ProviderGemini:
		ex, err := NewGemini(ctx, cfg.Gemini.ProjectID, cfg.Gemini.Location, cfg.Gemini.Model)
		if err != nil {
			return nil, noop, err
		}
		logger.Info("skills: using gemini", slog.String("model", cfg.Gemini.Model), slog.String("location", cfg.Gemini.Location))
		return ex, ex.Close, nil

	case config.ProviderOpenAI:
		ex, err := NewOpenAI(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, cfg.OpenAI.Model)
		if err != nil {
			return nil, noop, err
		}
		logger.Info("skills: using openai", slog.String("model", cfg.OpenAI.Model))
		return ex, noop, nil
	}

	return nil, noop, fmt.Errorf("unknown skills provider %q", cfg.Provider)
}

// checkOllama queries the instance at startup. An unreachable instance or a
// missing model is only logged: suggestions degrade to empty lists until it
// comes up.
func checkOllama(ctx context.Context, client *ollama.Client, model string) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Health(ctx); err != nil {
		logger.Warn("skills: ollama not healthy", slog.String("error", err.Error()))
		return
	}
	models, err := client.ListModels(ctx)
	if err != nil {
		logger.Warn("skills: list ollama models", slog.String("error", err.Error()))
		return
	}
	for _, m := range models {
		if m.Name == model || strings.HasPrefix(m.Name, model+":") {
			return
		}
	}
	logger.Warn("skills: ollama model not pulled", slog.String("model", model), slog.Int("available", len(models)))
}
