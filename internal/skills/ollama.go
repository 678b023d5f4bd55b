package skills

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/garnizeh/eduverify/pkg/ollama"
	"github.com/garnizeh/eduverify/pkg/repository"
)

// TemplateName is the prompt template used for skill extraction.
const TemplateName = "skills"

// generator is the subset of *ollama.Client used here.
type generator interface {
	Generate(ctx context.Context, model string, prompt string) (ollama.GenerateResult, error)
}

// Ollama extracts skills with a local model. The prompt comes from the
// stored template and replies are validated against the template's schema.
type Ollama struct {
	client        generator
	model         string
	template      string
	version       string
	schemaVersion string
	loader        *Loader
}

// NewOllama loads the skills template of the given version; a missing
// template is an error.
func NewOllama(ctx context.Context, client generator, model, version string, sr repository.SchemaRepo, tr repository.TemplateRepo) (*Ollama, error) {
	if client == nil {
		return nil, fmt.Errorf("ollama client is required")
	}
	if sr == nil {
		return nil, fmt.Errorf("schema repo is required")
	}
	if tr == nil {
		return nil, fmt.Errorf("template repo is required")
	}

	loader, err := NewLoader(ctx, sr)
	if err != nil {
		return nil, fmt.Errorf("create loader: %w", err)
	}

	tpl, err := tr.GetTemplate(ctx, TemplateName, version)
	if err != nil {
		return nil, fmt.Errorf("load template: %w", err)
	}
	if tpl == nil || tpl.TemplateTxt == "" {
		return nil, fmt.Errorf("template %s:%s not found", TemplateName, version)
	}

	schemaVer := tpl.Version
	if tpl.SchemaVer != nil && *tpl.SchemaVer != "" {
		schemaVer = *tpl.SchemaVer
	}
	if s, ok := loader.GetSchema(schemaVer); !ok || s == nil {
		return nil, fmt.Errorf("no schema found for version %s", schemaVer)
	}

	return &Ollama{
		client:        client,
		model:         model,
		template:      tpl.TemplateTxt,
		version:       tpl.Version,
		schemaVersion: schemaVer,
		loader:        loader,
	}, nil
}

func (o *Ollama) ExtractSkills(ctx context.Context, text string) ([]string, error) {
	prompt, err := ollama.RenderTemplate(o.template, struct{ Description string }{Description: text})
	if err != nil {
		return nil, fmt.Errorf("render template: %w", err)
	}

	out, err := o.client.Generate(ctx, o.model, prompt)
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}

	j := extractJSON(out.Text)
	if j == "" {
		logger.Debug("skills: no JSON object in model output", slog.String("raw", out.Text))
		return nil, fmt.Errorf("no JSON object found in response")
	}

	schema, ok := o.loader.GetSchema(o.schemaVersion)
	if !ok || schema == nil {
		return nil, fmt.Errorf("no schema found for version %s", o.schemaVersion)
	}
	verrs, err := schema.ValidateBytes(ctx, []byte(j))
	if err != nil {
		return nil, fmt.Errorf("schema validate error: %w", err)
	}
	if len(verrs) > 0 {
		var sb strings.Builder
		for _, v := range verrs {
			sb.WriteString(v.Message)
			sb.WriteString("; ")
		}
		return nil, fmt.Errorf("response does not match schema: %s", sb.String())
	}

	return decodeSkills(j)
}

var _ Reloader = (*Ollama)(nil)

// ReloadSchemas refreshes the compiled schema cache from the store. On
// failure the previous schemas stay in use.
func (o *Ollama) ReloadSchemas(ctx context.Context) error {
	return o.loader.Reload(ctx)
}
