// Package skills suggests skill tags for a free-text project description.
// The AI call is an external dependency: Suggester bounds it with a timeout
// and degrades every failure to an empty suggestion list.
package skills

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"golang.org/x/text/cases"
)

// ErrNoSkills reports a provider reply without a usable skill list.
var ErrNoSkills = errors.New("no skills in response")

// Extractor is implemented by every AI provider.
type Extractor interface {
	ExtractSkills(ctx context.Context, text string) ([]string, error)
}

// Reloader is implemented by extractors whose prompt schemas live in the
// store and can be refreshed without a restart.
type Reloader interface {
	ReloadSchemas(ctx context.Context) error
}

// package-level logger; can be replaced by callers
var logger = slog.New(slog.NewJSONHandler(os.Stdout, nil))

// SetLogger sets the logger used by the skills package. Passing nil is a no-op.
func SetLogger(l *slog.Logger) {
	if l != nil {
		logger = l
	}
}

type Suggester struct {
	extractor Extractor
	timeout   time.Duration
}

func NewSuggester(e Extractor, timeout time.Duration) *Suggester {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Suggester{extractor: e, timeout: timeout}
}

// Suggest never fails: provider errors, timeouts and panics are logged and
// yield an empty list. Results are trimmed and de-duplicated ignoring case,
// keeping the first spelling seen. The wait is bounded even when the
// provider ignores ctx; a late reply is discarded.
func (s *Suggester) Suggest(ctx context.Context, text string) []string {
	if strings.TrimSpace(text) == "" || s.extractor == nil {
		return []string{}
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	type result struct {
		skills []string
		err    error
	}
	done := make(chan result, 1)

	start := time.Now()
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result{err: fmt.Errorf("extractor panicked: %v", r)}
			}
		}()
		raw, err := s.extractor.ExtractSkills(ctx, text)
		done <- result{skills: raw, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			logger.Warn("skills: extraction failed",
				slog.String("error", res.err.Error()),
				slog.Duration("elapsed", time.Since(start)),
			)
			return []string{}
		}
		return normalize(res.skills)
	case <-ctx.Done():
		logger.Warn("skills: extraction abandoned",
			slog.String("error", ctx.Err().Error()),
			slog.Duration("elapsed", time.Since(start)),
		)
		return []string{}
	}
}

func normalize(raw []string) []string {
	fold := cases.Fold()
	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, s := range raw {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		key := fold.String(s)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	return out
}

// decodeSkills accepts either a bare JSON array of strings or an object with
// a "skills" array, optionally wrapped in prose or a markdown fence.
func decodeSkills(s string) ([]string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, errors.New("empty response")
	}

	if arr := extractArray(s); arr != "" && (strings.HasPrefix(s, "[") || extractJSON(s) == "") {
		var out []string
		if err := json.Unmarshal([]byte(arr), &out); err != nil {
			return nil, fmt.Errorf("json unmarshal: %w", err)
		}
		return out, nil
	}

	obj := extractJSON(s)
	if obj == "" {
		return nil, errors.New("no JSON found in response")
	}
	var payload struct {
		Skills []string `json:"skills"`
	}
	if err := json.Unmarshal([]byte(obj), &payload); err != nil {
		return nil, fmt.Errorf("json unmarshal: %w", err)
	}
	if payload.Skills == nil {
		return nil, ErrNoSkills
	}
	return payload.Skills, nil
}

// extractJSON returns the substring from the first '{' to the last '}' in the input.
// This is a pragmatic approach to handle model outputs that wrap JSON in text or markdown.
func extractJSON(s string) string {
	first := strings.Index(s, "{")
	last := strings.LastIndex(s, "}")
	if first == -1 || last == -1 || last < first {
		return ""
	}
	return s[first : last+1]
}

func extractArray(s string) string {
	first := strings.Index(s, "[")
	last := strings.LastIndex(s, "]")
	if first == -1 || last == -1 || last < first {
		return ""
	}
	return s[first : last+1]
}
