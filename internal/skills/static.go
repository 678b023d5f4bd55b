package skills

import "context"

// Static returns fixed suggestions. It stands in for an AI provider when
// none is configured, so the suggestion flow stays usable in demos.
type Static struct {
	Skills []string
}

func NewStatic() *Static {
	return &Static{Skills: []string{"AI Skill 1", "AI Skill 2"}}
}

func (s *Static) ExtractSkills(ctx context.Context, text string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return append([]string{}, s.Skills...), nil
}
