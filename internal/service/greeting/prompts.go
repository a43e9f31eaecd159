package greeting

import (
	_ "embed"
	"fmt"
	"strings"

	"facegreeter/internal/model"

	"gopkg.in/yaml.v3"
)

//go:embed prompts.yaml
var promptsYAML []byte

// Prompts holds the chat prompts and the canned greetings used when a service fails.
type Prompts struct {
	Known           string `yaml:"known"`
	Unknown         string `yaml:"unknown"`
	FallbackKnown   string `yaml:"fallback_known"`
	FallbackUnknown string `yaml:"fallback_unknown"`
}

// LoadPrompts decodes the embedded prompts.yaml.
func LoadPrompts() (*Prompts, error) {
	var p Prompts
	if err := yaml.Unmarshal(promptsYAML, &p); err != nil {
		return nil, fmt.Errorf("failed to parse prompts: %w", err)
	}
	if p.Known == "" || p.Unknown == "" || p.FallbackKnown == "" || p.FallbackUnknown == "" {
		return nil, fmt.Errorf("prompts.yaml is incomplete")
	}
	return &p, nil
}

// Prompt returns the chat prompt for a detected identity.
func (p *Prompts) Prompt(name string) string {
	if isUnknown(name) {
		return p.Unknown
	}
	return strings.ReplaceAll(p.Known, "{name}", name)
}

// Fallback returns the canned greeting for a detected identity.
func (p *Prompts) Fallback(name string) string {
	if isUnknown(name) {
		return p.FallbackUnknown
	}
	return strings.ReplaceAll(p.FallbackKnown, "{name}", name)
}

func isUnknown(name string) bool {
	return name == "" || name == model.UnknownIdentity
}
