package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ModelOption is one selectable model label
type ModelOption struct {
	Label       string `yaml:"label" json:"label"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
}

// Catalog is the list of models offered to users. Any selector can be
// dispatched; the catalog only drives what clients display.
type Catalog struct {
	Models []ModelOption `yaml:"models" json:"models"`
}

var defaultLabels = []string{
	"🔹 Gemini: gemini/gemini-1.5-flash",
	"🟦 Together: meta-llama/Llama-Vision-Free",
	"🟦 Together: deepseek-ai/DeepSeek-R1-Distill-Llama-70B-free",
	"🟧 Groq: llama3-8b-8192",
	"🟧 Groq: llama3-70b-8192",
	"🟧 Groq: mixtral-8x7b-32768",
	"🟧 Groq: gemma-7b-it",
	"🟥 MistralAI: mistral-small-latest",
	"🟩 OpenRouter: mistralai/mistral-7b-instruct",
	"🟩 OpenRouter: moonshotai/kimi-dev-72b:free",
	"🟩 OpenRouter: deepseek/deepseek-r1-0528-qwen3-8b:free",
}

// DefaultCatalog returns the built-in model list
func DefaultCatalog() Catalog {
	models := make([]ModelOption, len(defaultLabels))
	for i, label := range defaultLabels {
		models[i] = ModelOption{Label: label}
	}
	return Catalog{Models: models}
}

// LoadCatalog reads a YAML catalog from path. An empty path yields the default catalog.
func LoadCatalog(path string) (Catalog, error) {
	if path == "" {
		return DefaultCatalog(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("reading %s: %w", path, err)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes a YAML catalog and checks every entry has a unique label
func ParseCatalog(data []byte) (Catalog, error) {
	var catalog Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return Catalog{}, fmt.Errorf("parsing catalog: %w", err)
	}
	if len(catalog.Models) == 0 {
		return Catalog{}, fmt.Errorf("catalog has no models")
	}

	seen := make(map[string]struct{}, len(catalog.Models))
	for i := range catalog.Models {
		label := strings.TrimSpace(catalog.Models[i].Label)
		if label == "" {
			return Catalog{}, fmt.Errorf("catalog entry %d has no label", i+1)
		}
		if _, dup := seen[label]; dup {
			return Catalog{}, fmt.Errorf("duplicate catalog label %q", label)
		}
		seen[label] = struct{}{}
		catalog.Models[i].Label = label
	}
	return catalog, nil
}

// Labels returns the labels in catalog order
func (c Catalog) Labels() []string {
	labels := make([]string, len(c.Models))
	for i, m := range c.Models {
		labels[i] = m.Label
	}
	return labels
}

// Contains reports whether label is in the catalog
func (c Catalog) Contains(label string) bool {
	for _, m := range c.Models {
		if m.Label == label {
			return true
		}
	}
	return false
}
