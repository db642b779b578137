package prompt

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"text/template"

	"gopkg.in/yaml.v2"
)

//go:embed prompts
var embedded embed.FS

// Default returns a registry loaded from the embedded prompt library.
func Default() (*Registry, error) {
	r := NewRegistry()
	if err := r.LoadFS(embedded, "prompts"); err != nil {
		return nil, err
	}
	return r, nil
}

// LoadFS registers every .yaml file under root. A file without an id gets one from its path:
// "valuation/thesis.yaml" becomes "valuation.thesis".
func (r *Registry) LoadFS(fsys fs.FS, root string) error {
	return fs.WalkDir(fsys, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || path.Ext(p) != ".yaml" {
			return nil
		}

		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", p, err)
		}

		var t Template
		if err := yaml.Unmarshal(data, &t); err != nil {
			return fmt.Errorf("failed to parse %s: %w", p, err)
		}
		if t.ID == "" {
			t.ID = idFromPath(p, root)
		}

		if err := r.Register(&t); err != nil {
			return fmt.Errorf("failed to register %s: %w", p, err)
		}
		return nil
	})
}

// Render executes the user template of id against data.
func (r *Registry) Render(id string, data interface{}) (Rendered, error) {
	t, err := r.Get(id)
	if err != nil {
		return Rendered{}, err
	}

	tmpl, err := template.New(t.ID).Funcs(funcs).Option("missingkey=error").Parse(t.UserTemplate)
	if err != nil {
		return Rendered{}, fmt.Errorf("failed to parse template %s: %w", t.ID, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return Rendered{}, fmt.Errorf("failed to execute template %s: %w", t.ID, err)
	}

	return Rendered{
		System:      strings.TrimSpace(t.SystemPrompt),
		User:        buf.String(),
		Temperature: t.Temperature,
		MaxTokens:   t.MaxTokens,
	}, nil
}

func idFromPath(p, root string) string {
	rel := strings.TrimPrefix(p, root+"/")
	rel = strings.TrimSuffix(rel, ".yaml")
	return strings.ReplaceAll(rel, "/", ".")
}

var funcs = template.FuncMap{
	// pct 1 0.1234 -> "12.3"
	"pct": func(decimals int, v float64) string {
		return fmt.Sprintf("%.*f", decimals, v*100)
	},
	// billions 2 1.5e9 -> "1.50"
	"billions": func(decimals int, v float64) string {
		return fmt.Sprintf("%.*f", decimals, v/1e9)
	},
	"fixed": func(decimals int, v float64) string {
		return fmt.Sprintf("%.*f", decimals, v)
	},
	"join": strings.Join,
}
