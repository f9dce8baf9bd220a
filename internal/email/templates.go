package email

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"strings"
)

// TemplateActivation is the file name of the activation mail template.
const TemplateActivation = "activation-mail.html"

//go:embed templates/*.html
var builtinTemplates embed.FS

// TemplateManager renders a fixed set of html templates. The set is parsed
// once up front, so Render is safe for concurrent use.
type TemplateManager struct {
	set *template.Template
}

// NewTemplateManager parses every file in fsys matching patterns. Templates
// are named after their file name.
func NewTemplateManager(fsys fs.FS, patterns ...string) (*TemplateManager, error) {
	set, err := template.New("mail").ParseFS(fsys, patterns...)
	if err != nil {
		return nil, fmt.Errorf("parse mail templates: %w", err)
	}
	return &TemplateManager{set: set}, nil
}

// NewDefaultTemplateManager loads the templates compiled into the binary.
func NewDefaultTemplateManager() (*TemplateManager, error) {
	return NewTemplateManager(builtinTemplates, "templates/*.html")
}

func (tm *TemplateManager) Render(name string, data TemplateData) (string, error) {
	if tm.set.Lookup(name) == nil {
		return "", fmt.Errorf("template not found: %s", name)
	}

	var buf strings.Builder
	if err := tm.set.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}
