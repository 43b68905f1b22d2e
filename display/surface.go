// Package display shows HTML to the user: templated previews and raw pages
// fetched after publishing. Host serves panels over local HTTP; Dir writes
// them to files.
package display

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"time"
)

//go:embed templates/*.html
var embeddedTemplates embed.FS

// ErrTemplateNotFound is returned when a template is neither embedded nor on disk.
var ErrTemplateNotFound = errors.New("template not found")

// Column is where a panel should appear relative to the document.
type Column int

const (
	ColumnActive Column = iota
	ColumnOne
	ColumnBeside
)

func (c Column) String() string {
	switch c {
	case ColumnOne:
		return "one"
	case ColumnBeside:
		return "beside"
	default:
		return "active"
	}
}

// RenderOptions describes a templated panel.
type RenderOptions struct {
	Title string
	// Template is the name of an embedded template or a path on disk.
	Template      string
	Data          map[string]any
	Column        Column
	PreserveFocus bool
}

// PanelOptions describes a panel showing a raw page.
type PanelOptions struct {
	ViewType          string
	Title             string
	Column            Column
	EnableScripts     bool
	EnableCommandURIs bool
	EnableFindWidget  bool
}

// Panel is one open display.
type Panel interface {
	ID() string
	URL() string
	SetHTML(html string) error
}

// Surface opens panels.
type Surface interface {
	Render(ctx context.Context, opts RenderOptions) (Panel, error)
	OpenPanel(ctx context.Context, opts PanelOptions) (Panel, error)
}

// PanelInfo is the metadata kept for each panel.
type PanelInfo struct {
	ID                string    `json:"id"`
	ViewType          string    `json:"view_type,omitempty"`
	Title             string    `json:"title"`
	Column            string    `json:"column"`
	PreserveFocus     bool      `json:"preserve_focus"`
	EnableScripts     bool      `json:"enable_scripts"`
	EnableCommandURIs bool      `json:"enable_command_uris"`
	EnableFindWidget  bool      `json:"enable_find_widget"`
	CreatedAt         time.Time `json:"created_at"`
}

func renderInfo(id string, opts RenderOptions) PanelInfo {
	return PanelInfo{
		ID:            id,
		Title:         opts.Title,
		Column:        opts.Column.String(),
		PreserveFocus: opts.PreserveFocus,
		CreatedAt:     time.Now(),
	}
}

func panelInfo(id string, opts PanelOptions) PanelInfo {
	return PanelInfo{
		ID:                id,
		ViewType:          opts.ViewType,
		Title:             opts.Title,
		Column:            opts.Column.String(),
		EnableScripts:     opts.EnableScripts,
		EnableCommandURIs: opts.EnableCommandURIs,
		EnableFindWidget:  opts.EnableFindWidget,
		CreatedAt:         time.Now(),
	}
}

// executeTemplate renders opts.Template with opts.Data.
func executeTemplate(opts RenderOptions) (string, error) {
	tmpl, err := loadTemplate(opts.Template)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, opts.Data); err != nil {
		return "", fmt.Errorf("render template %s: %w", opts.Template, err)
	}
	return buf.String(), nil
}

func loadTemplate(name string) (*template.Template, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: empty name", ErrTemplateNotFound)
	}
	if !filepath.IsAbs(name) {
		if data, err := fs.ReadFile(embeddedTemplates, path.Join("templates", name)); err == nil {
			return template.New(name).Parse(string(data))
		}
	}
	data, err := os.ReadFile(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, name)
		}
		return nil, err
	}
	return template.New(filepath.Base(name)).Parse(string(data))
}
