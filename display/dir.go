package display

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Dir writes every panel to <dir>/<id>.html with a <id>.json metadata file
// beside it.
type Dir struct {
	dir string
}

func NewDir(dir string) (*Dir, error) {
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "zhihu-panels")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create panel dir: %w", err)
	}
	return &Dir{dir: dir}, nil
}

func (d *Dir) Render(ctx context.Context, opts RenderOptions) (Panel, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	html, err := executeTemplate(opts)
	if err != nil {
		return nil, err
	}
	p, err := d.open(renderInfo(uuid.NewString(), opts))
	if err != nil {
		return nil, err
	}
	if err := p.SetHTML(html); err != nil {
		return nil, err
	}
	return p, nil
}

func (d *Dir) OpenPanel(ctx context.Context, opts PanelOptions) (Panel, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := d.open(panelInfo(uuid.NewString(), opts))
	if err != nil {
		return nil, err
	}
	// An empty page until content arrives.
	if err := p.SetHTML(""); err != nil {
		return nil, err
	}
	return p, nil
}

func (d *Dir) open(info PanelInfo) (*dirPanel, error) {
	meta, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(filepath.Join(d.dir, info.ID+".json"), meta, 0o644); err != nil {
		return nil, fmt.Errorf("write panel metadata: %w", err)
	}
	return &dirPanel{id: info.ID, path: filepath.Join(d.dir, info.ID+".html")}, nil
}

type dirPanel struct {
	id   string
	path string
}

func (p *dirPanel) ID() string {
	return p.id
}

func (p *dirPanel) URL() string {
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(p.path)}).String()
}

func (p *dirPanel) SetHTML(html string) error {
	if err := os.WriteFile(p.path, []byte(html), 0o644); err != nil {
		return fmt.Errorf("write panel: %w", err)
	}
	return nil
}
