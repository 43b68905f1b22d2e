package display

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// Host keeps panels in memory and serves them at /panels/{id}.
type Host struct {
	baseURL string

	mu     sync.RWMutex
	panels map[string]*hostPanel
}

type hostPanel struct {
	host *Host
	info PanelInfo
	html string
}

// NewHost creates a Host whose panel URLs start with baseURL, for example
// http://127.0.0.1:8080.
func NewHost(baseURL string) *Host {
	return &Host{
		baseURL: strings.TrimRight(baseURL, "/"),
		panels:  make(map[string]*hostPanel),
	}
}

func (h *Host) Render(ctx context.Context, opts RenderOptions) (Panel, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	html, err := executeTemplate(opts)
	if err != nil {
		return nil, err
	}
	p := h.add(renderInfo(uuid.NewString(), opts))
	_ = p.SetHTML(html)
	return p, nil
}

func (h *Host) OpenPanel(ctx context.Context, opts PanelOptions) (Panel, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return h.add(panelInfo(uuid.NewString(), opts)), nil
}

func (h *Host) add(info PanelInfo) *hostPanel {
	p := &hostPanel{host: h, info: info}
	h.mu.Lock()
	h.panels[info.ID] = p
	h.mu.Unlock()
	return p
}

func (h *Host) get(id string) (PanelInfo, string, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	p, ok := h.panels[id]
	if !ok {
		return PanelInfo{}, "", false
	}
	return p.info, p.html, true
}

// List returns panel metadata, newest first.
func (h *Host) List() []PanelInfo {
	h.mu.RLock()
	out := make([]PanelInfo, 0, len(h.panels))
	for _, p := range h.panels {
		out = append(out, p.info)
	}
	h.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// Routes serves GET /panels and GET /panels/{id}.
func (h *Host) Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.handleList)
	r.Get("/{id}", h.handlePanel)
	return r
}

func (h *Host) handleList(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(h.List())
}

func (h *Host) handlePanel(w http.ResponseWriter, r *http.Request) {
	info, html, ok := h.get(chi.URLParam(r, "id"))
	if !ok {
		http.Error(w, "panel not found", http.StatusNotFound)
		return
	}
	if !info.EnableScripts {
		w.Header().Set("Content-Security-Policy", "script-src 'none'")
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(html))
}

func (p *hostPanel) ID() string {
	return p.info.ID
}

func (p *hostPanel) URL() string {
	return p.host.baseURL + "/panels/" + p.info.ID
}

func (p *hostPanel) SetHTML(html string) error {
	if p == nil || p.host == nil {
		return errors.New("panel is closed")
	}
	p.host.mu.Lock()
	p.html = html
	p.host.mu.Unlock()
	return nil
}
