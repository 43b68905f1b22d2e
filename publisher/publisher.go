// Package publisher renders a Markdown answer, submits it to a Zhihu question
// or answer, then shows the page Zhihu renders for it.
package publisher

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"

	"golang.org/x/sync/errgroup"

	"zhihu_answer_publisher/display"
	"zhihu_answer_publisher/httpclient"
	"zhihu_answer_publisher/target"
)

// PreviewTemplate is the embedded template used by Preview.
const PreviewTemplate = "pre-publish.html"

// Renderer turns a Markdown document into HTML.
type Renderer interface {
	Render(text string) (string, error)
}

// TargetResolver picks where a document is published.
type TargetResolver interface {
	Resolve(ctx context.Context) (target.Target, error)
}

// Notifier shows a short message to the user.
type Notifier interface {
	Notify(ctx context.Context, message string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, message string)

func (f NotifierFunc) Notify(ctx context.Context, message string) {
	f(ctx, message)
}

// Options wires a Publisher. Client, Routes, Renderer, PreviewRenderer and
// Surface are required; Resolver is required for Publish.
type Options struct {
	Client          httpclient.Doer
	Routes          *Routes
	Renderer        Renderer
	PreviewRenderer Renderer
	Resolver        TargetResolver
	Surface         display.Surface
	Notifier        Notifier
	Logger          *slog.Logger
	// OnState is called on every state change of a publish run.
	OnState func(State)
}

// Result describes a successful publish.
type Result struct {
	Target   target.Target
	AnswerID target.ID
	// URL is the canonical link shown in the success notification.
	URL   string
	Panel display.Panel
}

// Publisher is safe for concurrent use; every call works on its own snapshot.
type Publisher struct {
	client   httpclient.Doer
	routes   *Routes
	render   Renderer
	preview  Renderer
	resolver TargetResolver
	surface  display.Surface
	notifier Notifier
	logger   *slog.Logger
	onState  func(State)
}

func New(opts Options) (*Publisher, error) {
	if opts.Client == nil {
		return nil, errors.New("publisher: http client is required")
	}
	if opts.Routes == nil {
		return nil, errors.New("publisher: routes are required")
	}
	if opts.Renderer == nil || opts.PreviewRenderer == nil {
		return nil, errors.New("publisher: both renderers are required")
	}
	if opts.Surface == nil {
		return nil, errors.New("publisher: display surface is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	notifier := opts.Notifier
	if notifier == nil {
		notifier = NotifierFunc(func(ctx context.Context, message string) {
			logger.InfoContext(ctx, message)
		})
	}
	return &Publisher{
		client:   opts.Client,
		routes:   opts.Routes,
		render:   opts.Renderer,
		preview:  opts.PreviewRenderer,
		resolver: opts.Resolver,
		surface:  opts.Surface,
		notifier: notifier,
		logger:   logger,
		onState:  opts.OnState,
	}, nil
}

// WithResolver returns a copy of p that publishes to whatever r resolves.
func (p *Publisher) WithResolver(r TargetResolver) *Publisher {
	cp := *p
	cp.resolver = r
	return &cp
}

func (p *Publisher) setState(ctx context.Context, s State) {
	p.logger.DebugContext(ctx, "publish state", slog.String("state", s.String()))
	if p.onState != nil {
		p.onState(s)
	}
}

// PublishTo publishes doc to a target the caller already chose.
func (p *Publisher) PublishTo(ctx context.Context, doc string, t target.Target) (Result, error) {
	return p.WithResolver(target.Fixed(t)).Publish(ctx, doc)
}

// Publish renders doc, asks for a target, submits the answer and displays
// the result page. Nothing is sent when rendering or selection fails.
func (p *Publisher) Publish(ctx context.Context, doc string) (Result, error) {
	if p.resolver == nil {
		return Result{}, errors.New("publisher: no target resolver configured")
	}
	p.setState(ctx, StateIdle)

	var (
		html string
		tgt  target.Target
	)
	g, gctx := errgroup.WithContext(ctx)
	p.setState(ctx, StateRendering)
	g.Go(func() error {
		out, err := p.render.Render(doc)
		if err != nil {
			return fmt.Errorf("render document: %w", err)
		}
		html = out
		return nil
	})
	p.setState(ctx, StateResolvingTarget)
	g.Go(func() error {
		t, err := p.resolver.Resolve(gctx)
		if err != nil {
			return wrapResolveError(err)
		}
		tgt = t
		return nil
	})
	if err := g.Wait(); err != nil {
		p.setState(ctx, StateIdle)
		return Result{}, err
	}

	res, err := p.run(ctx, html, tgt)
	if errors.Is(err, ErrDisplay) {
		// The answer is live; only showing it failed.
		p.logger.WarnContext(ctx, "result page not shown",
			slog.String("url", res.URL),
			slog.Any("err", err),
		)
		return res, err
	}
	if err != nil {
		p.setState(ctx, StateFailed)
		p.logger.ErrorContext(ctx, "publish failed",
			slog.String("target_id", tgt.ID.String()),
			slog.String("target_type", string(tgt.Type)),
			slog.Any("err", err),
		)
		return res, err
	}
	p.setState(ctx, StateDone)
	return res, nil
}

func (p *Publisher) run(ctx context.Context, html string, tgt target.Target) (Result, error) {
	res := Result{Target: tgt}

	p.setState(ctx, StateSubmitting)
	answerID, link, err := p.submit(ctx, html, tgt)
	if err != nil {
		return res, err
	}
	res.AnswerID, res.URL = answerID, link
	p.notifier.Notify(ctx, "发布成功！\n "+link)
	p.logger.InfoContext(ctx, "answer published",
		slog.String("target_id", tgt.ID.String()),
		slog.String("target_type", string(tgt.Type)),
		slog.String("url", link),
	)

	p.setState(ctx, StateFetchingResult)
	page, err := p.fetch(ctx, answerID)
	if err != nil {
		return res, err
	}

	p.setState(ctx, StateDisplaying)
	panel, err := p.surface.OpenPanel(ctx, display.PanelOptions{
		ViewType:          "zhihu",
		Title:             "zhihu",
		Column:            display.ColumnOne,
		EnableScripts:     true,
		EnableCommandURIs: true,
		EnableFindWidget:  true,
	})
	if err != nil {
		return res, fmt.Errorf("%w: open panel: %w", ErrDisplay, err)
	}
	if err := panel.SetHTML(page); err != nil {
		return res, fmt.Errorf("%w: set html: %w", ErrDisplay, err)
	}
	res.Panel = panel
	return res, nil
}

// submit sends html to tgt and returns the answer id plus the link to show.
// The target type alone decides the verb, URL and payload.
func (p *Publisher) submit(ctx context.Context, html string, tgt target.Target) (target.ID, string, error) {
	switch tgt.Type {
	case target.KindQuestion:
		uri, err := p.routes.QuestionAnswers(tgt.ID)
		if err != nil {
			return "", "", err
		}
		resp, err := p.client.Send(ctx, httpclient.Request{
			URI:          uri,
			Method:       http.MethodPost,
			Body:         PostAnswer{Content: html},
			JSON:         true,
			FullResponse: true,
			Headers:      map[string]string{},
		})
		if err != nil {
			return "", "", transportError("submit answer", err)
		}
		if resp.StatusCode != http.StatusOK {
			return "", "", submitFailed(uri, resp.StatusCode)
		}
		var created createdAnswer
		if err := resp.DecodeJSON(&created); err != nil || created.ID == "" {
			return "", "", submitFailed(uri, resp.StatusCode)
		}
		link, err := p.routes.QuestionAnswer(tgt.ID, created.ID)
		if err != nil {
			return "", "", err
		}
		return created.ID, link, nil

	case target.KindAnswer:
		uri, err := p.routes.Answer(tgt.ID)
		if err != nil {
			return "", "", err
		}
		resp, err := p.client.Send(ctx, httpclient.Request{
			URI:          uri,
			Method:       http.MethodPut,
			Body:         newUpdateAnswer(html),
			JSON:         true,
			FullResponse: true,
			Headers:      map[string]string{},
		})
		if err != nil {
			return "", "", transportError("update answer", err)
		}
		if resp.StatusCode != http.StatusOK {
			return "", "", submitFailed(uri, resp.StatusCode)
		}
		return tgt.ID, uri, nil

	default:
		return "", "", fmt.Errorf("%w: %q", ErrUnsupportedTarget, tgt.Type)
	}
}

func (p *Publisher) fetch(ctx context.Context, answerID target.ID) (string, error) {
	uri, err := p.routes.Answer(answerID)
	if err != nil {
		return "", err
	}
	resp, err := p.client.Send(ctx, httpclient.Request{URI: uri, Gzip: true})
	if err != nil {
		return "", transportError("fetch answer page", err)
	}
	return string(resp.Body), nil
}

// Preview renders doc with the preview renderer into a panel beside the
// document. It never touches the network.
func (p *Publisher) Preview(ctx context.Context, doc string) (display.Panel, error) {
	html, err := p.preview.Render(doc)
	if err != nil {
		return nil, fmt.Errorf("render preview: %w", err)
	}
	return p.surface.Render(ctx, display.RenderOptions{
		Title:    "预览",
		Template: PreviewTemplate,
		Data: map[string]any{
			"title":   "答案预览",
			"content": template.HTML(html),
		},
		Column:        display.ColumnBeside,
		PreserveFocus: true,
	})
}
