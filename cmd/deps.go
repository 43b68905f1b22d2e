package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"zhihu_answer_publisher/collection"
	"zhihu_answer_publisher/display"
	"zhihu_answer_publisher/generator"
	"zhihu_answer_publisher/httpclient"
	"zhihu_answer_publisher/logging"
	"zhihu_answer_publisher/markdown"
	"zhihu_answer_publisher/publisher"
	"zhihu_answer_publisher/target"
)

func newLogger() *slog.Logger {
	logger := logging.New(flagVerbose, os.Stderr)
	slog.SetDefault(logger)
	return logger
}

func loadConfig() (publisher.Config, error) {
	cfg, err := publisher.LoadConfig(flagConfig)
	if err != nil {
		return publisher.Config{}, fmt.Errorf("load config %s: %w", flagConfig, err)
	}
	return cfg, nil
}

func readDocument(path string) (publisher.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return publisher.Document{}, fmt.Errorf("read document: %w", err)
	}
	return publisher.ParseDocument(data)
}

func newHTTPClient(cfg publisher.Config, logger *slog.Logger) *httpclient.Client {
	return httpclient.New(&http.Client{Timeout: 60 * time.Second}, cfg.Headers, logger)
}

// buildCollection merges the configured targets with the remote listing.
// With cache set the listing is kept for cfg.CollectionTTL seconds.
func buildCollection(cfg publisher.Config, client httpclient.Doer, cache bool) (target.Collection, error) {
	var sources []target.Collection
	if len(cfg.Targets) > 0 {
		sources = append(sources, collection.Static(cfg.Candidates()))
	}
	if cfg.CollectionURL != "" {
		remote, err := collection.NewRemote(client, cfg.CollectionURL)
		if err != nil {
			return nil, err
		}
		sources = append(sources, remote)
	}
	merged := collection.Merge(sources...)
	if !cache || cfg.CollectionTTL <= 0 {
		return merged, nil
	}
	return collection.NewCached(merged, time.Duration(cfg.CollectionTTL)*time.Second)
}

// buildRenderers returns the publish renderer and the preview renderer.
// Previews are always highlighted; published HTML only when configured.
func buildRenderers(cfg publisher.Config) (publish, preview *markdown.Renderer) {
	hl := markdown.Chroma(cfg.Highlight.Style)
	var publishHL markdown.Highlighter
	if cfg.Highlight.Publish {
		publishHL = hl
	}
	return markdown.NewZhihu(markdown.Fence(publishHL)), markdown.NewPlain(markdown.Fence(hl))
}

func buildPublisher(cfg publisher.Config, client httpclient.Doer, surface display.Surface, resolver publisher.TargetResolver, out io.Writer, logger *slog.Logger) (*publisher.Publisher, error) {
	routes, err := publisher.NewRoutes(cfg.QuestionAPI, cfg.AnswerAPI)
	if err != nil {
		return nil, err
	}
	publishRenderer, previewRenderer := buildRenderers(cfg)
	return publisher.New(publisher.Options{
		Client:          client,
		Routes:          routes,
		Renderer:        publishRenderer,
		PreviewRenderer: previewRenderer,
		Resolver:        resolver,
		Surface:         surface,
		Notifier:        stdoutNotifier(out),
		Logger:          logger,
	})
}

func stdoutNotifier(out io.Writer) publisher.Notifier {
	return publisher.NotifierFunc(func(_ context.Context, message string) {
		fmt.Fprintln(out, message)
	})
}

func buildLLM(cfg publisher.Config) (generator.LLMClient, error) {
	if cfg.LLM == nil || cfg.LLM.Provider == "" {
		return nil, fmt.Errorf("llm config missing; please set llm.provider/model/api_key in config")
	}
	settings := &generator.LLMSettings{
		Provider: cfg.LLM.Provider,
		Model:    cfg.LLM.Model,
		APIKey:   cfg.LLM.APIKey,
		BaseURL:  cfg.LLM.BaseURL,
	}
	switch cfg.LLM.Provider {
	case "openai":
		return generator.NewOpenAILLMFromConfig(settings)
	case "deepseek":
		// DeepSeek 提供 OpenAI 兼容接口，需填写 base_url（例如官方/网关地址）。
		if cfg.LLM.BaseURL == "" {
			return nil, fmt.Errorf("llm provider deepseek requires base_url (OpenAI-compatible endpoint)")
		}
		return generator.NewOpenAILLMFromConfig(settings)
	case "mock":
		return generator.MockLLM{}, nil
	default:
		return nil, fmt.Errorf("llm provider %s not supported", cfg.LLM.Provider)
	}
}
