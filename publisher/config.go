package publisher

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/goccy/go-yaml"
	goerrors "github.com/goliatone/go-errors"

	"zhihu_answer_publisher/target"
)

const (
	DefaultQuestionAPI = "https://www.zhihu.com/api/v4/questions"
	DefaultAnswerAPI   = "https://www.zhihu.com/api/v4/answers"
	DefaultServerAddr  = "127.0.0.1:8080"
	DefaultStyle       = "github"
)

// Config is read from config/config.json. The file may be JSON or YAML.
type Config struct {
	QuestionAPI string            `json:"question_api,omitempty" yaml:"question_api"`
	AnswerAPI   string            `json:"answer_api,omitempty" yaml:"answer_api"`
	Headers     map[string]string `json:"headers,omitempty" yaml:"headers"`
	Highlight   HighlightConfig   `json:"highlight,omitempty" yaml:"highlight"`

	// Targets are offered for selection in addition to CollectionURL.
	Targets []TargetConfig `json:"targets,omitempty" yaml:"targets"`
	// CollectionURL lists more targets remotely. Optional.
	CollectionURL string `json:"collection_url,omitempty" yaml:"collection_url"`
	// CollectionTTL is how long, in seconds, the server caches the target list.
	CollectionTTL int `json:"collection_ttl,omitempty" yaml:"collection_ttl"`

	ServerAddr string `json:"server_addr,omitempty" yaml:"server_addr"`
	// CORSOrigins lets a frontend on another origin call the workspace API.
	CORSOrigins []string   `json:"cors_origins,omitempty" yaml:"cors_origins"`
	PanelDir    string     `json:"panel_dir,omitempty" yaml:"panel_dir"`
	LLM         *LLMConfig `json:"llm,omitempty" yaml:"llm"`
}

// HighlightConfig picks the chroma style. Publish turns highlighting on for
// the HTML sent to Zhihu as well as for previews.
type HighlightConfig struct {
	Style   string `json:"style,omitempty" yaml:"style"`
	Publish bool   `json:"publish,omitempty" yaml:"publish"`
}

// TargetConfig is a target listed in the config file. Quote numeric ids.
type TargetConfig struct {
	ID      string      `json:"id" yaml:"id"`
	Type    target.Kind `json:"type" yaml:"type"`
	Title   string      `json:"title,omitempty" yaml:"title"`
	Excerpt string      `json:"excerpt,omitempty" yaml:"excerpt"`
}

// LLMConfig 预留给生成模块的模型配置（可选，不影响发布流程）。
type LLMConfig struct {
	Provider string `json:"provider,omitempty" yaml:"provider"`
	Model    string `json:"model,omitempty" yaml:"model"`
	APIKey   string `json:"api_key,omitempty" yaml:"api_key"`
	BaseURL  string `json:"base_url,omitempty" yaml:"base_url"`
}

// Candidates converts the configured targets.
func (c Config) Candidates() []target.Candidate {
	out := make([]target.Candidate, 0, len(c.Targets))
	for _, t := range c.Targets {
		out = append(out, target.Candidate{
			ID:      target.ID(t.ID),
			Type:    t.Type,
			Title:   t.Title,
			Excerpt: t.Excerpt,
		})
	}
	return out
}

// WithDefaults fills every unset field.
func (c Config) WithDefaults() Config {
	if c.QuestionAPI == "" {
		c.QuestionAPI = DefaultQuestionAPI
	}
	if c.AnswerAPI == "" {
		c.AnswerAPI = DefaultAnswerAPI
	}
	if c.Highlight.Style == "" {
		c.Highlight.Style = DefaultStyle
	}
	if c.ServerAddr == "" {
		c.ServerAddr = DefaultServerAddr
	}
	if c.PanelDir == "" {
		c.PanelDir = filepath.Join(os.TempDir(), "zhihu-panels")
	}
	return c
}

var absoluteURL = validation.By(func(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	u, err := url.Parse(s)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.New("must be an absolute URL")
	}
	return nil
})

func (c Config) Validate() error {
	if err := validation.ValidateStruct(&c,
		validation.Field(&c.QuestionAPI, validation.Required, is.URL, absoluteURL),
		validation.Field(&c.AnswerAPI, validation.Required, is.URL, absoluteURL),
		validation.Field(&c.CollectionURL, is.URL, absoluteURL),
		validation.Field(&c.CollectionTTL, validation.Min(0)),
	); err != nil {
		return err
	}
	for i, t := range c.Targets {
		if err := t.Validate(); err != nil {
			return fmt.Errorf("targets[%d]: %w", i, err)
		}
	}
	return nil
}

func (t TargetConfig) Validate() error {
	return validation.ValidateStruct(&t,
		validation.Field(&t.ID, validation.Required),
		validation.Field(&t.Type, validation.Required, validation.In(target.KindQuestion, target.KindAnswer)),
	)
}

// LoadConfig reads the config file, applies defaults and validates it.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	return ParseConfig(data)
}

// ParseConfig decodes JSON or YAML config data.
func ParseConfig(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, goerrors.Wrap(err, goerrors.CategoryValidation, "config could not be parsed").
			WithTextCode(codeConfigInvalid)
	}
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, goerrors.Wrap(err, goerrors.CategoryValidation, "config is invalid").
			WithTextCode(codeConfigInvalid)
	}
	return cfg, nil
}
