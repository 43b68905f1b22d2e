package publisher

import (
	"bytes"
	"fmt"

	"github.com/adrg/frontmatter"

	"zhihu_answer_publisher/target"
)

// Document is an answer file: optional front matter naming the target, and
// the Markdown body that gets rendered.
type Document struct {
	Title  string
	Target *target.Target
	Body   string
}

type documentMeta struct {
	Title  string `yaml:"title" toml:"title" json:"title"`
	Target struct {
		ID   string      `yaml:"id" toml:"id" json:"id"`
		Type target.Kind `yaml:"type" toml:"type" json:"type"`
	} `yaml:"target" toml:"target" json:"target"`
}

// ParseDocument splits front matter from the body. Files without front
// matter are returned whole.
//
//	---
//	title: Why Go?
//	target:
//	  id: "42"
//	  type: question
//	---
func ParseDocument(source []byte) (Document, error) {
	var meta documentMeta
	body, err := frontmatter.Parse(bytes.NewReader(source), &meta)
	if err != nil {
		return Document{}, fmt.Errorf("parse front matter: %w", err)
	}
	doc := Document{Title: meta.Title, Body: string(body)}
	if meta.Target.ID != "" {
		kind := meta.Target.Type
		if kind == "" {
			kind = target.KindQuestion
		}
		if kind != target.KindQuestion && kind != target.KindAnswer {
			return Document{}, fmt.Errorf("%w: %q", ErrUnsupportedTarget, kind)
		}
		doc.Target = &target.Target{ID: target.ID(meta.Target.ID), Type: kind}
	}
	return doc, nil
}
