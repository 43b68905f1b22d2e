package generator

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
)

// Session 持有一个问题的多轮生成/修订上下文。并发调用按顺序执行。
type Session struct {
	ID   string
	Spec Spec

	mu      sync.Mutex
	draft   Draft
	history []Turn
	agent   *Agent
}

// NewSession 创建 session，尚未生成回答。
func NewSession(id string, spec Spec, agent *Agent) *Session {
	return &Session{
		ID:    id,
		Spec:  spec,
		agent: agent,
	}
}

// Propose 生成首稿。
func (s *Session) Propose(ctx context.Context) (Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	draft, err := s.agent.Generate(ctx, s.Spec, nil, s.history, "")
	if err != nil {
		return Draft{}, err
	}
	s.draft = draft
	s.appendTurn("", draft, "首稿")
	return draft, nil
}

// Revise 基于用户评论修订回答，必须先有首稿。
func (s *Session) Revise(ctx context.Context, comment string) (Draft, error) {
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return Draft{}, errors.New("comment is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.history) == 0 {
		return Draft{}, errors.New("no draft to revise yet")
	}
	prev := s.draft
	draft, err := s.agent.Generate(ctx, s.Spec, &prev, s.history, comment)
	if err != nil {
		return Draft{}, err
	}
	s.draft = draft
	s.appendTurn(comment, draft, "修订")
	return draft, nil
}

// Snapshot 返回当前稿件和历史的副本。
func (s *Session) Snapshot() (Draft, []Turn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft, append([]Turn(nil), s.history...)
}

func (s *Session) appendTurn(comment string, draft Draft, summary string) {
	s.history = append(s.history, Turn{
		Comment:   comment,
		Draft:     draft,
		Summary:   summary,
		CreatedAt: time.Now(),
	})
}
