package generator

import (
	"context"
	"errors"
	"fmt"
)

// Agent 负责根据 Spec 和历史/反馈生成或修订回答。
type Agent struct {
	llm LLMClient
}

func NewAgent(llm LLMClient) (*Agent, error) {
	if llm == nil {
		return nil, errors.New("llm client is required")
	}
	return &Agent{llm: llm}, nil
}

// Generate 根据是否存在 prev 决定首稿或修订流程。
func (a *Agent) Generate(ctx context.Context, spec Spec, prev *Draft, history []Turn, comment string) (Draft, error) {
	if err := spec.Validate(); err != nil {
		return Draft{}, fmt.Errorf("invalid spec: %w", err)
	}
	var prompt Prompt
	if prev == nil {
		prompt = BuildInitialPrompt(spec)
	} else {
		prompt = BuildRevisionPrompt(spec, *prev, comment, history)
	}

	raw, err := a.llm.Complete(ctx, prompt)
	if err != nil {
		return Draft{}, fmt.Errorf("llm complete: %w", err)
	}
	return PostProcess(raw)
}
