package server

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"zhihu_answer_publisher/generator"
	"zhihu_answer_publisher/publisher"
	"zhihu_answer_publisher/target"
)

var errNoAgent = errors.New("drafting is disabled: no llm configured")

// --- Drafts ---

type draftCreateReq struct {
	Question    string   `json:"question"`
	Detail      string   `json:"detail"`
	Outline     []string `json:"outline"`
	Tone        string   `json:"tone"`
	Audience    string   `json:"audience"`
	Words       int      `json:"words"`
	Constraints []string `json:"constraints"`
}

type sessionResp struct {
	SessionID string           `json:"session_id"`
	Spec      generator.Spec   `json:"spec"`
	Draft     generator.Draft  `json:"draft"`
	History   []generator.Turn `json:"history"`
}

type reviseReq struct {
	Comment string `json:"comment"`
}

func (s *Server) sessionResponse(sess *generator.Session) sessionResp {
	draft, history := sess.Snapshot()
	return sessionResp{SessionID: sess.ID, Spec: sess.Spec, Draft: draft, History: history}
}

func (s *Server) handleDraftCreate(w http.ResponseWriter, r *http.Request) {
	if s.agent == nil {
		writeError(w, http.StatusServiceUnavailable, errNoAgent)
		return
	}
	var req draftCreateReq
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	spec := generator.Spec{
		Question:    strings.TrimSpace(req.Question),
		Detail:      req.Detail,
		Outline:     req.Outline,
		Tone:        req.Tone,
		Audience:    req.Audience,
		Words:       req.Words,
		Constraints: req.Constraints,
	}
	if err := spec.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	sess := generator.NewSession(uuid.NewString(), spec, s.agent)
	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()
	if _, err := sess.Propose(ctx); err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	s.store.set(sess.ID, sess)
	writeJSON(w, s.sessionResponse(sess))
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) (*generator.Session, bool) {
	sess, ok := s.store.get(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, errors.New("session not found"))
	}
	return sess, ok
}

func (s *Server) handleDraftGet(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, s.sessionResponse(sess))
}

func (s *Server) handleDraftRevise(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req reviseReq
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if strings.TrimSpace(req.Comment) == "" {
		writeError(w, http.StatusBadRequest, errors.New("comment is required"))
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()
	if _, err := sess.Revise(ctx, req.Comment); err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, s.sessionResponse(sess))
}

// --- Targets ---

func (s *Server) handleTargets(w http.ResponseWriter, r *http.Request) {
	candidates, err := s.targets.Targets(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, candidates)
}

// --- Preview and publish ---

type previewReq struct {
	Markdown string `json:"markdown"`
}

type previewResp struct {
	PanelID string `json:"panel_id"`
	URL     string `json:"url"`
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	var req previewReq
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	doc, err := publisher.ParseDocument([]byte(req.Markdown))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	panel, err := s.publisher.Preview(r.Context(), doc.Body)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, previewResp{PanelID: panel.ID(), URL: panel.URL()})
}

type publishReq struct {
	Markdown string        `json:"markdown"`
	Target   target.Target `json:"target"`
}

func (req publishReq) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.Markdown, validation.Required),
		validation.Field(&req.Target, validation.By(func(any) error {
			t := req.Target
			return validation.ValidateStruct(&t,
				validation.Field(&t.ID, validation.Required),
				validation.Field(&t.Type, validation.Required, validation.In(target.KindQuestion, target.KindAnswer)),
			)
		})),
	)
}

type publishResp struct {
	URL      string    `json:"url"`
	AnswerID target.ID `json:"answer_id"`
	PanelURL string    `json:"panel_url,omitempty"`
}

func (s *Server) handlePublish(w http.ResponseWriter, r *http.Request) {
	var req publishReq
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	doc, err := publisher.ParseDocument([]byte(req.Markdown))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	// The request target wins over the front matter.
	if req.Target.ID == "" && doc.Target != nil {
		req.Target = *doc.Target
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	res, err := s.publisher.PublishTo(r.Context(), doc.Body, req.Target)
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, publisher.ErrUnsupportedTarget) {
			status = http.StatusBadRequest
		}
		writeError(w, status, err)
		return
	}
	resp := publishResp{URL: res.URL, AnswerID: res.AnswerID}
	if res.Panel != nil {
		resp.PanelURL = res.Panel.URL()
	}
	writeJSON(w, resp)
}
