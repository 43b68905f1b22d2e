package publisher

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/goliatone/go-urlkit"

	"zhihu_answer_publisher/target"
)

const (
	groupQuestions = "questions"
	groupAnswers   = "answers"
	groupAPI       = "api"

	routeAnswers = "answers"
	routeAnswer  = "answer"
)

// Routes builds the Zhihu API URLs from the configured base URLs.
type Routes struct {
	manager *urlkit.RouteManager
}

// NewRoutes registers {QuestionAPI}/:id/answers, {QuestionAPI}/:id/answers/:answer_id
// and {AnswerAPI}/:id.
func NewRoutes(questionAPI, answerAPI string) (*Routes, error) {
	questions, err := apiGroup(groupQuestions, questionAPI, map[string]string{
		routeAnswers: "/:id/answers",
		routeAnswer:  "/:id/answers/:answer_id",
	})
	if err != nil {
		return nil, err
	}
	answers, err := apiGroup(groupAnswers, answerAPI, map[string]string{
		routeAnswer: "/:id",
	})
	if err != nil {
		return nil, err
	}
	manager := urlkit.NewRouteManager(&urlkit.Config{
		Groups: []urlkit.GroupConfig{questions, answers},
	})
	return &Routes{manager: manager}, nil
}

// apiGroup splits base into an origin group and a child group holding its path.
func apiGroup(name, base string, paths map[string]string) (urlkit.GroupConfig, error) {
	u, err := url.Parse(base)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return urlkit.GroupConfig{}, fmt.Errorf("routes: %s api %q is not an absolute URL", name, base)
	}
	return urlkit.GroupConfig{
		Name:    name,
		BaseURL: u.Scheme + "://" + u.Host,
		Groups: []urlkit.GroupConfig{
			{
				Name:  groupAPI,
				Path:  strings.TrimRight(u.Path, "/"),
				Paths: paths,
			},
		},
	}, nil
}

// QuestionAnswers is where new answers to a question are posted.
func (r *Routes) QuestionAnswers(id target.ID) (string, error) {
	return r.build(groupQuestions, routeAnswers, map[string]string{"id": id.String()})
}

// QuestionAnswer is the canonical link to an answer under its question.
func (r *Routes) QuestionAnswer(id, answerID target.ID) (string, error) {
	return r.build(groupQuestions, routeAnswer, map[string]string{
		"id":        id.String(),
		"answer_id": answerID.String(),
	})
}

// Answer reads and updates a single answer.
func (r *Routes) Answer(id target.ID) (string, error) {
	return r.build(groupAnswers, routeAnswer, map[string]string{"id": id.String()})
}

func (r *Routes) build(group, route string, params map[string]string) (out string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("routes: %s.%s: %v", group, route, rec)
		}
	}()
	builder := r.manager.Group(group).Group(groupAPI).Builder(route)
	for k, v := range params {
		builder.WithParam(k, v)
	}
	return builder.Build()
}
