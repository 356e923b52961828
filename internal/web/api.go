package web

import (
	"context"
	"errors"
	"net/http"

	"github.com/baalimago/webagent/internal/chat"
	"github.com/baalimago/webagent/internal/models"
	"github.com/baalimago/webagent/internal/session"
	"github.com/baalimago/webagent/internal/vendors"
	"github.com/baalimago/webagent/pkg/agent"
	pub_models "github.com/baalimago/webagent/pkg/text/models"
	"github.com/danielgtaylor/huma/v2"
)

// -----------------------------------------------------------------------------
// Request / Response types
// -----------------------------------------------------------------------------

type SessionView struct {
	ID       string               `json:"id" doc:"Session ID"`
	Model    string               `json:"model" doc:"Model label"`
	Messages []pub_models.Message `json:"messages" doc:"Displayed conversation, starting with the greeting"`
	Busy     bool                 `json:"busy" doc:"A turn is in flight"`
}

type SessionOutput struct {
	Body SessionView
}

type SessionIDInput struct {
	ID string `path:"id" doc:"Session ID"`
}

type SetModelInput struct {
	ID   string `path:"id" doc:"Session ID"`
	Body struct {
		Model string `json:"model" doc:"One of the labels of GET /api/models" example:"Claude 4.5 Sonnet"`
	}
}

type SendMessageInput struct {
	ID   string `path:"id" doc:"Session ID"`
	Body struct {
		Content string `json:"content" doc:"The user prompt" maxLength:"8000" example:"2023 FIFA 女子ワールドカップの優勝国は？"`
	}
}

type SendMessageOutput struct {
	Body struct {
		Answer   string               `json:"answer"`
		Steps    []agent.Step         `json:"steps"`
		Messages []pub_models.Message `json:"messages"`
	}
}

type ModelsOutput struct {
	Body struct {
		Models  []string `json:"models"`
		Default string   `json:"default"`
	}
}

func view(sess *session.Session) SessionView {
	snap := sess.Snapshot()
	return SessionView{
		ID:       snap.ID,
		Model:    string(snap.Model),
		Messages: snap.Display,
		Busy:     snap.Busy,
	}
}

func sessionOutput(sess *session.Session) *SessionOutput {
	return &SessionOutput{Body: view(sess)}
}

// statusOf maps domain errors onto http statuses.
func statusOf(err error) int {
	var me *models.ModelError
	switch {
	case errors.Is(err, session.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrBusy):
		return http.StatusConflict
	case errors.Is(err, chat.ErrEmptyPrompt):
		return http.StatusBadRequest
	case errors.Is(err, vendors.ErrUnknownChoice):
		return http.StatusUnprocessableEntity
	case errors.As(err, &me):
		return http.StatusBadGateway
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func toHumaErr(err error) error {
	return huma.NewError(statusOf(err), err.Error())
}

// -----------------------------------------------------------------------------
// Route registration
// -----------------------------------------------------------------------------

func (s *Server) registerRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "list-models",
		Method:      http.MethodGet,
		Path:        "/api/models",
		Summary:     "List models",
		Tags:        []string{"Models"},
	}, func(ctx context.Context, _ *struct{}) (*ModelsOutput, error) {
		out := &ModelsOutput{}
		for _, c := range vendors.Choices() {
			out.Body.Models = append(out.Body.Models, string(c))
		}
		out.Body.Default = string(s.defaultModel)
		return out, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID:   "create-session",
		Method:        http.MethodPost,
		Path:          "/api/sessions",
		Summary:       "Start a conversation",
		Description:   "Creates a session using the default model. The conversation starts with the greeting.",
		Tags:          []string{"Sessions"},
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, _ *struct{}) (*SessionOutput, error) {
		return sessionOutput(s.svc.Store.Create(s.defaultModel)), nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "get-session",
		Method:      http.MethodGet,
		Path:        "/api/sessions/{id}",
		Summary:     "Get a conversation",
		Tags:        []string{"Sessions"},
	}, func(ctx context.Context, input *SessionIDInput) (*SessionOutput, error) {
		sess, err := s.svc.Store.Get(input.ID)
		if err != nil {
			return nil, toHumaErr(err)
		}
		return sessionOutput(sess), nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID:   "delete-session",
		Method:        http.MethodDelete,
		Path:          "/api/sessions/{id}",
		Summary:       "Forget a conversation",
		Tags:          []string{"Sessions"},
		DefaultStatus: http.StatusNoContent,
	}, func(ctx context.Context, input *SessionIDInput) (*struct{}, error) {
		if _, err := s.svc.Store.Get(input.ID); err != nil {
			return nil, toHumaErr(err)
		}
		s.svc.Store.Delete(input.ID)
		return nil, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "reset-session",
		Method:      http.MethodPost,
		Path:        "/api/sessions/{id}/reset",
		Summary:     "Clear a conversation",
		Description: "Clears both histories. Calling it repeatedly is harmless.",
		Tags:        []string{"Sessions"},
	}, func(ctx context.Context, input *SessionIDInput) (*SessionOutput, error) {
		sess, err := s.svc.Store.Get(input.ID)
		if err != nil {
			return nil, toHumaErr(err)
		}
		sess.Reset()
		return sessionOutput(sess), nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "set-model",
		Method:      http.MethodPut,
		Path:        "/api/sessions/{id}/model",
		Summary:     "Switch model",
		Description: "Switches the model used from the next turn on. The conversation is kept.",
		Tags:        []string{"Sessions"},
	}, func(ctx context.Context, input *SetModelInput) (*SessionOutput, error) {
		sess, err := s.svc.Store.Get(input.ID)
		if err != nil {
			return nil, toHumaErr(err)
		}
		c, err := vendors.ParseChoice(input.Body.Model)
		if err != nil {
			return nil, toHumaErr(err)
		}
		sess.SetModel(c)
		return sessionOutput(sess), nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: opSendMessage,
		Method:      http.MethodPost,
		Path:        "/api/sessions/{id}/messages",
		Summary:     "Ask the agent",
		Description: "Runs one turn synchronously. On failure the conversation is left untouched.",
		Tags:        []string{"Sessions"},
	}, func(ctx context.Context, input *SendMessageInput) (*SendMessageOutput, error) {
		sess, err := s.svc.Store.Get(input.ID)
		if err != nil {
			return nil, toHumaErr(err)
		}
		turn, err := s.svc.Send(ctx, sess, input.Body.Content, nil)
		if err != nil {
			return nil, toHumaErr(err)
		}
		out := &SendMessageOutput{}
		out.Body.Answer = turn.Answer
		out.Body.Steps = turn.Steps
		out.Body.Messages = turn.Messages
		return out, nil
	})
}
