package web

import (
	"embed"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/baalimago/webagent/internal/session"
	"github.com/baalimago/webagent/internal/vendors"
)

//go:embed templates/index.html
var templatesFS embed.FS

var indexTmpl = template.Must(template.ParseFS(templatesFS, "templates/index.html"))

const (
	pageTitle   = "Web Browsing Agent"
	placeholder = "2023 FIFA 女子ワールドカップの優勝国は？"
)

type pageData struct {
	Title       string
	Models      []vendors.Choice
	Default     vendors.Choice
	Greeting    string
	Placeholder string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := indexTmpl.Execute(w, pageData{
		Title:       pageTitle,
		Models:      vendors.Choices(),
		Default:     s.defaultModel,
		Greeting:    session.Greeting,
		Placeholder: placeholder,
	})
	if err != nil {
		slog.Error("failed to render index", "err", err)
	}
}
