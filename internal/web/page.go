package web

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"github.com/terra-clan/interview-console/internal/availability"
	"github.com/terra-clan/interview-console/internal/directory"
	"github.com/terra-clan/interview-console/internal/interview"
	"github.com/terra-clan/interview-console/internal/models"
	"github.com/terra-clan/interview-console/internal/notify"
)

//go:embed templates/index.html
var templatesFS embed.FS

var pageFuncs = template.FuncMap{
	"title": func(v any) string {
		switch t := v.(type) {
		case models.Role:
			return t.Title()
		case models.InterviewStatus:
			return t.Title()
		}
		return ""
	},
}

type pageData struct {
	BackendURL    string
	Roles         []models.Role
	ActiveRole    models.Role
	Users         []models.User
	Selections    map[string][]directory.Option
	Availability  availability.View
	Interviews    interview.View
	Result        *interview.ResultView
	Busy          bool
	DemoStatus    string
	Toasts        []notify.Toast
	StatusTargets []models.InterviewStatus
	MinDuration   int
}

func (s *Server) pageData() pageData {
	role := s.Directory.ActiveRole()
	return pageData{
		BackendURL:    s.BackendURL,
		Roles:         models.Roles,
		ActiveRole:    role,
		Users:         s.Directory.Users(role),
		Selections:    s.Directory.Selections(),
		Availability:  s.Availability.View(),
		Interviews:    s.Interviews.View(),
		Result:        s.Interviews.LastResult(),
		Busy:          s.Interviews.Busy(),
		DemoStatus:    s.Seeder.Status(),
		Toasts:        s.Notifier.Active(),
		StatusTargets: models.StatusTargets,
		MinDuration:   interview.MinDurationMinutes,
	}
}

func (s *Server) render(w http.ResponseWriter, data pageData) {
	var buf bytes.Buffer
	if err := s.page.Execute(&buf, data); err != nil {
		s.Logger.Error("page template render failed", "error", err)
		http.Error(w, "template render failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
