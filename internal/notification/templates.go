package notification

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"
	"time"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

const (
	defaultReason   = "No reason provided"
	defaultReviewer = "System Administrator"
	defaultAppURL   = "http://localhost:3000"
)

type AdminNotice struct {
	RequestID   int64
	Name        string
	Email       string
	Reason      string
	RequestedAt string
	AdminURL    string
}

type Decision struct {
	Name         string
	Decision     string
	Approved     bool
	ReviewerName string
	AppURL       string
}

// Renderer turns admin request facts into subject, HTML and text bodies.
type Renderer struct {
	appURL string
	html   *htmltemplate.Template
	text   *texttemplate.Template
}

func NewRenderer(appURL string) (*Renderer, error) {
	html, err := htmltemplate.ParseFS(templateFS, "templates/*.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parsing html templates: %w", err)
	}
	text, err := texttemplate.ParseFS(templateFS, "templates/*.txt.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parsing text templates: %w", err)
	}

	appURL = strings.TrimRight(appURL, "/")
	if appURL == "" {
		appURL = defaultAppURL
	}
	return &Renderer{appURL: appURL, html: html, text: text}, nil
}

func (r *Renderer) AdminNotice(from, mailbox string, requestID int64, name, email string, reason *string, requestedAt time.Time) (Message, error) {
	data := AdminNotice{
		RequestID:   requestID,
		Name:        name,
		Email:       email,
		Reason:      defaultReason,
		RequestedAt: requestedAt.UTC().Format("2006-01-02 15:04 MST"),
		AdminURL:    r.appURL + "/admin",
	}
	if reason != nil && strings.TrimSpace(*reason) != "" {
		data.Reason = *reason
	}

	html, text, err := r.render("admin_request_notice", data)
	if err != nil {
		return Message{}, err
	}
	return NewMessage(from, []string{mailbox}, "New Admin Access Request - "+name, html, text), nil
}

func (r *Renderer) Decision(from, to, name, decision, reviewerName string) (Message, error) {
	data := Decision{
		Name:         name,
		Decision:     decision,
		Approved:     decision == "approved",
		ReviewerName: reviewerName,
		AppURL:       r.appURL,
	}
	if strings.TrimSpace(data.ReviewerName) == "" {
		data.ReviewerName = defaultReviewer
	}

	outcome := "Rejected"
	if data.Approved {
		outcome = "Approved"
	}

	html, text, err := r.render("admin_request_decision", data)
	if err != nil {
		return Message{}, err
	}
	return NewMessage(from, []string{to}, fmt.Sprintf("Admin Access Request %s - Task Tracker", outcome), html, text), nil
}

func (r *Renderer) render(name string, data interface{}) (string, string, error) {
	var html, text bytes.Buffer
	if err := r.html.ExecuteTemplate(&html, name+".html.tmpl", data); err != nil {
		return "", "", fmt.Errorf("rendering %s html: %w", name, err)
	}
	if err := r.text.ExecuteTemplate(&text, name+".txt.tmpl", data); err != nil {
		return "", "", fmt.Errorf("rendering %s text: %w", name, err)
	}
	return html.String(), strings.TrimSpace(text.String()), nil
}
