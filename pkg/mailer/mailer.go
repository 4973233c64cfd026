package mailer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	texttemplate "text/template"

	"github.com/dmitrymomot/smtptester/pkg/sanitizer"
)

// Mailer validates requests, normalizes content and delegates to a Gateway.
type Mailer struct {
	gateway  Gateway
	renderer *Renderer
	config   Config
}

// New creates a Mailer. A nil renderer falls back to the embedded templates.
func New(gateway Gateway, renderer *Renderer, cfg Config) *Mailer {
	if renderer == nil {
		renderer = NewRenderer(DefaultFS())
	}
	if cfg.DefaultLayout == "" {
		cfg.DefaultLayout = "base.html"
	}
	return &Mailer{
		gateway:  gateway,
		renderer: renderer,
		config:   cfg,
	}
}

// Verify checks that a session can be established with params.
func (m *Mailer) Verify(ctx context.Context, params ConnectionParams) error {
	if err := params.Validate(); err != nil {
		return err
	}
	return m.gateway.Verify(ctx, params)
}

// Send renders msg content if needed and delivers it.
// msg itself is left untouched.
func (m *Mailer) Send(ctx context.Context, params ConnectionParams, msg *Message) (*Result, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if msg == nil {
		return nil, ErrNoRecipient
	}
	if err := msg.Envelope.Validate(); err != nil {
		return nil, err
	}

	out := msg.Clone()
	content, err := m.Render(out.Content)
	if err != nil {
		return nil, err
	}
	out.Content = content

	return m.gateway.Send(ctx, params, out)
}

// Render normalizes content into a deliverable text or HTML body.
// Templates and markdown become HTML wrapped in the default layout with a
// plain-text alternative. HTML bodies gain a plain-text alternative.
// Subject resolution: explicit subject > frontmatter subject > fallback.
func (m *Mailer) Render(c Content) (Content, error) {
	var (
		res *RenderResult
		err error
	)

	switch {
	case c.Template != "":
		res, err = m.renderer.Render(m.config.DefaultLayout, c.Template, c.Data)
	case c.EffectiveFormat() == FormatMarkdown:
		res, err = m.renderer.RenderMarkdown(m.config.DefaultLayout, c.Body)
	case c.EffectiveFormat() == FormatHTML:
		c.Format, c.IsHTML = FormatHTML, true
		if c.Text == "" {
			c.Text = sanitizer.HTMLToText(c.Body)
		}
		c.Subject = m.subject(c.Subject)
		return c, nil
	case c.EffectiveFormat() == FormatText:
		c.Format, c.IsHTML = FormatText, false
		c.Subject = m.subject(c.Subject)
		return c, nil
	default:
		return Content{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, c.Format)
	}
	if err != nil {
		return Content{}, errors.Join(ErrRenderFailed, err)
	}

	subject := c.Subject
	if subject == "" {
		subject = res.Subject()
	}
	if c.Template != "" && subject != "" {
		if subject, err = processSubject(subject, c.Data); err != nil {
			return Content{}, errors.Join(ErrRenderFailed, err)
		}
	}

	return Content{
		Subject: m.subject(subject),
		Body:    res.HTML,
		Text:    res.Text,
		Format:  FormatHTML,
		IsHTML:  true,
	}, nil
}

func (m *Mailer) subject(s string) string {
	if s == "" {
		return m.config.FallbackSubject
	}
	return s
}

// processSubject executes subject as a text template ({{.Variable}} syntax).
func processSubject(subject string, data any) (string, error) {
	tmpl, err := texttemplate.New("subject").Parse(subject)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
