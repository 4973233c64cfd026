package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dmitrymomot/smtptester/internal"
	"github.com/dmitrymomot/smtptester/pkg/mailer"
	"github.com/dmitrymomot/smtptester/pkg/validator"
)

const errMissingFields = "Missing required fields"

// field accepts a JSON string, number or boolean and keeps its text form,
// so "587" and 587 both bind to the port.
type field string

func (f *field) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = field(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err == nil {
		*f = field(n.String())
		return nil
	}
	var v bool
	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("expected string, number or boolean: %w", err)
	}
	*f = field(strconv.FormatBool(v))
	return nil
}

// addressList accepts a comma-separated string or an array of strings.
type addressList []string

func (l *addressList) UnmarshalJSON(b []byte) error {
	var many []string
	if err := json.Unmarshal(b, &many); err == nil {
		*l = splitAddresses(strings.Join(many, ","))
		return nil
	}
	var one string
	if err := json.Unmarshal(b, &one); err != nil {
		return fmt.Errorf("expected string or array of strings: %w", err)
	}
	*l = splitAddresses(one)
	return nil
}

func splitAddresses(s string) addressList {
	var out addressList
	for part := range strings.SplitSeq(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// connectionForm carries the SMTP endpoint fields shared by every request.
type connectionForm struct {
	Host     field  `json:"smtpHost" validate:"required"`
	Port     field  `json:"smtpPort" validate:"required"`
	Mode     field  `json:"connectionMode"`
	Username string `json:"username"`
	Password string `json:"password"`
}

func (f *connectionForm) fromMultipart(c internal.Context) {
	f.Host = field(strings.TrimSpace(c.Form("smtpHost")))
	f.Port = field(strings.TrimSpace(c.Form("smtpPort")))
	f.Mode = field(c.Form("connectionMode"))
	f.Username = c.Form("username")
	f.Password = c.Form("password")
}

// params converts the form into validated connection parameters.
func (f *connectionForm) params() (mailer.ConnectionParams, error) {
	port, err := strconv.Atoi(string(f.Port))
	if err != nil {
		return mailer.ConnectionParams{}, internal.ErrBadRequest("Port must be a number",
			internal.WithFields("smtpPort"), internal.WithError(err))
	}
	mode, err := mailer.ParseMode(string(f.Mode))
	if err != nil {
		return mailer.ConnectionParams{}, internal.ErrBadRequest("Unknown connection mode",
			internal.WithFields("connectionMode"), internal.WithError(err))
	}
	p := mailer.ConnectionParams{
		Host:     string(f.Host),
		Port:     port,
		Mode:     mode,
		Username: f.Username,
		Password: f.Password,
	}
	if err := p.Validate(); err != nil {
		return mailer.ConnectionParams{}, internal.ErrBadRequest("Invalid connection parameters",
			internal.WithError(err), internal.WithDetails(map[string]string{"error": err.Error()}))
	}
	return p, nil
}

// emailForm is a single message plus where to send it.
type emailForm struct {
	connectionForm

	From     string         `json:"from" validate:"required"`
	To       addressList    `json:"to" validate:"required"`
	CC       addressList    `json:"cc"`
	BCC      addressList    `json:"bcc"`
	Subject  string         `json:"subject"`
	Body     string         `json:"body"`
	IsHTML   field          `json:"isHtml"`
	Format   string         `json:"format" validate:"omitempty,oneof=text html markdown"`
	Template string         `json:"template"`
	Data     map[string]any `json:"data"`

	attachments []mailer.Attachment
}

func (f *emailForm) fromMultipart(c internal.Context) error {
	form, err := c.MultipartForm()
	if err != nil {
		return err
	}
	f.connectionForm.fromMultipart(c)
	f.From = strings.TrimSpace(c.Form("from"))
	f.To = splitAddresses(c.Form("to"))
	f.CC = splitAddresses(c.Form("cc"))
	f.BCC = splitAddresses(c.Form("bcc"))
	f.Subject = c.Form("subject")
	f.Body = c.Form("body")
	f.IsHTML = field(c.Form("isHtml"))
	f.Format = c.Form("format")
	f.Template = c.Form("template")

	for _, fh := range form.File["attachments"] {
		file, err := fh.Open()
		if err != nil {
			return internal.ErrBadRequest("Unreadable attachment", internal.WithError(err))
		}
		content, err := io.ReadAll(file)
		_ = file.Close()
		if err != nil {
			return internal.ErrBadRequest("Unreadable attachment", internal.WithError(err))
		}
		f.attachments = append(f.attachments, mailer.Attachment{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Content:     content,
		})
	}
	return nil
}

func (f *emailForm) message() *mailer.Message {
	isHTML, _ := strconv.ParseBool(string(f.IsHTML))
	return &mailer.Message{
		Envelope: mailer.Envelope{
			From: f.From,
			To:   f.To,
			CC:   f.CC,
			BCC:  f.BCC,
		},
		Content: mailer.Content{
			Subject:  f.Subject,
			Body:     f.Body,
			IsHTML:   isHTML,
			Format:   mailer.Format(f.Format),
			Template: f.Template,
			Data:     f.Data,
		},
		Attachments: f.attachments,
	}
}

// bind decodes JSON or multipart input into dst and checks its tags.
// Missing required fields come back as a 400 listing them; the caller
// records the log line.
func bind(c internal.Context, dst any, fromMultipart func() error) error {
	var (
		verrs validator.ValidationErrors
		err   error
	)
	if c.IsMultipart() {
		if err := fromMultipart(); err != nil {
			return err
		}
		verrs, err = c.Validate(dst)
	} else {
		verrs, err = c.BindJSON(dst)
	}
	if err != nil {
		return err
	}
	if len(verrs) == 0 {
		return nil
	}

	var missing []string
	for _, ve := range verrs {
		if ve.Rule == "required" {
			missing = append(missing, ve.Field)
		}
	}
	if len(missing) > 0 {
		return internal.ErrBadRequest(errMissingFields, internal.WithFields(missing...))
	}
	return internal.ErrBadRequest("Invalid request",
		internal.WithFields(verrs.Fields()...), internal.WithDetails(verrs))
}
