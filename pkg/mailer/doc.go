// Package mailer defines the mail gateway contract used by the tester and the
// content pipeline that runs before a message reaches the wire.
//
// # Contract
//
// A [Gateway] verifies sessions and sends messages against an endpoint described
// by [ConnectionParams]. Port 465 means implicit TLS. The [Mode] decides whether
// credentials are presented and whether STARTTLS is mandatory:
//
//   - auth: credentials always presented, STARTTLS when offered
//   - anonymous: no credentials
//   - starttls: encryption required, credentials only when both are set
//
// Failures fall into two classes. A [*GatewayError] carries a human-readable
// reason plus an [ErrorDetail] (reply code, failing command, session transcript).
// Anything else wraps [ErrNetwork] and means the server never answered.
//
// # Content
//
// [Mailer] renders content before delegating. Markdown bodies and named templates
// are converted with goldmark and wrapped in a layout; HTML bodies get a
// plain-text alternative:
//
//	m := mailer.New(gateway, mailer.NewRenderer(mailer.DefaultFS()), mailer.Config{
//		DefaultLayout:   "base.html",
//		FallbackSubject: "SMTP Test Email",
//	})
//
//	res, err := m.Send(ctx, params, &mailer.Message{
//		Envelope: mailer.Envelope{From: "qa@example.com", To: []string{"inbox@example.com"}},
//		Content:  mailer.Content{Template: "test.md", Data: map[string]any{"Host": params.Host}},
//	})
//
// Template files may start with YAML frontmatter. A "Subject" key is used when
// the content has no explicit subject and is itself executed as a template.
package mailer
