package mail

import (
	"context"
	"io"
	"net"
	"strings"
	"testing"
	"time"

	"crypto/tls"
	"net/smtp"
)

type fakeClient struct {
	mailFrom string
	rcpts    []string
	data     strings.Builder
	quit     bool
}

type fakeWriteCloser struct{ c *fakeClient }

func (w fakeWriteCloser) Write(p []byte) (int, error) { return w.c.data.Write(p) }
func (w fakeWriteCloser) Close() error                { return nil }

func (c *fakeClient) Mail(from string) error { c.mailFrom = from; return nil }
func (c *fakeClient) Rcpt(to string) error   { c.rcpts = append(c.rcpts, to); return nil }
func (c *fakeClient) Data() (io.WriteCloser, error) {
	return fakeWriteCloser{c: c}, nil
}
func (c *fakeClient) Quit() error                      { c.quit = true; return nil }
func (c *fakeClient) Close() error                     { return nil }
func (c *fakeClient) StartTLS(*tls.Config) error       { return nil }
func (c *fakeClient) Auth(smtp.Auth) error             { return nil }
func (c *fakeClient) Extension(string) (bool, string)  { return false, "" }

func newFakeMailer(client *fakeClient) *smtpMailer {
	return &smtpMailer{
		cfg: SMTPSettings{
			Enabled: true,
			Host:    "mail.example.com",
			Port:    587,
			From:    "noreply@example.com",
			Timeout: time.Second,
		},
		dialFn: func(ctx context.Context, cfg SMTPSettings) (net.Conn, smtpClient, error) {
			server, _ := net.Pipe()
			return server, client, nil
		},
		authFn: func(smtpClient, SMTPSettings) error { return nil },
	}
}

func TestSendIncludesCTA(t *testing.T) {
	client := &fakeClient{}
	mailer := newFakeMailer(client)

	err := mailer.Send(context.Background(), Message{
		To:      []string{"guest@example.com"},
		Subject: "Schedule update",
		Body:    "The ceremony now starts at 3pm.",
		CTA:     "https://amy-and-sam.example.com/rsvp",
	})
	if err != nil {
		t.Fatalf("send error: %v", err)
	}

	payload := client.data.String()
	if !strings.Contains(payload, "Subject: Schedule update") {
		t.Fatalf("missing subject header in %q", payload)
	}
	if !strings.Contains(payload, "https://amy-and-sam.example.com/rsvp") {
		t.Fatal("expected CTA link to be appended to body")
	}
	if !client.quit {
		t.Fatal("expected QUIT after successful send")
	}
}

func TestSendDeduplicatesRecipients(t *testing.T) {
	client := &fakeClient{}
	mailer := newFakeMailer(client)

	err := mailer.Send(context.Background(), Message{
		To:      []string{"a@example.com", "a@example.com", " b@example.com "},
		Subject: "hi",
		Body:    "hello",
	})
	if err != nil {
		t.Fatalf("send error: %v", err)
	}

	if len(client.rcpts) != 2 {
		t.Fatalf("expected 2 unique recipients, got %v", client.rcpts)
	}
}

func TestSendDisabled(t *testing.T) {
	mailer := &smtpMailer{cfg: SMTPSettings{Enabled: false}}

	err := mailer.Send(context.Background(), Message{To: []string{"x@example.com"}})
	if err != ErrSMTPDisabled {
		t.Fatalf("expected ErrSMTPDisabled, got %v", err)
	}
}

func TestSendRejectsInvalidAddress(t *testing.T) {
	client := &fakeClient{}
	mailer := newFakeMailer(client)

	err := mailer.Send(context.Background(), Message{
		To:      []string{"not-an-address"},
		Subject: "hi",
	})
	if err == nil {
		t.Fatal("expected error for invalid recipient")
	}
}

func TestEscapeHeaderStripsNewlines(t *testing.T) {
	if got := escapeHeader("a\r\nb"); got != "a  b" {
		t.Fatalf("unexpected escaped header: %q", got)
	}
}
