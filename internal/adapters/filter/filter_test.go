package filter

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/emersion/go-smtp"
	"github.com/mikey/textguard/internal/config"
	"github.com/mikey/textguard/internal/core"
	"go.uber.org/zap/zaptest"
)

const plainMessage = "From: Alice <alice@example.com>\r\n" +
	"To: bob@example.org\r\n" +
	"Subject: =?UTF-8?B?V2luIGZyZWUgbW9uZXk=?=\r\n" +
	"\r\n" +
	"Claim your prize now\r\n"

const multipartMessage = "From: promo@shop.example\r\n" +
	"Subject: Deals\r\n" +
	"MIME-Version: 1.0\r\n" +
	"Content-Type: multipart/mixed; boundary=\"outer\"\r\n" +
	"\r\n" +
	"--outer\r\n" +
	"Content-Type: text/html; charset=utf-8\r\n" +
	"Content-Transfer-Encoding: base64\r\n" +
	"\r\n" +
	"PGh0bWw+PGhlYWQ+PHN0eWxlPnB7fTwvc3R5bGU+PC9oZWFkPjxib2R5PjxwPkJpZyA8Yj5zYWxlPC9iPjwvcD48L2JvZHk+PC9odG1sPg==\r\n" +
	"--outer\r\n" +
	"Content-Type: text/plain\r\n" +
	"Content-Disposition: attachment; filename=\"notes.txt\"\r\n" +
	"\r\n" +
	"attached notes\r\n" +
	"--outer--\r\n"

// stubAnalyzer flags any email whose body mentions "prize"
type stubAnalyzer struct {
	err   error
	calls int
}

func (s *stubAnalyzer) AnalyzeEmail(_ context.Context, email *core.Email) (*core.ClassificationResult, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	spam := strings.Contains(email.Body, "prize")
	p := 0.1
	if spam {
		p = 0.95
	}
	return &core.ClassificationResult{
		Prediction:  core.Prediction{IsSpam: spam, Probability: p},
		Explanation: "stub",
		ModelUsed:   "stub",
	}, nil
}

func TestParseEmailPlain(t *testing.T) {
	t.Parallel()

	email, err := ParseEmail(strings.NewReader(plainMessage))
	if err != nil {
		t.Fatalf("ParseEmail: %v", err)
	}
	if email.From != "alice@example.com" {
		t.Errorf("From = %q", email.From)
	}
	if email.Subject != "Win free money" {
		t.Errorf("Subject = %q", email.Subject)
	}
	if len(email.To) != 1 || email.To[0] != "bob@example.org" {
		t.Errorf("To = %v", email.To)
	}
	if email.Body != "Claim your prize now" {
		t.Errorf("Body = %q", email.Body)
	}
}

func TestParseEmailMultipartHTML(t *testing.T) {
	t.Parallel()

	email, err := ParseEmail(strings.NewReader(multipartMessage))
	if err != nil {
		t.Fatalf("ParseEmail: %v", err)
	}
	if email.Body != "Big sale" {
		t.Errorf("Body = %q, want the visible HTML text without the attachment", email.Body)
	}
}

func TestTruncateBodyKeepsTextAfterInvalidByte(t *testing.T) {
	t.Parallel()

	raw := "From: promo@shop.example\r\nSubject: Offer\r\n\r\n" +
		"Win \xff free money now! " + strings.Repeat("claim your prize ", 5000)
	email, err := ParseEmail(strings.NewReader(raw))
	if err != nil {
		t.Fatalf("ParseEmail: %v", err)
	}

	got := truncateBody(email.Body, 65536)
	if len(got) < 65536-3 {
		t.Fatalf("truncated body is %d bytes, want close to 65536", len(got))
	}
	if !strings.Contains(got, "free money") {
		t.Error("text after the invalid byte was dropped")
	}

	// a rune split by the cut is dropped whole
	if got := truncateBody("ab\u00e9", 3); got != "ab" {
		t.Errorf("truncateBody = %q, want ab", got)
	}
}

func TestCliFilterSummary(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	f := NewCliFilter(&stubAnalyzer{}, zaptest.NewLogger(t), true)
	f.SetOutput(&out)

	result, err := f.ProcessReader(context.Background(), strings.NewReader(plainMessage))
	if err != nil {
		t.Fatalf("ProcessReader: %v", err)
	}
	if !result.IsSpam {
		t.Error("expected spam")
	}
	for _, want := range []string{"=== Email Summary ===", "Subject: Win free money", "Body preview:", "Is spam: true", "Spam probability: 95.00%"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}

	f = NewCliFilter(&stubAnalyzer{err: errors.New("boom")}, zaptest.NewLogger(t), false)
	f.SetOutput(io.Discard)
	if _, err := f.ProcessReader(context.Background(), strings.NewReader(plainMessage)); err == nil {
		t.Error("expected analysis error")
	}
}

func TestRewriteMessagePrefixesSubject(t *testing.T) {
	t.Parallel()

	f := NewSMTPFilter(&stubAnalyzer{}, zaptest.NewLogger(t), config.ServerConfig{ModifySubject: true})
	raw := []byte("From: a@b.c\r\nSubject: Hello\r\n there\r\nX-Other: 1\r\n\r\nbody line\r\n")
	result := &core.ClassificationResult{Prediction: core.Prediction{IsSpam: true, Probability: 0.9}, Explanation: "stub"}

	got := string(f.rewriteMessage(raw, result, nil))
	for _, want := range []string{
		"X-Spam-Status: true\r\n",
		"X-Spam-Score: 0.9000\r\n",
		"X-Spam-Reason: stub\r\n",
		"Subject: [**SPAM**] Hello there\r\n",
		"X-Other: 1\r\n\r\nbody line\r\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("rewritten message missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, " there\r\n X") || strings.Count(got, "Subject:") != 1 {
		t.Errorf("folded subject not replaced:\n%s", got)
	}

	// ham keeps its subject
	result.IsSpam = false
	if got := string(f.rewriteMessage(raw, result, nil)); !strings.Contains(got, "Subject: Hello\r\n there") {
		t.Errorf("ham subject changed:\n%s", got)
	}
}

type relayBackend struct {
	received chan []byte
}

func (b *relayBackend) NewSession(_ *smtp.Conn) (smtp.Session, error) {
	return &relaySession{backend: b}, nil
}

type relaySession struct {
	backend *relayBackend
}

func (s *relaySession) Reset()                               {}
func (s *relaySession) Logout() error                        { return nil }
func (s *relaySession) Mail(string, *smtp.MailOptions) error { return nil }
func (s *relaySession) Rcpt(string, *smtp.RcptOptions) error { return nil }
func (s *relaySession) Data(r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.backend.received <- data
	return nil
}

func startRelay(t *testing.T) (*relayBackend, int) {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	backend := &relayBackend{received: make(chan []byte, 1)}
	server := smtp.NewServer(backend)
	server.Domain = "localhost"
	go server.Serve(l)
	t.Cleanup(func() { server.Close() })
	return backend, l.Addr().(*net.TCPAddr).Port
}

func startFilter(t *testing.T, analyzer *stubAnalyzer, cfg config.ServerConfig) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	f := NewSMTPFilter(analyzer, zaptest.NewLogger(t), cfg)
	f.Serve(l)
	t.Cleanup(func() { f.Stop() })
	return f.Addr().String()
}

func sendMail(t *testing.T, addr, message string) error {
	t.Helper()
	c, err := smtp.Dial(addr)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer c.Close()
	if err := c.Mail("alice@example.com", nil); err != nil {
		t.Fatalf("Mail: %v", err)
	}
	if err := c.Rcpt("bob@example.org", nil); err != nil {
		t.Fatalf("Rcpt: %v", err)
	}
	w, err := c.Data()
	if err != nil {
		t.Fatalf("Data: %v", err)
	}
	if _, err := w.Write([]byte(message)); err != nil {
		t.Fatalf("Write: %v", err)
	}
	return w.Close()
}

func TestSMTPFilterTagsAndRelays(t *testing.T) {
	t.Parallel()

	relay, port := startRelay(t)
	addr := startFilter(t, &stubAnalyzer{}, config.ServerConfig{
		RelayEnabled: true,
		RelayAddress: "127.0.0.1",
		RelayPort:    port,
	})

	if err := sendMail(t, addr, plainMessage); err != nil {
		t.Fatalf("send: %v", err)
	}

	select {
	case data := <-relay.received:
		got := string(data)
		if !strings.HasPrefix(got, "X-Spam-Status: true\r\n") {
			t.Errorf("relayed message lacks spam header:\n%s", got)
		}
		if !strings.Contains(got, "Claim your prize now") {
			t.Errorf("relayed body changed:\n%s", got)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("relay never received the message")
	}
}

func TestSMTPFilterRejectsSpam(t *testing.T) {
	t.Parallel()

	analyzer := &stubAnalyzer{}
	addr := startFilter(t, analyzer, config.ServerConfig{BlockSpam: true})

	err := sendMail(t, addr, plainMessage)
	var smtpErr *smtp.SMTPError
	if !errors.As(err, &smtpErr) || smtpErr.Code != 550 {
		t.Fatalf("err = %v, want 550 rejection", err)
	}
}
