package filter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/emersion/go-smtp"
	"github.com/mikey/textguard/internal/config"
	"github.com/mikey/textguard/internal/core"
	"github.com/mikey/textguard/internal/ports"
	"github.com/mikey/textguard/internal/utils"
	"go.uber.org/zap"
)

const defaultSubjectPrefix = "[**SPAM**] "

// SMTPFilter implements an SMTP content filter. Mail is accepted, tagged with
// spam headers and relayed to the next hop.
type SMTPFilter struct {
	service  ports.EmailAnalyzer
	logger   *zap.Logger
	cfg      config.ServerConfig
	server   *smtp.Server
	listener net.Listener
	mu       sync.Mutex
}

// NewSMTPFilter creates a new SMTP content filter
func NewSMTPFilter(service ports.EmailAnalyzer, logger *zap.Logger, cfg config.ServerConfig) *SMTPFilter {
	if cfg.SubjectPrefix == "" && cfg.ModifySubject {
		cfg.SubjectPrefix = defaultSubjectPrefix
	}
	if cfg.SpamHeader == "" {
		cfg.SpamHeader = "X-Spam-Status"
	}
	if cfg.ScoreHeader == "" {
		cfg.ScoreHeader = "X-Spam-Score"
	}
	if cfg.ReasonHeader == "" {
		cfg.ReasonHeader = "X-Spam-Reason"
	}

	return &SMTPFilter{
		service: service,
		logger:  logger,
		cfg:     cfg,
	}
}

// Start listens on the configured address and serves in the background
func (f *SMTPFilter) Start() error {
	l, err := net.Listen("tcp", f.cfg.ListenAddress)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", f.cfg.ListenAddress, err)
	}
	f.Serve(l)
	return nil
}

// Serve accepts SMTP connections on l in the background
func (f *SMTPFilter) Serve(l net.Listener) {
	server := smtp.NewServer(&smtpBackend{filter: f})
	server.Domain = "localhost"
	server.ReadTimeout = 30 * time.Second
	server.WriteTimeout = 30 * time.Second
	server.MaxMessageBytes = 30 * 1024 * 1024
	server.MaxRecipients = 50

	f.mu.Lock()
	f.server = server
	f.listener = l
	f.mu.Unlock()

	f.logger.Info("SMTP filter starting", zap.String("address", l.Addr().String()))

	go func() {
		if err := server.Serve(l); err != nil && !errors.Is(err, smtp.ErrServerClosed) {
			f.logger.Error("SMTP server error", zap.Error(err))
		}
	}()
}

// Addr returns the listening address once started
func (f *SMTPFilter) Addr() net.Addr {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listener == nil {
		return nil
	}
	return f.listener.Addr()
}

// Stop stops the SMTP filter
func (f *SMTPFilter) Stop() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.server != nil {
		return f.server.Close()
	}
	return nil
}

// ProcessEmail classifies an email without the SMTP round trip
func (f *SMTPFilter) ProcessEmail(ctx context.Context, email *core.Email) (*core.ClassificationResult, error) {
	return f.service.AnalyzeEmail(ctx, email)
}

// rewriteMessage prepends the spam headers to raw and, for spam, prefixes
// the subject. The original header order and body bytes are preserved.
func (f *SMTPFilter) rewriteMessage(raw []byte, result *core.ClassificationResult, analysisErr error) []byte {
	var out bytes.Buffer

	fmt.Fprintf(&out, "%s: %t\r\n", f.cfg.SpamHeader, result.IsSpam)
	fmt.Fprintf(&out, "%s: %.4f\r\n", f.cfg.ScoreHeader, result.Probability)
	fmt.Fprintf(&out, "%s: %s\r\n", f.cfg.ReasonHeader, result.Explanation)
	if analysisErr != nil {
		fmt.Fprintf(&out, "X-Spam-Analysis-Error: %s\r\n", analysisErr.Error())
	}

	headers, body := splitMessage(raw)
	if result.IsSpam && f.cfg.ModifySubject && f.cfg.SubjectPrefix != "" {
		headers = f.prefixSubject(headers)
	}
	out.Write(headers)
	out.WriteString("\r\n")
	out.Write(body)
	return out.Bytes()
}

// splitMessage returns the header block, including the newline ending the
// last header, and the body
func splitMessage(raw []byte) ([]byte, []byte) {
	if i := bytes.Index(raw, []byte("\r\n\r\n")); i >= 0 {
		return raw[:i+2], raw[i+4:]
	}
	if i := bytes.Index(raw, []byte("\n\n")); i >= 0 {
		return raw[:i+1], raw[i+2:]
	}
	return raw, nil
}

func (f *SMTPFilter) prefixSubject(headers []byte) []byte {
	var (
		out      bytes.Buffer
		found    bool
		skipping bool
	)
	for _, line := range bytes.SplitAfter(headers, []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		if skipping && (line[0] == ' ' || line[0] == '\t') {
			continue
		}
		skipping = false

		if !found && len(line) >= 8 && strings.EqualFold(string(line[:8]), "subject:") {
			found, skipping = true, true
			original := unfold(headers, line)
			decoded, err := decodeEncodedHeader(original)
			if err != nil {
				decoded = original
			}
			if !strings.HasPrefix(decoded, f.cfg.SubjectPrefix) {
				decoded = f.cfg.SubjectPrefix + decoded
			}
			fmt.Fprintf(&out, "Subject: %s\r\n", mimeEncodeIfNeeded(decoded))
			continue
		}
		out.Write(line)
	}
	if !found {
		fmt.Fprintf(&out, "Subject: %s\r\n", strings.TrimSpace(f.cfg.SubjectPrefix))
	}
	return out.Bytes()
}

// unfold returns the value of the header starting at line with its
// continuation lines joined
func unfold(headers, line []byte) string {
	start := bytes.Index(headers, line)
	rest := headers[start+len(line):]
	value := strings.TrimSpace(string(line[8:]))
	for _, next := range bytes.SplitAfter(rest, []byte("\n")) {
		if len(next) == 0 || (next[0] != ' ' && next[0] != '\t') {
			break
		}
		value += " " + strings.TrimSpace(string(next))
	}
	return value
}

func mimeEncodeIfNeeded(s string) string {
	for _, r := range s {
		if r > 127 {
			return mime.QEncoding.Encode("UTF-8", s)
		}
	}
	return s
}

// relay sends the processed email to the next hop
func (f *SMTPFilter) relay(sender string, recipients []string, emailData []byte) error {
	addr := net.JoinHostPort(f.cfg.RelayAddress, fmt.Sprint(f.cfg.RelayPort))

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "localhost"
	}

	conn, err := net.DialTimeout("tcp", addr, 10*time.Second)
	if err != nil {
		return fmt.Errorf("failed to connect to relay: %w", err)
	}
	if err := conn.SetDeadline(time.Now().Add(30 * time.Second)); err != nil {
		conn.Close()
		return fmt.Errorf("failed to set connection deadline: %w", err)
	}

	c := smtp.NewClient(conn)
	defer c.Close()

	if err := c.Hello(hostname); err != nil {
		return fmt.Errorf("EHLO failed: %w", err)
	}
	if err := c.Mail(sender, nil); err != nil {
		return fmt.Errorf("MAIL FROM failed: %w", err)
	}

	recipientOK := false
	for _, recipient := range recipients {
		if err := c.Rcpt(recipient, nil); err != nil {
			f.logger.Warn("RCPT TO failed for recipient",
				zap.String("recipient", recipient),
				zap.Error(err))
			continue
		}
		recipientOK = true
	}
	if !recipientOK {
		return errors.New("all recipients were rejected")
	}

	wc, err := c.Data()
	if err != nil {
		return fmt.Errorf("DATA command failed: %w", err)
	}
	if _, err := wc.Write(emailData); err != nil {
		wc.Close()
		return fmt.Errorf("failed to send email data: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	if err := c.Quit(); err != nil {
		f.logger.Warn("QUIT command failed", zap.Error(err))
	}
	return nil
}

// smtpBackend implements the go-smtp Backend interface
type smtpBackend struct {
	filter *SMTPFilter
}

// NewSession creates a new SMTP session
func (b *smtpBackend) NewSession(_ *smtp.Conn) (smtp.Session, error) {
	return &smtpSession{filter: b.filter}, nil
}

// smtpSession implements the go-smtp Session interface
type smtpSession struct {
	filter     *SMTPFilter
	sender     string
	recipients []string
}

// Reset resets the session state
func (s *smtpSession) Reset() {
	s.sender = ""
	s.recipients = nil
}

// Mail sets the sender address
func (s *smtpSession) Mail(from string, _ *smtp.MailOptions) error {
	s.sender = from
	return nil
}

// Rcpt adds a recipient
func (s *smtpSession) Rcpt(to string, _ *smtp.RcptOptions) error {
	s.recipients = append(s.recipients, to)
	return nil
}

// Data classifies the message, then rejects or tags and relays it
func (s *smtpSession) Data(r io.Reader) error {
	f := s.filter
	rawData, err := io.ReadAll(r)
	if err != nil {
		f.logger.Error("Failed to read message data", zap.Error(err))
		return err
	}

	email, err := ParseEmail(bytes.NewReader(rawData))
	if err != nil {
		f.logger.Error("Failed to parse email message", zap.Error(err))
		return err
	}
	// the envelope wins over the headers
	email.From = s.sender
	email.To = s.recipients
	email.Body = truncateBody(email.Body, f.cfg.MaxBodySize)

	senderDomain := "unknown"
	if parts := strings.Split(email.From, "@"); len(parts) == 2 {
		senderDomain = parts[1]
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, analysisErr := f.service.AnalyzeEmail(ctx, email)
	if analysisErr != nil {
		f.logger.Error("Failed to analyze email",
			zap.Error(analysisErr),
			zap.String("sender", email.From),
			zap.String("sender_domain", senderDomain))

		result = &core.ClassificationResult{
			Explanation: fmt.Sprintf("Error during analysis: %v", analysisErr),
			ModelUsed:   "error",
			AnalyzedAt:  time.Now(),
		}
	}

	if result.IsSpam && f.cfg.BlockSpam {
		f.logger.Info("Rejecting spam email",
			zap.String("from", email.From),
			zap.String("sender_domain", senderDomain),
			zap.Float64("probability", result.Probability),
			zap.String("reason", result.Explanation))
		return &smtp.SMTPError{
			Code:         550,
			EnhancedCode: smtp.EnhancedCode{5, 7, 1},
			Message:      fmt.Sprintf("Rejected as spam (probability: %.2f)", result.Probability),
		}
	}

	modified := f.rewriteMessage(rawData, result, analysisErr)

	if f.cfg.RelayEnabled {
		if err := f.relay(s.sender, s.recipients, modified); err != nil {
			f.logger.Error("Failed to relay email",
				zap.Error(err),
				zap.String("sender", email.From))
			return err
		}
	} else {
		f.logger.Warn("Relay disabled, tagged message is dropped after analysis")
	}

	f.logger.Info("Processed email",
		zap.String("from", email.From),
		zap.String("sender_domain", senderDomain),
		zap.Bool("is_spam", result.IsSpam),
		zap.Float64("probability", result.Probability),
		zap.String("model", result.ModelUsed))

	return nil
}

// Logout handles SMTP logout
func (s *smtpSession) Logout() error {
	return nil
}

func truncateBody(body string, maxSize int) string {
	if maxSize <= 0 || len(body) <= maxSize {
		return body
	}
	return utils.CutUTF8(body, maxSize)
}
