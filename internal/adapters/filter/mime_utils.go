package filter

import (
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mikey/textguard/internal/core"
	"golang.org/x/text/encoding/htmlindex"
)

const (
	maxMultipartDepth = 5
	noTextPlaceholder = "[No text content found in multipart message]"
)

var headerDecoder = &mime.WordDecoder{
	CharsetReader: func(charset string, input io.Reader) (io.Reader, error) {
		enc, err := htmlindex.Get(charset)
		if err != nil {
			return nil, fmt.Errorf("unsupported charset %q: %w", charset, err)
		}
		return enc.NewDecoder().Reader(input), nil
	},
}

// decodeEncodedHeader decodes RFC 2047 encoded words such as =?UTF-8?B?...?=
func decodeEncodedHeader(value string) (string, error) {
	return headerDecoder.DecodeHeader(value)
}

// ParseEmail reads a raw RFC 5322 message into an Email
func ParseEmail(r io.Reader) (*core.Email, error) {
	msg, err := mail.ReadMessage(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse email message: %w", err)
	}
	body, err := extractTextFromMessage(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to extract text content: %w", err)
	}

	email := &core.Email{
		From:    headerAddress(msg.Header.Get("From")),
		Body:    body,
		Headers: make(map[string][]string, len(msg.Header)),
	}
	for key, values := range msg.Header {
		email.Headers[key] = values
	}
	if subject, err := decodeEncodedHeader(msg.Header.Get("Subject")); err == nil {
		email.Subject = subject
	} else {
		email.Subject = msg.Header.Get("Subject")
	}
	if to, err := msg.Header.AddressList("To"); err == nil {
		for _, addr := range to {
			email.To = append(email.To, addr.Address)
		}
	}
	return email, nil
}

func headerAddress(value string) string {
	if addr, err := mail.ParseAddress(value); err == nil {
		return addr.Address
	}
	return strings.TrimSpace(value)
}

// extractTextFromMessage extracts the readable text of an email message.
// Plain text parts win over HTML parts; attachments are skipped.
func extractTextFromMessage(msg *mail.Message) (string, error) {
	var plain, html strings.Builder
	err := collectText(
		msg.Header.Get("Content-Type"),
		msg.Header.Get("Content-Transfer-Encoding"),
		msg.Body, 0, &plain, &html,
	)
	if err != nil {
		return "", err
	}

	switch {
	case plain.Len() > 0:
		return strings.TrimRight(plain.String(), "\r\n"), nil
	case html.Len() > 0:
		return strings.TrimRight(html.String(), "\r\n"), nil
	case isMultipart(msg.Header.Get("Content-Type")):
		return noTextPlaceholder, nil
	default:
		return "", nil
	}
}

func isMultipart(contentType string) bool {
	return strings.Contains(strings.ToLower(contentType), "multipart/")
}

func collectText(contentType, transferEncoding string, body io.Reader, depth int, plain, html *strings.Builder) error {
	mediaType := "text/plain"
	var params map[string]string
	if contentType != "" {
		var err error
		mediaType, params, err = mime.ParseMediaType(contentType)
		if err != nil {
			// unparseable content type: keep the raw body
			raw, readErr := io.ReadAll(body)
			if readErr != nil {
				return readErr
			}
			plain.Write(raw)
			return nil
		}
	}

	if strings.HasPrefix(mediaType, "multipart/") {
		boundary, ok := params["boundary"]
		if !ok || depth >= maxMultipartDepth {
			return nil
		}
		mr := multipart.NewReader(body, boundary)
		for {
			part, err := mr.NextPart()
			if err == io.EOF {
				return nil
			}
			if err != nil {
				// keep whatever was collected from earlier parts
				return nil
			}
			if isAttachment(part) {
				continue
			}
			// unreadable parts are skipped
			_ = collectText(
				part.Header.Get("Content-Type"),
				part.Header.Get("Content-Transfer-Encoding"),
				part, depth+1, plain, html,
			)
		}
	}

	if !strings.HasPrefix(mediaType, "text/") {
		return nil
	}

	raw, err := io.ReadAll(decodeTransfer(transferEncoding, body))
	if err != nil {
		return err
	}
	if mediaType == "text/html" {
		text, err := htmlToText(string(raw))
		if err != nil {
			return err
		}
		html.WriteString(text)
		html.WriteString("\n")
		return nil
	}
	plain.Write(raw)
	plain.WriteString("\n")
	return nil
}

func isAttachment(part *multipart.Part) bool {
	disposition, _, err := mime.ParseMediaType(part.Header.Get("Content-Disposition"))
	return err == nil && disposition == "attachment"
}

func decodeTransfer(encoding string, body io.Reader) io.Reader {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "base64":
		return base64.NewDecoder(base64.StdEncoding, body)
	case "quoted-printable":
		return quotedprintable.NewReader(body)
	default:
		return body
	}
}

// htmlToText returns the visible text of an HTML fragment with whitespace collapsed
func htmlToText(fragment string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML part: %w", err)
	}
	doc.Find("script, style, head").Remove()
	return strings.Join(strings.Fields(doc.Text()), " "), nil
}
