package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"golang.org/x/net/html"

	"github.com/baxromumarov/country-explorer/internal/observability"
)

const (
	ContactThanks     = "Thank you for your message! We will get back to you soon."
	maxContactMessage = 5000
)

var ErrInvalidContact = errors.New("invalid contact message")

type ContactMessage struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// ContactService accepts contact-form submissions. Messages are reduced to
// plain text and logged; nothing is stored.
type ContactService struct {
	metrics *observability.Metrics
}

func NewContactService(metrics *observability.Metrics) *ContactService {
	return &ContactService{metrics: metrics}
}

func (s *ContactService) Submit(ctx context.Context, msg ContactMessage) (ContactMessage, error) {
	clean := ContactMessage{
		Name:    PlainText(msg.Name),
		Email:   strings.TrimSpace(msg.Email),
		Message: PlainText(msg.Message),
	}
	if clean.Name == "" || clean.Email == "" || clean.Message == "" {
		return ContactMessage{}, fmt.Errorf("%w: name, email and message are required", ErrInvalidContact)
	}
	addr, err := mail.ParseAddress(clean.Email)
	if err != nil {
		return ContactMessage{}, fmt.Errorf("%w: email: %v", ErrInvalidContact, err)
	}
	clean.Email = addr.Address
	if r := []rune(clean.Message); len(r) > maxContactMessage {
		clean.Message = string(r[:maxContactMessage])
	}

	slog.InfoContext(ctx, "contact form submission", "name", clean.Name, "email", clean.Email, "message", clean.Message)
	s.metrics.IncContactMessage()
	return clean, nil
}

// PlainText strips markup from user input and collapses whitespace.
func PlainText(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		return strings.Join(strings.Fields(s), " ")
	}
	return strings.Join(strings.Fields(extractText(doc)), " ")
}

func extractText(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
		return ""
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(extractText(c))
		if c.Type == html.ElementNode {
			sb.WriteByte(' ')
		}
	}
	return sb.String()
}
