package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/go-pdf/fpdf"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/mirotrak/mirotrak/internal/metrics"
	"github.com/mirotrak/mirotrak/internal/model"
	"github.com/mirotrak/mirotrak/internal/repository"
)

// Document formats.
const (
	FormatPDF   = "pdf"
	FormatEmail = "email"
)

// Document service errors.
var (
	ErrDocumentBodyMissing = errors.New("document body is required")
	ErrUnsupportedFormat   = errors.New("unsupported document format")
	ErrClientNotFound      = errors.New("client not found")
)

// placeholderRegex matches {{ name }} with letters, digits, underscores and dots.
var placeholderRegex = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_.]+)\s*\}\}`)

// DocumentStore provides the records documents can reference.
type DocumentStore interface {
	GetClient(ctx context.Context, id int64) (*model.Client, error)
	ListSettings(ctx context.Context) ([]*model.Setting, error)
}

// DocumentService renders templated PDFs and email texts.
type DocumentService struct {
	store   DocumentStore
	metrics metrics.Recorder
	now     func() time.Time
}

// NewDocumentService creates a new DocumentService.
func NewDocumentService(store DocumentStore, recorder metrics.Recorder) *DocumentService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &DocumentService{
		store:   store,
		metrics: recorder,
		now:     time.Now,
	}
}

// RenderInput defines input for rendering a document.
type RenderInput struct {
	Format    string
	Title     string
	Subject   string
	Body      string
	ClientID  int64
	Variables map[string]string
}

// RenderedEmail is a ready-to-send email text.
type RenderedEmail struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
	Mailto  string `json:"mailto"`
}

// RenderedDocument is the output of Render. Exactly one of PDF and Email is set.
type RenderedDocument struct {
	Format   string
	Filename string
	PDF      []byte
	Email    *RenderedEmail
}

// Render substitutes placeholders and produces the requested format.
func (s *DocumentService) Render(ctx context.Context, input RenderInput) (*RenderedDocument, error) {
	format := strings.ToLower(strings.TrimSpace(input.Format))
	if format == "" {
		format = FormatPDF
	}
	if format != FormatPDF && format != FormatEmail {
		return nil, ErrUnsupportedFormat
	}
	if strings.TrimSpace(input.Body) == "" {
		return nil, ErrDocumentBodyMissing
	}

	vars, client, err := s.variables(ctx, input)
	if err != nil {
		return nil, err
	}

	title := Substitute(input.Title, vars)
	body := Substitute(input.Body, vars)

	var doc *RenderedDocument
	switch format {
	case FormatEmail:
		subject := Substitute(input.Subject, vars)
		if subject == "" {
			subject = title
		}
		to := ""
		if client != nil {
			to = client.Email
		}
		doc = &RenderedDocument{
			Format: FormatEmail,
			Email: &RenderedEmail{
				To:      to,
				Subject: subject,
				Body:    body,
				Mailto:  mailtoLink(to, subject, body),
			},
		}
	default:
		pdf, err := renderPDF(title, body, vars["settings.company_name"])
		if err != nil {
			return nil, err
		}
		doc = &RenderedDocument{
			Format:   FormatPDF,
			Filename: Slugify(title, "document") + ".pdf",
			PDF:      pdf,
		}
	}

	s.metrics.IncDocumentRendered(format)
	return doc, nil
}

// variables merges client fields, settings, the current date and request
// variables, in increasing order of precedence.
func (s *DocumentService) variables(ctx context.Context, input RenderInput) (map[string]string, *model.Client, error) {
	vars := map[string]string{
		"date": s.now().Format("02/01/2006"),
	}

	var client *model.Client
	if input.ClientID > 0 {
		c, err := s.store.GetClient(ctx, input.ClientID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, nil, ErrClientNotFound
			}
			return nil, nil, fmt.Errorf("failed to load client: %w", err)
		}
		client = c
		for k, v := range c.Variables() {
			vars[k] = v
		}
	}

	settings, err := s.store.ListSettings(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load settings: %w", err)
	}
	for _, setting := range settings {
		vars["settings."+setting.Key] = string(setting.Value)
	}

	for k, v := range input.Variables {
		vars[k] = v
	}

	return vars, client, nil
}

// Substitute replaces {{name}} placeholders with vars. Unknown names are left as is.
func Substitute(text string, vars map[string]string) string {
	return placeholderRegex.ReplaceAllStringFunc(text, func(match string) string {
		name := placeholderRegex.FindStringSubmatch(match)[1]
		if v, ok := vars[name]; ok {
			return v
		}
		return match
	})
}

func renderPDF(title, body, sender string) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetTitle(title, true)
	pdf.SetMargins(20, 20, 20)
	pdf.AddPage()

	if sender != "" {
		pdf.SetFont("Helvetica", "", 9)
		pdf.MultiCell(0, 5, tr(sender), "", "R", false)
		pdf.Ln(6)
	}

	if title != "" {
		pdf.SetFont("Helvetica", "B", 16)
		pdf.MultiCell(0, 8, tr(title), "", "L", false)
		pdf.Ln(4)
	}

	pdf.SetFont("Helvetica", "", 11)
	pdf.MultiCell(0, 6, tr(body), "", "L", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func mailtoLink(to, subject, body string) string {
	escape := func(s string) string {
		return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
	}
	return fmt.Sprintf("mailto:%s?subject=%s&body=%s", url.PathEscape(to), escape(subject), escape(body))
}

// Slugify turns a title into a file-name-safe ASCII slug.
func Slugify(s, fallback string) string {
	stripAccents := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	plain, _, err := transform.String(stripAccents, s)
	if err != nil {
		plain = s
	}

	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(plain) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}

	slug := strings.TrimSuffix(b.String(), "-")
	if slug == "" {
		return fallback
	}
	return slug
}
