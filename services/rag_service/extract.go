package rag_service

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"

	"code.sajari.com/docconv/v2"
	"github.com/PuerkitoBio/goquery"
	"github.com/ledongthuc/pdf"
)

// ExtractedTextName names the plain-text output for a source document.
// The source's own extension is kept so SourceNameFor can recover the
// exact name a chunk should be attributed to.
func ExtractedTextName(sourceName string) string {
	return sourceName + ".txt"
}

// SourceNameFor recovers the source document name from an extracted
// text file's name.
func SourceNameFor(txtName string) string {
	return strings.TrimSuffix(txtName, ".txt")
}

type DocumentExtractor struct {
	logger *slog.Logger
}

func NewDocumentExtractor(logger *slog.Logger) *DocumentExtractor {
	return &DocumentExtractor{
		logger: logger,
	}
}

// ExtractTextFromPDF pulls plain text out of a PDF page by page. The
// text items of a page are joined with single spaces and each page ends
// with a newline, so downstream chunking sees one continuous document.
func (e *DocumentExtractor) ExtractTextFromPDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		e.logger.Error("Failed to create PDF reader",
			slog.String("error", err.Error()),
			slog.Int("data_size", len(data)))
		return "", fmt.Errorf("failed to create PDF reader: %v", err)
	}

	totalPage := reader.NumPage()
	e.logger.Debug("Starting PDF text extraction",
		slog.Int("total_pages", totalPage))

	var sb strings.Builder
	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		page := reader.Page(pageIndex)
		if page.V.IsNull() {
			e.logger.Warn("Null page encountered",
				slog.Int("page_number", pageIndex))
			continue
		}

		content := page.Content()
		for i, item := range content.Text {
			if i > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(item.S)
		}
		sb.WriteByte('\n')
	}

	if sb.Len() == 0 {
		e.logger.Error("No text extracted from PDF",
			slog.Int("total_pages", totalPage))
		return "", fmt.Errorf("no text content extracted from PDF")
	}

	e.logger.Info("Successfully extracted text from PDF",
		slog.Int("total_pages", totalPage),
		slog.Int("total_text_length", sb.Len()))

	return sb.String(), nil
}

// ExtractTextFromWord converts a .docx research paper to plain text.
func (e *DocumentExtractor) ExtractTextFromWord(data []byte) (string, error) {
	e.logger.Debug("Starting Word document text extraction",
		slog.Int("data_size", len(data)))

	mimeType := "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

	result, err := docconv.Convert(bytes.NewReader(data), mimeType, false)
	if err != nil {
		e.logger.Error("Failed to convert Word document",
			slog.String("error", err.Error()),
			slog.Int("data_size", len(data)))
		return "", fmt.Errorf("failed to convert Word document: %v", err)
	}

	if len(result.Body) == 0 {
		e.logger.Error("No text extracted from Word document")
		return "", fmt.Errorf("no text content extracted from Word document")
	}

	e.logger.Info("Successfully extracted text from Word document",
		slog.Int("text_length", len(result.Body)))

	return result.Body, nil
}

// ExtractTextFromHTML pulls the body text out of a saved HTML article,
// ignoring scripts and styles.
func (e *DocumentExtractor) ExtractTextFromHTML(data []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		e.logger.Error("Failed to parse HTML document",
			slog.String("error", err.Error()))
		return "", fmt.Errorf("failed to parse HTML document: %v", err)
	}

	doc.Find("script, style, noscript").Remove()
	text := strings.TrimSpace(doc.Find("body").Text())
	if text == "" {
		// Some saved articles have no body element
		text = strings.TrimSpace(doc.Text())
	}

	if text == "" {
		e.logger.Error("No text extracted from HTML document")
		return "", fmt.Errorf("no text content extracted from HTML document")
	}

	text = strings.Join(strings.Fields(text), " ")

	e.logger.Info("Successfully extracted text from HTML document",
		slog.Int("text_length", len(text)))

	return text, nil
}
