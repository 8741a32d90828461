package extract

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"

	"resume-scorer/internal/shared/storage/object"
)

// MinContentChars is the minimum trimmed length of usable resume text.
const MinContentChars = 50

const (
	MimePDF       = "application/pdf"
	MimeDOC       = "application/msword"
	MimeDOCX      = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MimePlainText = "text/plain"
)

// ExtractText converts an uploaded document into plain text. Dispatch is by the
// declared MIME type only; content is never sniffed. The returned text is not trimmed.
func ExtractText(ctx context.Context, data []byte, mimeType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var (
		text string
		err  error
	)
	switch normalized := NormalizeMimeType(mimeType); normalized {
	case MimePDF:
		text, err = extractPDF(data)
		if err != nil {
			return "", unreadablePdf(err)
		}
	case MimeDOC, MimeDOCX:
		text, err = extractWord(data)
		if err != nil {
			return "", unreadableDocument(err)
		}
	case MimePlainText:
		text = decodeUTF8(data)
	default:
		return "", unsupported(mimeType)
	}

	if n := utf8.RuneCountInString(strings.TrimSpace(text)); n < MinContentChars {
		return "", insufficientContent(n)
	}
	return text, nil
}

// ExtractFromStore reads a registered blob and extracts its text. When the
// declared MIME type is empty the store's content type is used.
func ExtractFromStore(ctx context.Context, store object.Store, location, mimeType string) (string, error) {
	data, contentType, err := object.ReadAll(ctx, store, location)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", location, err)
	}
	if strings.TrimSpace(mimeType) == "" {
		mimeType = contentType
	}
	return ExtractText(ctx, data, mimeType)
}

// NormalizeMimeType strips parameters and lower-cases the type.
func NormalizeMimeType(mimeType string) string {
	return strings.ToLower(strings.TrimSpace(strings.Split(mimeType, ";")[0]))
}

func extractPDF(data []byte) (text string, err error) {
	if len(data) == 0 {
		return "", errors.New("empty pdf data")
	}
	// The pdf reader panics on some malformed and encrypted inputs.
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("pdf parse panic: %v", rec)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	plain, err := reader.GetPlainText()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func extractWord(data []byte) (string, error) {
	if len(data) == 0 {
		return "", errors.New("empty document data")
	}
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	defer doc.Close()
	return documentXMLText(doc.Editable().GetContent())
}

// documentXMLText keeps character data from WordprocessingML, breaking lines at
// paragraph and explicit break elements.
func documentXMLText(raw string) (string, error) {
	decoder := xml.NewDecoder(strings.NewReader(raw))
	var buf strings.Builder
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("document xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.CharData:
			buf.Write(t)
		case xml.StartElement:
			if t.Name.Local == "tab" {
				buf.WriteByte('\t')
			}
		case xml.EndElement:
			if (t.Name.Local == "p" || t.Name.Local == "br") && buf.Len() > 0 {
				buf.WriteByte('\n')
			}
		}
	}
	return buf.String(), nil
}

func decodeUTF8(data []byte) string {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if utf8.Valid(data) {
		return string(data)
	}
	return strings.ToValidUTF8(string(data), "�")
}
