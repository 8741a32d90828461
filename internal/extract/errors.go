package extract

import (
	"fmt"
	"strings"
)

// Kind classifies extraction failures.
type Kind string

const (
	KindUnsupportedFileType Kind = "unsupported_file_type"
	KindUnreadablePdf       Kind = "unreadable_pdf"
	KindUnreadableDocument  Kind = "unreadable_document"
	KindInsufficientContent Kind = "insufficient_content"
)

// Sentinels for errors.Is. Every *Error matches the sentinel of its Kind.
var (
	ErrUnsupportedFileType = &Error{Kind: KindUnsupportedFileType}
	ErrUnreadablePdf       = &Error{Kind: KindUnreadablePdf}
	ErrUnreadableDocument  = &Error{Kind: KindUnreadableDocument}
	ErrInsufficientContent = &Error{Kind: KindInsufficientContent}
)

// Error is a user-facing extraction failure. Msg is safe to show to the caller.
type Error struct {
	Kind  Kind
	Msg   string
	Cause error
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return string(e.Kind)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Cause }

// Is matches any *Error with the same Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// unsupported echoes the type as the client declared it.
func unsupported(mimeType string) error {
	mimeType = strings.TrimSpace(mimeType)
	if mimeType == "" {
		mimeType = "unknown"
	}
	return &Error{
		Kind: KindUnsupportedFileType,
		Msg:  fmt.Sprintf("Unsupported file type: %s. Please upload a PDF, Word document, or plain text file.", mimeType),
	}
}

func unreadablePdf(cause error) error {
	return &Error{
		Kind:  KindUnreadablePdf,
		Msg:   "Could not read text from this PDF. It may be password-protected or contain no extractable text (for example a scanned image).",
		Cause: cause,
	}
}

func unreadableDocument(cause error) error {
	return &Error{
		Kind:  KindUnreadableDocument,
		Msg:   "Could not read text from this Word document. Please check the file or save it as PDF and try again.",
		Cause: cause,
	}
}

func insufficientContent(n int) error {
	return &Error{
		Kind: KindInsufficientContent,
		Msg:  fmt.Sprintf("The resume contains too little text to analyze (%d characters, at least %d required).", n, MinContentChars),
	}
}
