package util

import (
	"errors"
	"testing"
)

func TestSanitizeFileName(t *testing.T) {
	got, err := SanitizeFileName(" a/b\\c.pdf ")
	if err != nil {
		t.Fatalf("SanitizeFileName: %v", err)
	}
	if got != "a_b_c.pdf" {
		t.Fatalf("got %q", got)
	}
	for _, bad := range []string{"", "   ", "../x.pdf"} {
		if _, err := SanitizeFileName(bad); !errors.Is(err, ErrInvalidFileName) {
			t.Fatalf("expected ErrInvalidFileName for %q, got %v", bad, err)
		}
	}
}

func TestSplitExt(t *testing.T) {
	cases := []struct{ in, base, ext string }{
		{"resume.pdf", "resume", "pdf"},
		{"my.cv.docx", "my.cv", "docx"},
		{"README", "README", ""},
	}
	for _, tc := range cases {
		base, ext := SplitExt(tc.in)
		if base != tc.base || ext != tc.ext {
			t.Fatalf("SplitExt(%q) = %q, %q", tc.in, base, ext)
		}
	}
}
