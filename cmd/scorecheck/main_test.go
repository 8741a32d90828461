package main

import (
	"testing"

	"resume-scorer/internal/extract"
)

func TestMimeFromExt(t *testing.T) {
	cases := map[string]string{
		"cv.PDF":         extract.MimePDF,
		"cv.docx":        extract.MimeDOCX,
		"cv.doc":         extract.MimeDOC,
		"dir/resume.txt": extract.MimePlainText,
	}
	for path, want := range cases {
		got, err := mimeFromExt(path)
		if err != nil || got != want {
			t.Fatalf("mimeFromExt(%q) = %q, %v; want %q", path, got, err, want)
		}
	}
	if _, err := mimeFromExt("sheet.xlsx"); err == nil {
		t.Fatalf("expected error for xlsx")
	}
}
