package pipeline

import (
	"strings"
	"testing"
)

func TestValidateUpload_Valid(t *testing.T) {
	if err := ValidateUpload("report.pdf", 1024, 1<<20); err != nil {
		t.Errorf("expected valid upload to pass, got %v", err)
	}
}

func TestValidateUpload_MissingFilename(t *testing.T) {
	if err := ValidateUpload("   ", 1024, 1<<20); err == nil {
		t.Error("expected blank filename to fail")
	}
}

func TestValidateUpload_UnsupportedExtension(t *testing.T) {
	for _, name := range []string{"archive.zip", "binary.exe", "noext"} {
		if err := ValidateUpload(name, 1024, 1<<20); err == nil {
			t.Errorf("expected %q to be rejected", name)
		}
	}
}

func TestValidateUpload_SupportedExtensions(t *testing.T) {
	for _, name := range []string{"a.txt", "b.md", "c.html", "d.csv", "e.pdf", "f.docx", "G.TXT"} {
		if err := ValidateUpload(name, 1024, 1<<20); err != nil {
			t.Errorf("expected %q to be accepted, got %v", name, err)
		}
	}
}

func TestValidateUpload_EmptyPayload(t *testing.T) {
	if err := ValidateUpload("doc.txt", 0, 1<<20); err == nil {
		t.Error("expected empty upload to fail")
	}
}

func TestValidateUpload_TooLarge(t *testing.T) {
	if err := ValidateUpload("doc.txt", 2048, 1024); err == nil {
		t.Error("expected oversized upload to fail")
	}
}

func TestValidateUpload_NoLimit(t *testing.T) {
	if err := ValidateUpload("doc.txt", 1<<40, 0); err != nil {
		t.Errorf("expected maxBytes=0 to disable the limit, got %v", err)
	}
}

func TestValidateText_Valid(t *testing.T) {
	if err := ValidateText("some body text", 1024); err != nil {
		t.Errorf("expected valid text to pass, got %v", err)
	}
}

func TestValidateText_Blank(t *testing.T) {
	if err := ValidateText(" \n\t ", 1024); err == nil {
		t.Error("expected blank text to fail")
	}
}

func TestValidateText_TooLarge(t *testing.T) {
	if err := ValidateText(strings.Repeat("a", 100), 50); err == nil {
		t.Error("expected oversized text to fail")
	}
}

func TestValidateText_InvalidUTF8(t *testing.T) {
	if err := ValidateText("abc\xff\xfedef", 1024); err == nil {
		t.Error("expected invalid UTF-8 to fail")
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"My Collection", "my-collection"},
		{"  spaced  out  ", "spaced-out"},
		{"already-fine", "already-fine"},
		{"Weird__Chars!!", "weird-chars"},
		{"--leading-trailing--", "leading-trailing"},
		{strings.Repeat("a", 100), strings.Repeat("a", 64)},
	}
	for _, tc := range tests {
		if got := Slugify(tc.in); got != tc.want {
			t.Errorf("Slugify(%q): expected %q, got %q", tc.in, tc.want, got)
		}
	}
}
