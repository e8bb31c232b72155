package render

import (
	"strings"
	"testing"

	"docgen-worker-service/internal/content"
)

func TestFormatSlides(t *testing.T) {
	text := FormatSlides(&content.SlideContent{
		Title:    "Iqlim o'zgarishi",
		Subtitle: "Sabablari",
		Slides: []content.Slide{
			{Number: 1, Title: "Kirish", Body: "Matn", Bullets: []string{"birinchi", "ikkinchi"}},
		},
	})

	if !strings.HasPrefix(text, "Iqlim o'zgarishi") {
		t.Fatalf("text should open with the title: %q", text)
	}
	if !strings.Contains(text, "- birinchi\n- ikkinchi") {
		t.Fatalf("bullets missing: %q", text)
	}
	if strings.HasSuffix(text, "\n") {
		t.Fatal("trailing whitespace should be trimmed")
	}
}

func TestFormatPitch(t *testing.T) {
	text := FormatPitch(&content.PitchContent{
		ProjectName: "EduBot",
		Tagline:     "Ta'lim uchun bot",
		Author:      "A. Karimov",
		Problem:     "Talabalar vaqt yo'qotadi",
		Solution:    "Avtomatlashtirish",
	})

	for _, want := range []string{"EduBot", "Muallif: A. Karimov", "MUAMMO:", "YECHIM:"} {
		if !strings.Contains(text, want) {
			t.Fatalf("missing %q in %q", want, text)
		}
	}
	if strings.Index(text, "MUAMMO:") > strings.Index(text, "YECHIM:") {
		t.Fatal("problem section must precede solution")
	}
}

func TestFormatPitch_NoAuthorLine(t *testing.T) {
	text := FormatPitch(&content.PitchContent{ProjectName: "EduBot", Problem: "p"})
	if strings.Contains(text, "Muallif") {
		t.Fatal("author line should be omitted when empty")
	}
}
