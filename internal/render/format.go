package render

import (
	"fmt"
	"strings"

	"docgen-worker-service/internal/content"
)

// FormatSlides flattens generated presentation content into the text shape
// the renderer splits into cards.
func FormatSlides(c *content.SlideContent) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n%s\n\n", c.Title, c.Subtitle)

	for _, s := range c.Slides {
		fmt.Fprintf(&b, "\n%s\n\n%s\n", s.Title, s.Body)
		for _, point := range s.Bullets {
			fmt.Fprintf(&b, "- %s\n", point)
		}
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String())
}

// FormatPitch flattens pitch deck content into the renderer's section layout.
func FormatPitch(c *content.PitchContent) string {
	sections := []struct {
		heading string
		body    string
	}{
		{"MUAMMO", c.Problem},
		{"YECHIM", c.Solution},
		{"BOZOR VA IMKONIYATLAR", c.Market},
		{"BIZNES MODEL", c.BusinessModel},
		{"RAQOBAT TAHLILI", c.Competition},
		{"BIZNING USTUNLIKLARIMIZ", c.Advantage},
		{"MOLIYAVIY REJALAR", c.Financials},
		{"JAMOA", c.Team},
		{"YO'L XARITASI", c.Milestones},
		{"TAKLIF", c.CallToAction},
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n%s\n\n", c.ProjectName, c.Tagline)
	if c.Author != "" {
		fmt.Fprintf(&b, "Muallif: %s\n\n", c.Author)
	}
	for _, s := range sections {
		fmt.Fprintf(&b, "%s:\n%s\n\n", s.heading, s.body)
	}
	return strings.TrimSpace(b.String())
}
