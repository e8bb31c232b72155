// Package content adapts the remote LLM content API. It shapes prompts,
// sizes output to the requested slide/page count and parses the structured
// JSON the model returns.
package content

// Slide is one card of a generated presentation.
type Slide struct {
	Number  int      `json:"slide_number"`
	Title   string   `json:"title"`
	Body    string   `json:"content"`
	Bullets []string `json:"bullet_points"`
}

// SlideContent is the generated body of a plain presentation.
type SlideContent struct {
	Title    string  `json:"title"`
	Subtitle string  `json:"subtitle"`
	Slides   []Slide `json:"slides"`
}

// PitchContent is the generated body of a startup pitch deck.
type PitchContent struct {
	ProjectName   string `json:"project_name"`
	Tagline       string `json:"tagline"`
	Author        string `json:"author"`
	Problem       string `json:"problem"`
	Solution      string `json:"solution"`
	Market        string `json:"market"`
	BusinessModel string `json:"business_model"`
	Competition   string `json:"competition"`
	Advantage     string `json:"advantage"`
	Financials    string `json:"financials"`
	Team          string `json:"team"`
	Milestones    string `json:"milestones"`
	CallToAction  string `json:"cta"`
}

// Chapter is one numbered chapter of an academic document.
type Chapter struct {
	Title    string    `json:"title"`
	Sections []Section `json:"sections"`
}

type Section struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// CourseContent is the generated body of a course work / referat.
type CourseContent struct {
	Title        string    `json:"title"`
	Subtitle     string    `json:"subtitle"`
	Abstract     string    `json:"abstract"`
	Keywords     []string  `json:"keywords"`
	Introduction string    `json:"introduction"`
	Chapters     []Chapter `json:"chapters"`
	Conclusion   string    `json:"conclusion"`
	References   []string  `json:"references"`
}

// CourseWorkRequest carries the document pipeline's generation inputs.
type CourseWorkRequest struct {
	WorkType  string
	Topic     string
	Subject   string
	Details   string
	PageCount int
	Language  string
}

const wordsPerPage = 350

// wordBudget sizes generated text proportionally to the requested page count.
func wordBudget(pageCount int) int {
	if pageCount < 1 {
		pageCount = 1
	}
	return pageCount * wordsPerPage
}
