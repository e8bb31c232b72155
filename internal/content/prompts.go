package content

import (
	"fmt"
	"strings"
)

func slidePrompt(topic, details string, slideCount int, language string) string {
	if details == "" {
		details = "Qo'shimcha ma'lumot yo'q"
	}
	return fmt.Sprintf(`Quyidagi mavzu bo'yicha %s tilida prezentatsiya content yarating.

MAVZU: %s

QO'SHIMCHA: %s

SLAYDLAR: %d

JSON formatida qaytaring:
{
  "title": "Prezentatsiya sarlavhasi",
  "subtitle": "Qisqa tavsif",
  "slides": [
    {
      "slide_number": 1,
      "title": "Slayd sarlavhasi",
      "content": "Slayd mazmuni (3-5 jumla)",
      "bullet_points": ["Birinchi nuqta", "Ikkinchi nuqta", "Uchinchi nuqta"]
    }
  ]
}

Har bir slayd uchun alohida element. Jami %d ta slayd bo'lsin.`,
		language, topic, details, slideCount, slideCount)
}

func pitchPrompt(answers []string, market, language string) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Quyidagi savollarga berilgan javoblar asosida %s tilida to'liq pitch deck content yarating.\n\nJAVOBLAR:\n", language))
	for i, a := range answers {
		fmt.Fprintf(&b, "%d. %s\n", i+1, a)
	}
	if market != "" {
		b.WriteString("\nBOZOR TAHLILI (tayyor, ishlatib yuboring):\n")
		b.WriteString(market)
		b.WriteString("\n")
	}
	b.WriteString(`
JSON formatida qaytaring:
{
  "project_name": "...",
  "tagline": "...",
  "author": "...",
  "problem": "...",
  "solution": "...",
  "market": "...",
  "business_model": "...",
  "competition": "...",
  "advantage": "...",
  "financials": "...",
  "team": "...",
  "milestones": "...",
  "cta": "..."
}

Har bir bo'lim kamida 4-6 jumla bo'lsin.`)
	return b.String()
}

func coursePrompt(req CourseWorkRequest) string {
	totalWords := wordBudget(req.PageCount)
	chapterCount := 3
	if req.PageCount < 8 {
		chapterCount = 2
	}
	wordsPerChapter := totalWords / (chapterCount + 2) // intro and conclusion take a share

	details := req.Details
	if details == "" {
		details = "Maxsus talablar yo'q - umumiy akademik standartlarga rioya qiling"
	}

	return fmt.Sprintf(`Quyidagi parametrlar asosida to'liq va batafsil akademik ish yozing (%s tilida).

PARAMETRLAR:
- Ish turi: %s
- Mavzu: %s
- Fan: %s
- Sahifalar: %d ta (taxminan %d so'z)

QO'SHIMCHA TALABLAR:
%s

STRUKTURA:
- Annotatsiya (200-250 so'z) va 5 ta kalit so'z
- Kirish: dolzarblik, maqsad va vazifalar, ob'ekt va predmet, metodlar
- %d ta bob, har biri 2-3 bo'limdan iborat, har bir bob taxminan %d so'z
- Xulosa: asosiy topilmalar va tavsiyalar
- Kamida 10 ta adabiyot manbasi

JSON formatida qaytaring:
{
  "title": "%s",
  "subtitle": "%s fanidan %s",
  "abstract": "...",
  "keywords": ["...", "...", "...", "...", "..."],
  "introduction": "...",
  "chapters": [
    {"title": "I BOB. ...", "sections": [{"title": "1.1. ...", "body": "..."}]}
  ],
  "conclusion": "...",
  "references": ["..."]
}

Qisqartirish mumkin emas, har bir bo'limni to'liq yozing.`,
		req.Language, req.WorkType, req.Topic, req.Subject, req.PageCount, totalWords,
		details, chapterCount, wordsPerChapter,
		req.Topic, req.Subject, req.WorkType)
}
