package worker

import (
	"fmt"

	"docgen-worker-service/internal/entity"
)

// User-facing strings stay generic: internal error text is logged, never
// shown.

func deckName(kind entity.TaskKind) string {
	if kind == entity.KindPitchDeck {
		return "Pitch Deck"
	}
	return "Prezentatsiya"
}

func deckProgressText(kind entity.TaskKind, progress int) string {
	name := deckName(kind)
	switch {
	case progress >= 100:
		return fmt.Sprintf("🎉 <b>%s tayyor!</b>\n\n📊 Progress: 100%%", name)
	case progress >= 80:
		return fmt.Sprintf("🎨 <b>%s yaratilmoqda...</b>\n\n✅ Dizayn tayyor\n⚙️ Fayl yuklanmoqda...\n\n📊 Progress: %d%%", name, progress)
	case progress >= 50:
		return fmt.Sprintf("🎨 <b>%s yaratilmoqda...</b>\n\n✅ Kontent tayyor\n⚙️ Dizayn jarayonda...\n\n📊 Progress: %d%%", name, progress)
	case progress >= 30:
		return fmt.Sprintf("🎨 <b>%s yaratilmoqda...</b>\n\n✅ Kontent tayyor\n⚙️ Dizaynga yuborilmoqda...\n\n📊 Progress: %d%%", name, progress)
	default:
		return fmt.Sprintf("🎨 <b>%s yaratilmoqda...</b>\n\n⏳ Progress: %d%%", name, progress)
	}
}

func deckCaption(kind entity.TaskKind) string {
	return fmt.Sprintf("🎉 <b>%s tayyor!</b>\n\nMuvaffaqiyatlar! 🚀", deckName(kind))
}

func documentProgressText(topic string, progress int) string {
	topic = shorten(topic, 50)
	switch {
	case progress >= 100:
		return "🎉 <b>Hujjat tayyor!</b>\n\n📊 Progress: 100%"
	case progress >= 80:
		return fmt.Sprintf("📝 <b>Hujjat yaratilmoqda...</b>\n\n✅ Matn tayyor\n✅ Fayl tayyor\n⚙️ Yuborilmoqda...\n\n📊 Progress: %d%%", progress)
	case progress >= 40:
		return fmt.Sprintf("📝 <b>Hujjat yaratilmoqda...</b>\n\n✅ Matn tayyor\n⚙️ Formatlash...\n\n📊 Progress: %d%%", progress)
	default:
		return fmt.Sprintf("📝 <b>Hujjat yaratilmoqda...</b>\n\n📚 Mavzu: %s\n\n⏳ Progress: %d%%", topic, progress)
	}
}

func documentCaption(p *entity.DocumentParams, format string) string {
	topic := shorten(p.Topic, 50)
	return fmt.Sprintf(
		"🎉 <b>Sizning hujjatingiz tayyor!</b>\n\n📄 <b>Format:</b> %s\n📚 <b>Mavzu:</b> %s\n📊 <b>Sahifalar:</b> ~%d ta\n\nMuvaffaqiyatlar! 🚀",
		formatUpper(format), topic, p.PageCount,
	)
}

func formatUpper(format string) string {
	if format == "pdf" {
		return "PDF"
	}
	return "DOCX"
}

func shorten(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}

func failureText(refunded int64) string {
	if refunded > 0 {
		return fmt.Sprintf("❌ <b>Xatolik yuz berdi!</b>\n\n💰 %d so'm balansingizga qaytarildi.\nQaytadan urinib ko'ring: /start", refunded)
	}
	return "❌ <b>Xatolik yuz berdi!</b>\n\nQaytadan urinib ko'ring: /start"
}
