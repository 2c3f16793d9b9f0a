package bot

import (
	"fmt"
	"strings"

	"helpdesk/internal/graph"
	"helpdesk/internal/models"
)

// roleForEmail derives the user's role from the email local part: student
// accounts are purely numeric.
func roleForEmail(email string) string {
	local, _, found := strings.Cut(email, "@")
	if !found || local == "" {
		return "Unknown role"
	}
	for _, r := range local {
		if r < '0' || r > '9' {
			return "Faculty / Staff"
		}
	}
	return "Student"
}

// formatEvents renders events grouped per locale, skipping entries with no
// content in that locale
func formatEvents(events []models.Event) string {
	var text strings.Builder
	text.WriteString("<b>📅 Upcoming events:</b>\n\n")

	groups := []struct {
		label string
		pick  func(models.Event) (title, desc string)
	}{
		{"🇷🇺 Русский", func(e models.Event) (string, string) { return e.TitleRU, e.DescriptionRU }},
		{"🇬🇧 English", func(e models.Event) (string, string) { return e.TitleEN, e.DescriptionEN }},
		{"🇰🇿 Қазақша", func(e models.Event) (string, string) { return e.TitleKK, e.DescriptionKK }},
	}

	for _, group := range groups {
		n := 0
		var section strings.Builder
		for _, e := range events {
			title, desc := group.pick(e)
			if title == "" || desc == "" {
				continue
			}
			n++
			section.WriteString(fmt.Sprintf("\n<b>%d. %s</b>\n🕓 %s\n%s\n", n, title, e.Date, desc))
		}
		if n > 0 {
			text.WriteString(fmt.Sprintf("<b>%s</b>\n", group.label))
			text.WriteString(section.String())
			text.WriteString("\n")
		}
	}

	return text.String()
}

// formatFAQs renders FAQ entries grouped per locale
func formatFAQs(faqs []models.FAQ) string {
	var text strings.Builder
	text.WriteString("<b>📚 Frequently asked questions (FAQ):</b>\n\n")

	groups := []struct {
		label string
		pick  func(models.FAQ) (question, answer string)
	}{
		{"🇷🇺 Русский", func(f models.FAQ) (string, string) { return f.QuestionRU, f.AnswerRU }},
		{"🇬🇧 English", func(f models.FAQ) (string, string) { return f.QuestionEN, f.AnswerEN }},
		{"🇰🇿 Қазақша", func(f models.FAQ) (string, string) { return f.QuestionKK, f.AnswerKK }},
	}

	for _, group := range groups {
		n := 0
		var section strings.Builder
		for _, f := range faqs {
			question, answer := group.pick(f)
			if question == "" || answer == "" {
				continue
			}
			n++
			section.WriteString(fmt.Sprintf("\n<b>%d. %s</b>\n%s\n", n, question, answer))
		}
		if n > 0 {
			text.WriteString(fmt.Sprintf("<b>%s</b>\n", group.label))
			text.WriteString(section.String())
			text.WriteString("\n")
		}
	}

	return text.String()
}

// formatClubs renders the club list
func formatClubs(clubs []models.Club) string {
	var text strings.Builder
	text.WriteString("📚 Student clubs:\n\n")
	for _, club := range clubs {
		text.WriteString(fmt.Sprintf(
			"🔸 <b>%s</b>\n%s\n<a href='%s'>Club link</a>\n\n",
			club.Name, club.Description, club.URL))
	}
	return text.String()
}

// formatContacts renders the contact list
func formatContacts(contacts []models.Contact) string {
	var text strings.Builder
	text.WriteString("📞 Contacts:\n\n")
	for _, contact := range contacts {
		text.WriteString(fmt.Sprintf(
			"🏢 <b>%s</b>\n📱 Phone: %s\n✉️ Email: %s\n📂 Category: %s\n\n",
			contact.Department, contact.Phone, contact.Email, contact.Category))
	}
	return text.String()
}

// formatInbox renders recent inbox messages
func formatInbox(messages []graph.Message) string {
	var lines []string
	for _, m := range messages {
		subject := m.Subject
		if subject == "" {
			subject = "(no subject)"
		}
		sender := m.Sender()
		if sender == "" {
			sender = "unknown sender"
		}
		lines = append(lines, fmt.Sprintf("📩 <b>%s</b>\nFrom: %s\n", subject, sender))
	}
	return strings.Join(lines, "\n")
}
