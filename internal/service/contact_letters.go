package service

import (
	"unicode/utf8"

	"github.com/geonix/geonix-web/internal/i18n"
	"github.com/geonix/geonix-web/internal/mail"

	"golang.org/x/text/language"
)

const summaryLimit = 400

// adminLetter is always bilingual, Korean first.
func adminLetter(cat *i18n.Catalog, in Inquiry, ticket, subject string) mail.Letter {
	letter := mail.Letter{Title: subject}
	for _, tag := range i18n.Both.Tags() {
		letter.Sections = append(letter.Sections, mail.Section{
			Lang:       tag.String(),
			Heading:    cat.Text(tag, "admin.heading"),
			Paragraphs: []string{cat.Text(tag, "admin.intro")},
			Fields:     inquiryFields(cat, tag, in, ticket),
			QuoteLabel: cat.Text(tag, "field.message"),
			Quote:      in.Message,
		})
		letter.Footer = append(letter.Footer, cat.Text(tag, "letter.footer"))
	}
	return letter
}

func replyLetter(cat *i18n.Catalog, in Inquiry, ticket, subject string, lang i18n.Lang) mail.Letter {
	letter := mail.Letter{Title: subject}
	summary := summarize(in.Message, summaryLimit)
	name := mail.HeaderSafe(in.Name)

	for _, tag := range lang.Tags() {
		letter.Sections = append(letter.Sections, mail.Section{
			Lang:    tag.String(),
			Heading: cat.Text(tag, "reply.heading"),
			Paragraphs: []string{
				cat.Text(tag, "reply.greeting", name),
				cat.Text(tag, "reply.body"),
			},
			Fields:     []mail.Field{{Label: cat.Text(tag, "field.ticket"), Value: ticket}},
			QuoteLabel: cat.Text(tag, "reply.summary"),
			Quote:      summary,
			Closing: []string{
				cat.Text(tag, "reply.closing"),
				cat.Text(tag, "reply.signature"),
			},
		})
		letter.Footer = append(letter.Footer, cat.Text(tag, "letter.footer"))
	}
	return letter
}

func adminSubject(cat *i18n.Catalog, in Inquiry, ticket string) string {
	return cat.Text(language.Korean, "admin.subject", ticket, mail.HeaderSafe(in.Name), mail.HeaderSafe(in.Email))
}

func replySubject(cat *i18n.Catalog, ticket string, lang i18n.Lang) string {
	switch lang {
	case i18n.Korean:
		return cat.Text(language.Korean, "reply.subject", ticket)
	case i18n.English:
		return cat.Text(language.English, "reply.subject", ticket)
	default:
		return cat.Text(language.Korean, "reply.subject_both", ticket)
	}
}

func inquiryFields(cat *i18n.Catalog, tag language.Tag, in Inquiry, ticket string) []mail.Field {
	fields := []mail.Field{
		{Label: cat.Text(tag, "field.ticket"), Value: ticket},
		{Label: cat.Text(tag, "field.name"), Value: mail.HeaderSafe(in.Name)},
	}
	optional := []struct {
		key   string
		value string
	}{
		{"field.company", in.Company},
		{"field.email", in.Email},
		{"field.phone", in.Phone},
		{"field.website", in.Website},
	}
	for _, f := range optional {
		if v := mail.HeaderSafe(f.value); v != "" {
			fields = append(fields, mail.Field{Label: cat.Text(tag, f.key), Value: v})
		}
	}
	return fields
}

// summarize keeps the first limit characters and marks truncation with an ellipsis.
func summarize(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit]) + "…"
}
