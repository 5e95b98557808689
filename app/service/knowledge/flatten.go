package knowledge

import (
	"strings"
)

// Flatten renders the knowledge base as the plain-text context handed to the
// oracle. Text topics become "key: value" lines. List and object topics emit
// one "attribute: value" line per attribute and drop the topic key itself.
// Topic order follows the source document.
func Flatten(kb *KnowledgeBase) string {
	var builder strings.Builder

	writeLine := func(key, value string) {
		builder.WriteString(key)
		builder.WriteString(": ")
		builder.WriteString(value)
		builder.WriteString("\n")
	}

	kb.Each(func(key string, value Value) {
		switch value.Kind() {
		case KindText:
			writeLine(key, value.Text())
		case KindFields:
			value.Fields().Each(writeLine)
		case KindList:
			for _, entry := range value.Entries() {
				entry.Each(writeLine)
			}
		}
	})

	return strings.TrimSpace(builder.String())
}
