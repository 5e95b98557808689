package dispatcher

import (
	"strings"

	"profileqa/app/config"
	"profileqa/app/service/knowledge"
)

// FormatSkills renders one skill per line, optionally followed by its description.
func FormatSkills(entries []knowledge.Entry, schema config.Schema, withDescriptions bool) string {
	var builder strings.Builder

	for _, entry := range entries {
		label := entry.Label(schema.LabelFields...)
		if label == "" {
			continue
		}

		builder.WriteString(label)
		if description := entry.Get(schema.DescriptionFields...); withDescriptions && description != "" {
			builder.WriteString(": ")
			builder.WriteString(description)
		}
		builder.WriteString("\n")
	}

	return strings.TrimSpace(builder.String())
}

// FormatLanguages renders one "language (level)" line per entry.
func FormatLanguages(entries []knowledge.Entry, schema config.Schema) string {
	var builder strings.Builder

	for _, entry := range entries {
		label := entry.Label(schema.LabelFields...)
		if label == "" {
			continue
		}

		builder.WriteString(label)
		if level := entry.Get(schema.LevelFields...); level != "" {
			builder.WriteString(" (")
			builder.WriteString(level)
			builder.WriteString(")")
		}
		builder.WriteString("\n")
	}

	return strings.TrimSpace(builder.String())
}

func formatFields(fields knowledge.Entry) string {
	var builder strings.Builder

	fields.Each(func(key, value string) {
		builder.WriteString(key)
		builder.WriteString(": ")
		builder.WriteString(value)
		builder.WriteString("\n")
	})

	return strings.TrimSpace(builder.String())
}
