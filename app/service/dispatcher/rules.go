package dispatcher

import (
	"strings"

	"profileqa/app/config"
	"profileqa/app/service/knowledge"
	"profileqa/app/util/textnorm"

	"github.com/elliotchance/pie/v2"
)

// rule pairs a category test with the resolver answering it straight from the
// knowledge base. Rules are evaluated in slice order and the first match wins.
type rule struct {
	category Category
	match    func(q Question, kb *knowledge.KnowledgeBase) bool
	resolve  func(q Question, kb *knowledge.KnowledgeBase) string
}

func newRules(schema config.Schema) []rule {
	lists := newListTopics(schema)

	return []rule{
		{
			category: CategoryBinaryFact,
			match: func(q Question, kb *knowledge.KnowledgeBase) bool {
				_, ok := matchFact(q, kb)
				return ok
			},
			resolve: ResolveBinaryFact,
		},
		{
			category: CategoryAboutMe,
			match: func(q Question, _ *knowledge.KnowledgeBase) bool {
				return textnorm.ContainsAny(q.Normalized, aboutMePatterns)
			},
			resolve: func(_ Question, kb *knowledge.KnowledgeBase) string {
				return ResolveAboutMe(kb, schema)
			},
		},
		{
			category: CategoryListRequest,
			match: func(q Question, _ *knowledge.KnowledgeBase) bool {
				return textnorm.ContainsAny(q.Normalized, listSignals)
			},
			resolve: func(q Question, kb *knowledge.KnowledgeBase) string {
				return resolveList(q, kb, lists)
			},
		},
	}
}

func matchFact(q Question, kb *knowledge.KnowledgeBase) (knowledge.Fact, bool) {
	for _, fact := range kb.Facts() {
		if fact.Normalized != "" && strings.Contains(q.Normalized, fact.Normalized) {
			return fact, true
		}
	}
	return knowledge.Fact{}, false
}

// ResolveBinaryFact returns the canned answer of the first fact, in document
// order, whose fragment occurs in the question.
func ResolveBinaryFact(q Question, kb *knowledge.KnowledgeBase) string {
	fact, _ := matchFact(q, kb)
	return fact.Answer
}

// ResolveAboutMe returns the summary verbatim, or "" when the profile has none.
func ResolveAboutMe(kb *knowledge.KnowledgeBase, schema config.Schema) string {
	return kb.Text(schema.Summary...)
}

type listTopic struct {
	cues   []string
	keys   []string
	render func(entries []knowledge.Entry) string
}

// newListTopics returns the known lists in cue priority order. Soft skills come
// before skills because their cues contain the skills cues.
func newListTopics(schema config.Schema) []listTopic {
	labels := func(entries []knowledge.Entry) string {
		return FormatSkills(entries, schema, false)
	}

	return []listTopic{
		{
			cues:   textnorm.NormalizeAll("soft skills", "soft skill", "habilidades comportamentais", "habilidades interpessoais"),
			keys:   schema.SoftSkills,
			render: labels,
		},
		{
			cues: textnorm.NormalizeAll("habilidades", "skills", "competências", "tecnologias"),
			keys: schema.Skills,
			render: func(entries []knowledge.Entry) string {
				return FormatSkills(entries, schema, schema.DescribeSkills)
			},
		},
		{
			cues: textnorm.NormalizeAll("idiomas", "línguas", "languages"),
			keys: schema.Languages,
			render: func(entries []knowledge.Entry) string {
				return FormatLanguages(entries, schema)
			},
		},
		{
			cues:   textnorm.NormalizeAll("hobbies", "hobby", "passatempos"),
			keys:   schema.Hobbies,
			render: labels,
		},
	}
}

func resolveList(q Question, kb *knowledge.KnowledgeBase, topics []listTopic) string {
	index := pie.FindFirstUsing(topics, func(topic listTopic) bool {
		return textnorm.ContainsAny(q.Normalized, topic.cues)
	})
	if index < 0 {
		return NoInformation
	}

	topic := topics[index]
	value, ok := kb.Lookup(topic.keys...)
	if !ok {
		return NoInformation
	}

	var result string
	switch value.Kind() {
	case knowledge.KindText:
		result = strings.TrimSpace(value.Text())
	case knowledge.KindList:
		result = topic.render(value.Entries())
	case knowledge.KindFields:
		result = formatFields(value.Fields())
	}

	if result == "" {
		return NoInformation
	}
	return result
}

// ResolveList picks the list named in the question and renders it.
func ResolveList(q Question, kb *knowledge.KnowledgeBase, schema config.Schema) string {
	return resolveList(q, kb, newListTopics(schema))
}
