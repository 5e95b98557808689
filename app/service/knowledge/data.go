package knowledge

import (
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

type Kind int

const (
	KindText Kind = iota
	KindFields
	KindList
)

// Entry is one item of a list-valued topic, e.g. {nome, descricao} or {idioma, nivel}.
type Entry struct {
	attrs *orderedmap.OrderedMap[string, string]
}

func NewEntry(pairs ...string) Entry {
	attrs := orderedmap.New[string, string]()
	for i := 0; i+1 < len(pairs); i += 2 {
		attrs.Set(pairs[i], pairs[i+1])
	}
	return Entry{attrs: attrs}
}

// Get returns the first present attribute among keys.
func (e Entry) Get(keys ...string) string {
	value, _ := lookup(e.attrs, keys)
	return value
}

// Label returns the primary attribute. Entries holding a single attribute
// (scalar list items) use it as the label whatever its key.
func (e Entry) Label(keys ...string) string {
	if value, ok := lookup(e.attrs, keys); ok {
		return value
	}
	if e.attrs != nil && e.attrs.Len() == 1 {
		return e.attrs.Oldest().Value
	}
	return ""
}

func (e Entry) Each(fn func(key, value string)) {
	if e.attrs == nil {
		return
	}
	for pair := e.attrs.Oldest(); pair != nil; pair = pair.Next() {
		fn(pair.Key, pair.Value)
	}
}

type Value struct {
	kind    Kind
	text    string
	fields  Entry
	entries []Entry
}

func TextValue(text string) Value {
	return Value{kind: KindText, text: text}
}

func FieldsValue(fields Entry) Value {
	return Value{kind: KindFields, fields: fields}
}

func ListValue(entries ...Entry) Value {
	return Value{kind: KindList, entries: entries}
}

func (v Value) Kind() Kind {
	return v.kind
}

func (v Value) Text() string {
	return v.text
}

func (v Value) Fields() Entry {
	return v.fields
}

func (v Value) Entries() []Entry {
	return v.entries
}

// Fact is a canned answer returned whenever the question contains Fragment.
type Fact struct {
	Fragment   string
	Normalized string
	Answer     string
}

// KnowledgeBase is the immutable profile. It is never modified after construction;
// a new document produces a new KnowledgeBase.
type KnowledgeBase struct {
	topics *orderedmap.OrderedMap[string, Value]
	facts  []Fact
}

func (kb *KnowledgeBase) Len() int {
	if kb == nil || kb.topics == nil {
		return 0
	}
	return kb.topics.Len()
}

// Lookup returns the first topic present among keys. Exact keys are tried
// before a case-insensitive match.
func (kb *KnowledgeBase) Lookup(keys ...string) (Value, bool) {
	if kb == nil {
		return Value{}, false
	}
	return lookup(kb.topics, keys)
}

// Text returns the text of the first present topic, or "" when absent.
func (kb *KnowledgeBase) Text(keys ...string) string {
	value, ok := kb.Lookup(keys...)
	if !ok || value.kind != KindText {
		return ""
	}
	return value.text
}

// Entries returns the entries of the first present list topic, or nil when absent.
func (kb *KnowledgeBase) Entries(keys ...string) []Entry {
	value, ok := kb.Lookup(keys...)
	if !ok || value.kind != KindList {
		return nil
	}
	return value.entries
}

func (kb *KnowledgeBase) Facts() []Fact {
	if kb == nil {
		return nil
	}
	return kb.facts
}

// Each iterates topics in document order.
func (kb *KnowledgeBase) Each(fn func(key string, value Value)) {
	if kb == nil || kb.topics == nil {
		return
	}
	for pair := kb.topics.Oldest(); pair != nil; pair = pair.Next() {
		fn(pair.Key, pair.Value)
	}
}

func lookup[V any](m *orderedmap.OrderedMap[string, V], keys []string) (V, bool) {
	var zero V
	if m == nil {
		return zero, false
	}

	for _, key := range keys {
		if value, ok := m.Get(key); ok {
			return value, true
		}
	}

	for _, key := range keys {
		for pair := m.Oldest(); pair != nil; pair = pair.Next() {
			if strings.EqualFold(pair.Key, key) {
				return pair.Value, true
			}
		}
	}

	return zero, false
}
