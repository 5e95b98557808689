package knowledge

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"profileqa/app/util/textnorm"

	"github.com/samber/oops"
	"github.com/spf13/cast"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

type rawObject = orderedmap.OrderedMap[string, json.RawMessage]

// Layout names the sub-objects of the source document.
type Layout struct {
	ContextKey     string
	BinaryFactsKey string
}

type Builder struct {
	topics *orderedmap.OrderedMap[string, Value]
	facts  []Fact
}

func NewBuilder() *Builder {
	return &Builder{topics: orderedmap.New[string, Value]()}
}

func (b *Builder) Topic(key string, value Value) *Builder {
	b.topics.Set(key, value)
	return b
}

func (b *Builder) Fact(fragment, answer string) *Builder {
	b.facts = append(b.facts, Fact{
		Fragment:   fragment,
		Normalized: textnorm.Normalize(fragment),
		Answer:     answer,
	})
	return b
}

func (b *Builder) Build() *KnowledgeBase {
	return &KnowledgeBase{topics: b.topics, facts: b.facts}
}

func LoadFile(path string, layout Layout) (*KnowledgeBase, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, oops.In("knowledge").With("path", path).Wrapf(err, "failed to read knowledge base")
	}

	kb, err := Parse(data, layout)
	if err != nil {
		return nil, oops.In("knowledge").With("path", path).Wrap(err)
	}

	return kb, nil
}

// Parse builds a knowledge base from a JSON document, keeping key order.
func Parse(data []byte, layout Layout) (*KnowledgeBase, error) {
	root, err := decodeObject(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}

	profile := root
	if raw, ok := root.Get(layout.ContextKey); ok && layout.ContextKey != "" {
		if profile, err = decodeObject(raw); err != nil {
			return nil, fmt.Errorf("failed to decode %q: %w", layout.ContextKey, err)
		}
	}

	b := NewBuilder()

	factsRaw, ok := root.Get(layout.BinaryFactsKey)
	if !ok {
		factsRaw, ok = profile.Get(layout.BinaryFactsKey)
	}
	if ok && layout.BinaryFactsKey != "" {
		facts, err := decodeObject(factsRaw)
		if err != nil {
			return nil, fmt.Errorf("failed to decode %q: %w", layout.BinaryFactsKey, err)
		}
		for pair := facts.Oldest(); pair != nil; pair = pair.Next() {
			answer, err := scalar(pair.Value)
			if err != nil {
				return nil, fmt.Errorf("binary fact %q: %w", pair.Key, err)
			}
			b.Fact(pair.Key, answer)
		}
	}

	for pair := profile.Oldest(); pair != nil; pair = pair.Next() {
		if pair.Key == layout.BinaryFactsKey {
			continue
		}

		value, err := decodeValue(pair.Key, pair.Value)
		if err != nil {
			return nil, fmt.Errorf("topic %q: %w", pair.Key, err)
		}
		b.Topic(pair.Key, value)
	}

	return b.Build(), nil
}

func decodeObject(data []byte) (*rawObject, error) {
	obj := orderedmap.New[string, json.RawMessage]()
	if err := json.Unmarshal(data, obj); err != nil {
		return nil, err
	}
	return obj, nil
}

func decodeValue(key string, raw json.RawMessage) (Value, error) {
	switch firstByte(raw) {
	case '{':
		fields, err := decodeEntry(raw)
		if err != nil {
			return Value{}, err
		}
		return FieldsValue(fields), nil
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return Value{}, err
		}
		entries := make([]Entry, 0, len(items))
		for _, item := range items {
			if firstByte(item) == '{' {
				entry, err := decodeEntry(item)
				if err != nil {
					return Value{}, err
				}
				entries = append(entries, entry)
				continue
			}
			text, err := scalar(item)
			if err != nil {
				return Value{}, err
			}
			entries = append(entries, NewEntry(key, text))
		}
		return ListValue(entries...), nil
	default:
		text, err := scalar(raw)
		if err != nil {
			return Value{}, err
		}
		return TextValue(text), nil
	}
}

func decodeEntry(raw json.RawMessage) (Entry, error) {
	obj, err := decodeObject(raw)
	if err != nil {
		return Entry{}, err
	}

	attrs := orderedmap.New[string, string]()
	for pair := obj.Oldest(); pair != nil; pair = pair.Next() {
		text, err := scalar(pair.Value)
		if err != nil {
			return Entry{}, fmt.Errorf("attribute %q: %w", pair.Key, err)
		}
		attrs.Set(pair.Key, text)
	}

	return Entry{attrs: attrs}, nil
}

// scalar stringifies a JSON scalar; nested objects and arrays are kept as compact JSON.
func scalar(raw json.RawMessage) (string, error) {
	switch firstByte(raw) {
	case '{', '[':
		var buf bytes.Buffer
		if err := json.Compact(&buf, raw); err != nil {
			return "", err
		}
		return buf.String(), nil
	}

	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return "", err
	}
	return cast.ToStringE(value)
}

func firstByte(raw json.RawMessage) byte {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return 0
	}
	return trimmed[0]
}
