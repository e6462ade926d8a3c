package models

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// FromYAML converts a decoded YAML node into a Value, keeping mapping keys
// in document order. A zero node converts to an empty map.
func FromYAML(n *yaml.Node) (Value, error) {
	if n == nil || n.Kind == 0 {
		return Map(NewRecord()), nil
	}

	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return Map(NewRecord()), nil
		}
		return FromYAML(n.Content[0])

	case yaml.AliasNode:
		return FromYAML(n.Alias)

	case yaml.MappingNode:
		rec := NewRecord()
		for i := 0; i+1 < len(n.Content); i += 2 {
			key, val := n.Content[i], n.Content[i+1]
			v, err := FromYAML(val)
			if err != nil {
				return Value{}, err
			}
			if key.ShortTag() == "!!merge" {
				for _, k := range v.Fields().Keys() {
					if _, ok := rec.Get(k); !ok {
						mv, _ := v.Fields().Get(k)
						rec.Set(k, mv)
					}
				}
				continue
			}
			rec.Set(key.Value, v)
		}
		return Map(rec), nil

	case yaml.SequenceNode:
		items := make([]Value, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := FromYAML(c)
			if err != nil {
				return Value{}, err
			}
			items = append(items, v)
		}
		return List(items...), nil

	case yaml.ScalarNode:
		switch n.ShortTag() {
		case "!!str":
			return String(n.Value), nil
		case "!!null":
			return Null(), nil
		}
		var raw any
		if err := n.Decode(&raw); err != nil {
			return Value{}, fmt.Errorf("models: decode scalar %q at line %d: %w", n.Value, n.Line, err)
		}
		return Scalar(raw), nil
	}

	return Value{}, fmt.Errorf("models: unsupported yaml node kind %d", n.Kind)
}
