package source

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// maxYAMLDepth bounds nesting, including nesting reached through aliases.
const maxYAMLDepth = 512

// Alias expansion may visit at most yamlNodesPerByte nodes per input byte,
// and never fewer than minYAMLNodeBudget in total.
const (
	yamlNodesPerByte  = 100
	minYAMLNodeBudget = 10000
)

// yamlDecoder converts a node tree while charging every visited node
// against budget, so repeated aliases cannot expand without limit.
type yamlDecoder struct {
	budget int
}

func decodeYAML(data []byte) (any, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return nil, errors.New("empty document")
	}
	d := &yamlDecoder{budget: max(len(data)*yamlNodesPerByte, minYAMLNodeBudget)}
	return d.value(doc.Content[0], 0)
}

func (d *yamlDecoder) value(n *yaml.Node, depth int) (any, error) {
	if depth > maxYAMLDepth {
		return nil, fmt.Errorf("line %d: nesting exceeds %d levels", n.Line, maxYAMLDepth)
	}
	d.budget--
	if d.budget < 0 {
		return nil, fmt.Errorf("line %d: document expands to too many nodes through aliases", n.Line)
	}

	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return d.value(n.Content[0], depth+1)
	case yaml.AliasNode:
		return d.value(n.Alias, depth+1)
	case yaml.MappingNode:
		obj := NewObject()
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, v := n.Content[i], n.Content[i+1]
			if k.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("line %d: mapping keys must be scalars", k.Line)
			}
			if k.ShortTag() == "!!merge" {
				return nil, fmt.Errorf("line %d: merge keys are not supported", k.Line)
			}
			val, err := d.value(v, depth+1)
			if err != nil {
				return nil, err
			}
			obj.Set(k.Value, val)
		}
		return obj, nil
	case yaml.SequenceNode:
		items := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			val, err := d.value(c, depth+1)
			if err != nil {
				return nil, err
			}
			items = append(items, val)
		}
		return items, nil
	case yaml.ScalarNode:
		return yamlScalar(n)
	}
	return nil, fmt.Errorf("line %d: unexpected node kind %d", n.Line, n.Kind)
}

func yamlScalar(n *yaml.Node) (any, error) {
	switch tag := n.ShortTag(); tag {
	case "!!null":
		return nil, nil
	case "!!str":
		return n.Value, nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, err
		}
		return b, nil
	case "!!int":
		var i int64
		if err := n.Decode(&i); err != nil {
			return nil, fmt.Errorf("line %d: integer %s out of range", n.Line, n.Value)
		}
		return i, nil
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return nil, err
		}
		return f, nil
	case "!!timestamp":
		var t time.Time
		if err := n.Decode(&t); err != nil {
			return nil, err
		}
		return t, nil
	case "!!binary":
		raw := strings.Join(strings.Fields(n.Value), "")
		b, err := base64.StdEncoding.DecodeString(raw)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid binary: %w", n.Line, err)
		}
		return b, nil
	default:
		return nil, fmt.Errorf("line %d: unsupported tag %s", n.Line, tag)
	}
}
