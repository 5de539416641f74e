// Package codec encodes and decodes vault documents: a YAML frontmatter
// block between --- delimiters followed by a free-form body. Field order
// is preserved, so re-encoding a decoded document reproduces it byte for
// byte.
package codec

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mazkir/mazkir/internal/apperr"
)

const delim = "---"

// Decode splits raw into frontmatter metadata and body. A document with
// no frontmatter block decodes to empty metadata and the whole text as
// body. An opening delimiter without a closing one, or invalid YAML
// inside the block, fails with apperr.ErrMalformed.
func Decode(raw []byte) (*Metadata, string, error) {
	if !bytes.HasPrefix(raw, []byte(delim+"\n")) && !bytes.Equal(raw, []byte(delim)) {
		return NewMetadata(), string(raw), nil
	}

	rest := raw[len(delim):]
	idx := bytes.Index(rest, []byte("\n" + delim))
	if idx < 0 {
		return nil, "", fmt.Errorf("codec: missing closing delimiter: %w", apperr.ErrMalformed)
	}

	block := rest[:idx]
	after := rest[idx+1+len(delim):]
	// The closing delimiter line ends with a newline that is part of the
	// document structure, not of the body.
	body := string(after)
	if strings.HasPrefix(body, "\n") {
		body = body[1:]
	}

	meta, err := parseBlock(block)
	if err != nil {
		return nil, "", err
	}
	return meta, body, nil
}

// Encode serializes metadata and body into a document. Empty metadata
// produces the body alone. Encoding is deterministic: fields appear in
// insertion order with canonical YAML formatting.
func Encode(meta *Metadata, body string) []byte {
	if meta.Len() == 0 {
		return []byte(body)
	}

	node := metadataNode(meta)
	var buf bytes.Buffer
	buf.WriteString(delim + "\n")
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	// Encoding a constructed node cannot fail.
	_ = enc.Encode(node)
	_ = enc.Close()
	buf.WriteString(delim + "\n")
	buf.WriteString(body)
	return buf.Bytes()
}

func parseBlock(block []byte) (*Metadata, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(block, &doc); err != nil {
		return nil, fmt.Errorf("codec: invalid frontmatter: %w", apperr.ErrMalformed)
	}
	if len(doc.Content) == 0 {
		return NewMetadata(), nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("codec: frontmatter is not a mapping: %w", apperr.ErrMalformed)
	}
	return mappingToMetadata(root)
}

func mappingToMetadata(n *yaml.Node) (*Metadata, error) {
	meta := NewMetadata()
	for i := 0; i+1 < len(n.Content); i += 2 {
		keyNode, valNode := n.Content[i], n.Content[i+1]
		if keyNode.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("codec: non-scalar key: %w", apperr.ErrMalformed)
		}
		key := keyNode.Value
		if meta.Has(key) {
			return nil, fmt.Errorf("codec: duplicate key %q: %w", key, apperr.ErrMalformed)
		}
		val, err := nodeValue(valNode)
		if err != nil {
			return nil, err
		}
		meta.Set(key, val)
	}
	return meta, nil
}

func nodeValue(n *yaml.Node) (any, error) {
	switch n.Kind {
	case yaml.ScalarNode:
		return scalarValue(n), nil
	case yaml.SequenceNode:
		return sequenceValue(n)
	case yaml.MappingNode:
		return mappingToMetadata(n)
	default:
		return nil, fmt.Errorf("codec: unsupported node kind: %w", apperr.ErrMalformed)
	}
}

func scalarValue(n *yaml.Node) any {
	switch n.Tag {
	case "!!int":
		if v, err := strconv.Atoi(n.Value); err == nil {
			return v
		}
	case "!!float":
		if v, err := strconv.ParseFloat(n.Value, 64); err == nil {
			return v
		}
	case "!!bool":
		if v, err := strconv.ParseBool(n.Value); err == nil {
			return v
		}
	case "!!null":
		return nil
	}
	// Dates, timestamps, and everything else stay strings; the vault
	// stores calendar dates as plain YYYY-MM-DD scalars.
	return n.Value
}

// sequenceValue returns []string when every element is a plain string,
// []any otherwise. This keeps list fields such as completed_habits
// directly usable without type assertions everywhere.
func sequenceValue(n *yaml.Node) (any, error) {
	allStrings := true
	vals := make([]any, 0, len(n.Content))
	for _, c := range n.Content {
		v, err := nodeValue(c)
		if err != nil {
			return nil, err
		}
		if _, ok := v.(string); !ok {
			allStrings = false
		}
		vals = append(vals, v)
	}
	if allStrings {
		out := make([]string, len(vals))
		for i, v := range vals {
			out[i] = v.(string)
		}
		return out, nil
	}
	return vals, nil
}

func metadataNode(meta *Metadata) *yaml.Node {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, f := range meta.fields {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: f.key},
			valueNode(f.value))
	}
	return node
}

func valueNode(v any) *yaml.Node {
	switch val := v.(type) {
	case nil:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	case *Metadata:
		return metadataNode(val)
	case []string:
		node := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, s := range val {
			node.Content = append(node.Content, stringNode(s))
		}
		return node
	case []any:
		node := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, e := range val {
			node.Content = append(node.Content, valueNode(e))
		}
		return node
	case string:
		return stringNode(val)
	case int:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.Itoa(val)}
	case int64:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.FormatInt(val, 10)}
	case float64:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: strconv.FormatFloat(val, 'g', -1, 64)}
	case bool:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(val)}
	default:
		return stringNode(fmt.Sprint(val))
	}
}

// dateRe matches plain calendar-date scalars. The emitter would quote
// them as strings because they resolve to the YAML timestamp tag, so
// they are tagged as timestamps to keep the plain form on disk.
var dateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

func stringNode(s string) *yaml.Node {
	if dateRe.MatchString(s) {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!timestamp", Value: s}
	}
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}
