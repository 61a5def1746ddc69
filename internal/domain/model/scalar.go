package model

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Scalar holds a string, number, boolean or null exactly as the collaborator sent it.
type Scalar struct {
	text string
	bare bool // number or boolean literal
	null bool
}

// NewScalar wraps a string value.
func NewScalar(text string) Scalar { return Scalar{text: text} }

// NewNumber wraps a numeric or boolean literal.
func NewNumber(literal string) Scalar { return Scalar{text: literal, bare: true} }

// Null returns the explicit null value.
func Null() Scalar { return Scalar{null: true} }

// String returns the verbatim text. Null renders empty.
func (s Scalar) String() string { return s.text }

// IsNull reports whether the collaborator sent an explicit null.
func (s Scalar) IsNull() bool { return s.null }

// UnmarshalJSON accepts strings, numbers, booleans and null.
func (s *Scalar) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0:
		*s = Scalar{}
		return nil
	case bytes.Equal(data, []byte("null")):
		*s = Null()
		return nil
	case data[0] == '"':
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = Scalar{text: str}
		return nil
	case data[0] == '{' || data[0] == '[':
		return fmt.Errorf("scalar: unexpected composite value %s", data)
	}
	*s = Scalar{text: string(data), bare: true}
	return nil
}

// MarshalJSON emits the value with its original kind. Strings are not HTML-escaped.
func (s Scalar) MarshalJSON() ([]byte, error) {
	switch {
	case s.null:
		return []byte("null"), nil
	case s.bare:
		return []byte(s.text), nil
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s.text); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// UnmarshalYAML keeps the node's literal value.
func (s *Scalar) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("scalar: line %d: expected a scalar value", node.Line)
	}
	switch node.ShortTag() {
	case "!!null":
		*s = Null()
	case "!!int", "!!float", "!!bool":
		*s = Scalar{text: node.Value, bare: true}
	default:
		*s = Scalar{text: node.Value}
	}
	return nil
}
