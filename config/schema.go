package config

import (
	"bytes"
	"encoding/json"
	"fmt"

	"groundcite/config/models"
)

// BuildSchema turns the field descriptors into a compact JSON-Schema object
// document. Descriptors with an empty key are skipped. A key that appears
// more than once keeps its first position and takes the last descriptor's
// value. "required" lists every required descriptor in order and is left
// out when there are none.
func BuildSchema(keys []models.SchemaKey) []byte {
	type property struct {
		typ         models.FieldType
		description string
	}

	var order []string
	props := make(map[string]property)
	var required []string

	for _, k := range keys {
		if k.Key == "" {
			continue
		}
		if _, seen := props[k.Key]; !seen {
			order = append(order, k.Key)
		}
		props[k.Key] = property{typ: k.Type, description: k.Description}
		if k.Required {
			required = append(required, k.Key)
		}
	}

	var buf bytes.Buffer
	buf.WriteString(`{"type":"object","properties":{`)
	for i, name := range order {
		if i > 0 {
			buf.WriteByte(',')
		}
		p := props[name]
		buf.Write(quote(name))
		buf.WriteString(`:{"type":`)
		buf.Write(quote(string(p.typ)))
		buf.WriteString(`,"description":`)
		buf.Write(quote(p.description))
		buf.WriteByte('}')
	}
	buf.WriteByte('}')

	if len(required) > 0 {
		buf.WriteString(`,"required":[`)
		for i, name := range required {
			if i > 0 {
				buf.WriteByte(',')
			}
			buf.Write(quote(name))
		}
		buf.WriteByte(']')
	}
	buf.WriteByte('}')

	return buf.Bytes()
}

// GenerateSchema returns the schema document for keys, indented by two spaces
func GenerateSchema(keys []models.SchemaKey) (string, error) {
	var out bytes.Buffer
	if err := json.Indent(&out, BuildSchema(keys), "", "  "); err != nil {
		return "", fmt.Errorf("failed to format schema: %w", err)
	}
	return out.String(), nil
}

// GenerateSchema rebuilds config.schema from the current field descriptors.
// Any text previously in config.schema is replaced.
func (st *State) GenerateSchema() (string, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	schema, err := GenerateSchema(st.s.SchemaKeys)
	if err != nil {
		return "", err
	}
	st.s.Config.Schema = schema
	return schema, nil
}

// quote encodes s as a JSON string without HTML escaping
func quote(s string) []byte {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s)
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n"))
}
