package bricks

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// Setting keys that the renaming engine reads or rewrites.
const (
	KeyGlobalClasses = "_cssGlobalClasses"
	KeyCSSCode       = "cssCode"
	KeyJavaScript    = "javascriptCode"
	KeyQueryCode     = "extrasCustomQueryCode"
	KeyCSSCustom     = "_cssCustom"
)

// ElementSnippetKeys lists the element settings that may embed class or id references.
var ElementSnippetKeys = []string{KeyCSSCode, KeyJavaScript, KeyQueryCode, KeyCSSCustom}

// Settings is the settings object of an element or global class.
type Settings struct {
	Fields
}

// GlobalClasses returns the class ids referenced by _cssGlobalClasses.
func (s Settings) GlobalClasses() []string {
	var ids []string
	if _, err := s.Decode(KeyGlobalClasses, &ids); err != nil {
		return nil
	}
	return ids
}

// SetGlobalClasses replaces _cssGlobalClasses.
func (s *Settings) SetGlobalClasses(ids []string) error {
	fields, err := s.SetValue(KeyGlobalClasses, ids)
	if err != nil {
		return err
	}
	s.Fields = fields
	return nil
}

// Snippet returns the free-text value stored under key.
func (s Settings) Snippet(key string) (string, bool) {
	var text string
	ok, err := s.Decode(key, &text)
	if !ok || err != nil {
		return "", false
	}
	return text, true
}

// SetSnippet stores a free-text value under key.
func (s *Settings) SetSnippet(key, text string) error {
	raw, err := marshalNoEscape(text)
	if err != nil {
		return err
	}
	s.Fields = s.Set(key, raw)
	return nil
}

// Clone deep-copies the settings.
func (s Settings) Clone() Settings {
	return Settings{Fields: s.Fields.Clone()}
}

// Element is one node of the content tree.
type Element struct {
	ID       string
	Parent   json.RawMessage
	Children []string
	Settings Settings

	hasSettings bool
	rest        Fields
}

// ParentID returns the parent id when the parent reference is a string.
func (e *Element) ParentID() (string, bool) {
	if len(e.Parent) == 0 {
		return "", false
	}
	var id string
	if err := json.Unmarshal(e.Parent, &id); err != nil || id == "" {
		return "", false
	}
	return id, true
}

// SetParentID points the element at another element id.
func (e *Element) SetParentID(id string) {
	raw, _ := json.Marshal(id)
	e.Parent = raw
}

// HasSettings reports whether the element carried a settings object.
func (e *Element) HasSettings() bool {
	return e.hasSettings || len(e.Settings.Fields) > 0
}

// Field exposes an untyped property of the element.
func (e *Element) Field(key string) (json.RawMessage, bool) {
	return e.rest.Get(key)
}

// UnmarshalJSON decodes an element keeping unknown properties.
func (e *Element) UnmarshalJSON(data []byte) error {
	var fields Fields
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("element: %w", err)
	}
	out := Element{rest: fields}
	if _, err := fields.Decode("id", &out.ID); err != nil {
		return err
	}
	if raw, ok := fields.Get("parent"); ok {
		out.Parent = cloneRaw(raw)
	}
	if _, err := fields.Decode("children", &out.Children); err != nil {
		return err
	}
	if raw, ok := fields.Get("settings"); ok {
		out.hasSettings = true
		// Bricks exports an empty settings list as [] instead of {}.
		if len(bytes.TrimSpace(raw)) > 0 && bytes.TrimSpace(raw)[0] == '{' {
			if err := json.Unmarshal(raw, &out.Settings.Fields); err != nil {
				return fmt.Errorf("element %s settings: %w", out.ID, err)
			}
		}
	}
	*e = out
	return nil
}

// MarshalJSON writes the element back with its original key order.
func (e Element) MarshalJSON() ([]byte, error) {
	fields := e.rest.Clone()
	var err error
	if e.ID != "" || fields.Has("id") {
		if fields, err = fields.SetValue("id", e.ID); err != nil {
			return nil, err
		}
	}
	if len(e.Parent) > 0 {
		fields = fields.Set("parent", cloneRaw(e.Parent))
	}
	if e.Children != nil || fields.Has("children") {
		children := e.Children
		if children == nil {
			children = []string{}
		}
		if fields, err = fields.SetValue("children", children); err != nil {
			return nil, err
		}
	}
	if len(e.Settings.Fields) > 0 {
		raw, err := e.Settings.Fields.MarshalJSON()
		if err != nil {
			return nil, err
		}
		fields = fields.Set("settings", raw)
	}
	return fields.MarshalJSON()
}

// Clone returns a structural copy of the element.
func (e Element) Clone() Element {
	out := e
	out.Parent = cloneRaw(e.Parent)
	if e.Children != nil {
		out.Children = append([]string{}, e.Children...)
	}
	out.Settings = e.Settings.Clone()
	out.rest = e.rest.Clone()
	return out
}

// ClassDefinition is an entry of the globalClasses table.
type ClassDefinition struct {
	ID       string
	Name     string
	Settings Settings

	hasSettings bool
	rest        Fields
}

// Field exposes an untyped property of the class.
func (c *ClassDefinition) Field(key string) (json.RawMessage, bool) {
	return c.rest.Get(key)
}

// UnmarshalJSON decodes a class keeping unknown properties.
func (c *ClassDefinition) UnmarshalJSON(data []byte) error {
	var fields Fields
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("global class: %w", err)
	}
	out := ClassDefinition{rest: fields}
	if _, err := fields.Decode("id", &out.ID); err != nil {
		return err
	}
	if _, err := fields.Decode("name", &out.Name); err != nil {
		return err
	}
	if raw, ok := fields.Get("settings"); ok {
		out.hasSettings = true
		if len(bytes.TrimSpace(raw)) > 0 && bytes.TrimSpace(raw)[0] == '{' {
			if err := json.Unmarshal(raw, &out.Settings.Fields); err != nil {
				return fmt.Errorf("global class %s settings: %w", out.ID, err)
			}
		}
	}
	*c = out
	return nil
}

// MarshalJSON writes the class back with its original key order.
func (c ClassDefinition) MarshalJSON() ([]byte, error) {
	fields := c.rest.Clone()
	var err error
	if c.ID != "" || fields.Has("id") {
		if fields, err = fields.SetValue("id", c.ID); err != nil {
			return nil, err
		}
	}
	if c.Name != "" || fields.Has("name") {
		if fields, err = fields.SetValue("name", c.Name); err != nil {
			return nil, err
		}
	}
	if len(c.Settings.Fields) > 0 {
		raw, err := c.Settings.Fields.MarshalJSON()
		if err != nil {
			return nil, err
		}
		fields = fields.Set("settings", raw)
	}
	return fields.MarshalJSON()
}

// Clone returns a structural copy of the class.
func (c ClassDefinition) Clone() ClassDefinition {
	out := c
	out.Settings = c.Settings.Clone()
	out.rest = c.rest.Clone()
	return out
}

// Provenance holds the fixed metadata written on merged exports.
type Provenance struct {
	Source    string `json:"source,omitempty" yaml:"source" toml:"source"`
	SourceURL string `json:"sourceUrl,omitempty" yaml:"source_url" toml:"source_url"`
	Version   string `json:"version,omitempty" yaml:"version" toml:"version"`
}

// IsZero reports whether no provenance value is set.
func (p Provenance) IsZero() bool {
	return p == Provenance{}
}

// Document is a section export: content tree, class table and global elements.
type Document struct {
	Content        []Element
	GlobalClasses  []ClassDefinition
	GlobalElements []json.RawMessage
	Provenance     Provenance

	hasContent        bool
	hasGlobalClasses  bool
	hasGlobalElements bool
}

type documentJSON struct {
	Content        *[]Element         `json:"content,omitempty"`
	Source         string             `json:"source,omitempty"`
	SourceURL      string             `json:"sourceUrl,omitempty"`
	Version        string             `json:"version,omitempty"`
	GlobalClasses  *[]ClassDefinition `json:"globalClasses,omitempty"`
	GlobalElements *[]json.RawMessage `json:"globalElements,omitempty"`
}

// UnmarshalJSON decodes a section export.
func (d *Document) UnmarshalJSON(data []byte) error {
	var raw documentJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := Document{
		Provenance: Provenance{Source: raw.Source, SourceURL: raw.SourceURL, Version: raw.Version},
	}
	if raw.Content != nil {
		out.Content = *raw.Content
		out.hasContent = true
	}
	if raw.GlobalClasses != nil {
		out.GlobalClasses = *raw.GlobalClasses
		out.hasGlobalClasses = true
	}
	if raw.GlobalElements != nil {
		out.GlobalElements = *raw.GlobalElements
		out.hasGlobalElements = true
	}
	*d = out
	return nil
}

// MarshalJSON emits the arrays that were present in the source, or non-empty.
func (d Document) MarshalJSON() ([]byte, error) {
	out := documentJSON{
		Source:    d.Provenance.Source,
		SourceURL: d.Provenance.SourceURL,
		Version:   d.Provenance.Version,
	}
	if d.hasContent || d.Content != nil {
		content := d.Content
		if content == nil {
			content = []Element{}
		}
		out.Content = &content
	}
	if d.hasGlobalClasses || d.GlobalClasses != nil {
		classes := d.GlobalClasses
		if classes == nil {
			classes = []ClassDefinition{}
		}
		out.GlobalClasses = &classes
	}
	if d.hasGlobalElements || d.GlobalElements != nil {
		globals := d.GlobalElements
		if globals == nil {
			globals = []json.RawMessage{}
		}
		out.GlobalElements = &globals
	}
	return marshalNoEscape(out)
}

// Clone returns a full structural copy; the receiver is never shared with the result.
func (d *Document) Clone() *Document {
	out := &Document{
		Provenance:        d.Provenance,
		hasContent:        d.hasContent,
		hasGlobalClasses:  d.hasGlobalClasses,
		hasGlobalElements: d.hasGlobalElements,
	}
	if d.Content != nil {
		out.Content = make([]Element, len(d.Content))
		for i, el := range d.Content {
			out.Content[i] = el.Clone()
		}
	}
	if d.GlobalClasses != nil {
		out.GlobalClasses = make([]ClassDefinition, len(d.GlobalClasses))
		for i, cls := range d.GlobalClasses {
			out.GlobalClasses[i] = cls.Clone()
		}
	}
	if d.GlobalElements != nil {
		out.GlobalElements = make([]json.RawMessage, len(d.GlobalElements))
		for i, g := range d.GlobalElements {
			out.GlobalElements[i] = cloneRaw(g)
		}
	}
	return out
}

// Parse decodes a section export.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid section document: %w", err)
	}
	return &doc, nil
}

// Encode writes the document as indented JSON without HTML escaping, so
// embedded markup stays readable when pasted back into the builder.
func Encode(w io.Writer, doc *Document) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

func marshalNoEscape(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
