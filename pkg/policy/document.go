package policy

import (
	"bytes"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Document maps organization names to the policies they should carry:
//
//	acme:
//	  - !complexity
//	    min_length: 12
//	    has_symbol: true
//	  - !lockout
//	    max_attempts: 5
type Document map[string]Statements

// Statements is a tagged list of policies for one organization.
type Statements []*Policy

func (s *Statements) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.SequenceNode {
		return fmt.Errorf("line %d: expected a list of policies", value.Line)
	}

	var statements Statements
	for _, node := range value.Content {
		p := &Policy{}
		switch node.Tag {
		case KindComplexity.Tag():
			p.Kind = KindComplexity
			p.Complexity = &Complexity{}
			if err := node.Decode(p.Complexity); err != nil {
				return err
			}
		case KindAge.Tag():
			p.Kind = KindAge
			p.Age = &Age{}
			if err := node.Decode(p.Age); err != nil {
				return err
			}
		case KindLockout.Tag():
			p.Kind = KindLockout
			p.Lockout = &Lockout{}
			if err := node.Decode(p.Lockout); err != nil {
				return err
			}
		default:
			return fmt.Errorf("line %d: unknown policy tag %q", node.Line, node.Tag)
		}
		statements = append(statements, p)
	}
	*s = statements
	return nil
}

func (s Statements) MarshalYAML() (interface{}, error) {
	seq := &yaml.Node{Kind: yaml.SequenceNode}
	for _, p := range s {
		var section interface{}
		switch p.Kind {
		case KindComplexity:
			section = p.Complexity
		case KindAge:
			section = p.Age
		case KindLockout:
			section = p.Lockout
		}

		node := &yaml.Node{}
		if err := node.Encode(section); err != nil {
			return nil, err
		}
		node.Tag = p.Kind.Tag()
		node.Style = yaml.TaggedStyle
		seq.Content = append(seq.Content, node)
	}
	return seq, nil
}

// ParseDocument decodes and validates a policy document. An organization may
// list each kind at most once.
func ParseDocument(r io.Reader) (Document, error) {
	var doc Document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if err == io.EOF {
			return Document{}, nil
		}
		return nil, fmt.Errorf("failed to parse policy document: %w", err)
	}

	for org, statements := range doc {
		seen := map[Kind]bool{}
		for _, p := range statements {
			if seen[p.Kind] {
				return nil, fmt.Errorf("org %s: %s policy listed more than once", org, p.Kind)
			}
			seen[p.Kind] = true
			if err := p.Validate(); err != nil {
				return nil, fmt.Errorf("org %s: %s policy: %w", org, p.Kind, err)
			}
		}
	}
	return doc, nil
}

// Encode writes the document as YAML.
func (d Document) Encode(w io.Writer) error {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}
	_, err := w.Write(buf.Bytes())
	return err
}
