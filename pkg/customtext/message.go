package customtext

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/renderer/html"
)

// Message holds the fields of one message template.
type Message struct {
	Title      string `json:"title" yaml:"title" gorm:"column:title"`
	PreHeader  string `json:"pre_header" yaml:"pre_header" gorm:"column:pre_header"`
	Subject    string `json:"subject" yaml:"subject" gorm:"column:subject"`
	Greeting   string `json:"greeting" yaml:"greeting" gorm:"column:greeting"`
	Text       string `json:"text" yaml:"text" gorm:"column:text"`
	ButtonText string `json:"button_text" yaml:"button_text" gorm:"column:button_text"`
	FooterText string `json:"footer_text" yaml:"footer_text" gorm:"column:footer_text"`
}

// Preview is a message with its placeholders expanded and its body rendered as HTML.
type Preview struct {
	Title      string `json:"title"`
	PreHeader  string `json:"pre_header"`
	Subject    string `json:"subject"`
	Greeting   string `json:"greeting"`
	HTML       string `json:"html"`
	ButtonText string `json:"button_text"`
	FooterText string `json:"footer_text"`
}

// Data is the placeholder set available to templates.
type Data map[string]string

// SampleData is used for previews in the admin API.
var SampleData = Data{
	"UserName":    "jane.doe",
	"FirstName":   "Jane",
	"LastName":    "Doe",
	"OrgName":     "ACME",
	"Code":        "ABC123",
	"URL":         "https://login.example.com/verify",
	"Domain":      "example.com",
	"PhoneNumber": "+41 79 000 00 00",
}

var md = goldmark.New(goldmark.WithRendererOptions(html.WithHardWraps()))

// Expand fills placeholders in s.
func Expand(s string, data Data) (string, error) {
	tmpl, err := template.New("text").Option("missingkey=zero").Parse(s)
	if err != nil {
		return "", fmt.Errorf("invalid template: %w", err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, map[string]string(data)); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Render expands placeholders in a markdown text and converts it to HTML.
func Render(text string, data Data) (string, error) {
	expanded, err := Expand(text, data)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := md.Convert([]byte(expanded), &buf); err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return buf.String(), nil
}

// Validate checks that every field parses as a template.
func (m Message) Validate() error {
	fields := map[string]string{
		"title":       m.Title,
		"pre_header":  m.PreHeader,
		"subject":     m.Subject,
		"greeting":    m.Greeting,
		"text":        m.Text,
		"button_text": m.ButtonText,
		"footer_text": m.FooterText,
	}
	for name, value := range fields {
		if _, err := template.New(name).Parse(value); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

// Merge returns m with its empty fields taken from fallback.
func (m Message) Merge(fallback Message) Message {
	pick := func(v, d string) string {
		if v == "" {
			return d
		}
		return v
	}
	return Message{
		Title:      pick(m.Title, fallback.Title),
		PreHeader:  pick(m.PreHeader, fallback.PreHeader),
		Subject:    pick(m.Subject, fallback.Subject),
		Greeting:   pick(m.Greeting, fallback.Greeting),
		Text:       pick(m.Text, fallback.Text),
		ButtonText: pick(m.ButtonText, fallback.ButtonText),
		FooterText: pick(m.FooterText, fallback.FooterText),
	}
}

// Render expands every field with data and renders the body as HTML.
func (m Message) Render(data Data) (*Preview, error) {
	p := &Preview{}
	plain := []struct {
		in  string
		out *string
	}{
		{m.Title, &p.Title},
		{m.PreHeader, &p.PreHeader},
		{m.Subject, &p.Subject},
		{m.Greeting, &p.Greeting},
		{m.ButtonText, &p.ButtonText},
		{m.FooterText, &p.FooterText},
	}
	for _, f := range plain {
		s, err := Expand(f.in, data)
		if err != nil {
			return nil, err
		}
		*f.out = s
	}

	body, err := Render(m.Text, data)
	if err != nil {
		return nil, err
	}
	p.HTML = body
	return p, nil
}
