// Package customtext renders the message templates an organization sends to
// its users and supplies the built-in defaults for them.
//
// A message is a set of short fields plus a markdown body. Fields may refer to
// template data such as {{.UserName}} or {{.Code}}; unknown placeholders render
// as empty strings. The body is converted to HTML with goldmark.
//
// Built-in defaults live in defaults/<lang>.yaml and are matched against the
// requested language with golang.org/x/text/language, falling back to English.
package customtext
