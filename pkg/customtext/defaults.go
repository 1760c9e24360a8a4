package customtext

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"sync"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed defaults/*.yaml
var defaultsFS embed.FS

type catalog struct {
	tags     []language.Tag
	matcher  language.Matcher
	messages map[language.Tag]map[Key]Message
}

var (
	loadOnce sync.Once
	builtin  *catalog
	loadErr  error
)

func loadCatalog(fsys fs.FS) (*catalog, error) {
	paths, err := fs.Glob(fsys, "defaults/*.yaml")
	if err != nil {
		return nil, err
	}

	c := &catalog{messages: map[language.Tag]map[Key]Message{}}
	// English first so the matcher falls back to it.
	c.tags = append(c.tags, language.English)
	for _, p := range paths {
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, fmt.Errorf("read defaults %s: %w", p, err)
		}
		var file map[Key]Message
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("parse defaults %s: %w", p, err)
		}
		tag, err := ParseLanguage(strings.TrimSuffix(path.Base(p), ".yaml"))
		if err != nil {
			return nil, err
		}
		for k := range file {
			if _, err := ParseKey(string(k)); err != nil {
				return nil, fmt.Errorf("defaults %s: %w", p, err)
			}
		}
		c.messages[tag] = file
		if tag != language.English {
			c.tags = append(c.tags, tag)
		}
	}
	if _, ok := c.messages[language.English]; !ok {
		return nil, fmt.Errorf("no English defaults found")
	}
	c.matcher = language.NewMatcher(c.tags)
	return c, nil
}

func defaults() (*catalog, error) {
	loadOnce.Do(func() {
		builtin, loadErr = loadCatalog(defaultsFS)
	})
	return builtin, loadErr
}

// Default returns the built-in message for key in the closest supported language.
func Default(key Key, lang language.Tag) (Message, error) {
	c, err := defaults()
	if err != nil {
		return Message{}, err
	}
	_, idx, _ := c.matcher.Match(lang)
	msg := c.messages[c.tags[idx]][key]
	return msg.Merge(c.messages[language.English][key]), nil
}

// SupportedLanguages lists the languages with built-in defaults.
func SupportedLanguages() []language.Tag {
	c, err := defaults()
	if err != nil {
		return nil
	}
	return append([]language.Tag(nil), c.tags...)
}
