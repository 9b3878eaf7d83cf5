// Package i18n holds the Korean and English copy used in contact emails
// and the language detection that picks between them.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var embeddedLocales embed.FS

var defaultCatalog = mustLoadEmbedded()

// Catalog resolves message keys to localized strings.
type Catalog struct {
	printers map[language.Tag]*message.Printer
	keys     map[language.Tag]map[string]struct{}
}

// Default returns the catalog built from the embedded locale files.
func Default() *Catalog {
	return defaultCatalog
}

func mustLoadEmbedded() *Catalog {
	c, err := LoadFromFS(embeddedLocales)
	if err != nil {
		panic(fmt.Sprintf("load embedded locales: %v", err))
	}
	return c
}

// LoadFromFS reads locales/<lang>.yaml files, each a flat map of key to
// format string. Every locale must define the same keys.
func LoadFromFS(fsys fs.FS) (*Catalog, error) {
	paths, err := fs.Glob(fsys, "locales/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("glob locales: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no locale files found")
	}
	sort.Strings(paths)

	builder := catalog.NewBuilder()
	c := &Catalog{
		printers: map[language.Tag]*message.Printer{},
		keys:     map[language.Tag]map[string]struct{}{},
	}

	for _, p := range paths {
		tag, err := language.Parse(strings.TrimSuffix(path.Base(p), ".yaml"))
		if err != nil {
			return nil, fmt.Errorf("locale %s: %w", p, err)
		}

		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", p, err)
		}

		var entries map[string]string
		if err := yaml.Unmarshal(data, &entries); err != nil {
			return nil, fmt.Errorf("parse %s: %w", p, err)
		}

		keys := make(map[string]struct{}, len(entries))
		for key, msg := range entries {
			if err := builder.SetString(tag, key, msg); err != nil {
				return nil, fmt.Errorf("register %s/%s: %w", tag, key, err)
			}
			keys[key] = struct{}{}
		}
		c.keys[tag] = keys
	}

	if err := c.checkKeySets(); err != nil {
		return nil, err
	}

	for tag := range c.keys {
		c.printers[tag] = message.NewPrinter(tag, message.Catalog(builder))
	}
	return c, nil
}

// Text formats the message stored under key for tag. Unknown tags fall
// back to Korean, unknown keys render as the key itself.
func (c *Catalog) Text(tag language.Tag, key string, args ...any) string {
	p, ok := c.printers[tag]
	if !ok {
		p = c.printers[language.Korean]
	}
	if p == nil {
		return key
	}
	return p.Sprintf(key, args...)
}

func (c *Catalog) checkKeySets() error {
	var ref language.Tag
	var refKeys map[string]struct{}
	for tag, keys := range c.keys {
		if refKeys == nil {
			ref, refKeys = tag, keys
			continue
		}
		for key := range refKeys {
			if _, ok := keys[key]; !ok {
				return fmt.Errorf("locale %s is missing key %q defined in %s", tag, key, ref)
			}
		}
		for key := range keys {
			if _, ok := refKeys[key]; !ok {
				return fmt.Errorf("locale %s is missing key %q defined in %s", ref, key, tag)
			}
		}
	}
	return nil
}
