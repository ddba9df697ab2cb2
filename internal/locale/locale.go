// Package locale provides the spoken strings of the skill in each supported
// language.
//
// Strings live in flat key/value YAML files named after their BCP 47 tag
// (en-US.yaml, de-DE.yaml). The built-in files are embedded in the binary; a
// directory on disk can add locales or override individual keys.
package locale

import (
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var builtin embed.FS

// Catalog holds the strings of every loaded locale.
type Catalog struct {
	tags     []language.Tag // tags[0] is the default locale
	matcher  language.Matcher
	messages map[string]map[string]string // tag -> key -> text
}

// Load builds a catalog from the embedded locales plus any *.yaml files in
// dir (if non-empty). defaultLocale must be one of the loaded locales.
func Load(defaultLocale, dir string) (*Catalog, error) {
	messages := make(map[string]map[string]string)
	if err := loadFS(builtin, "locales", messages); err != nil {
		return nil, fmt.Errorf("loading builtin locales: %w", err)
	}
	if dir != "" {
		if err := loadFS(os.DirFS(dir), ".", messages); err != nil {
			return nil, fmt.Errorf("loading locales from %s: %w", dir, err)
		}
	}

	def, err := language.Parse(defaultLocale)
	if err != nil {
		return nil, fmt.Errorf("default locale %q: %w", defaultLocale, err)
	}
	if _, ok := messages[def.String()]; !ok {
		return nil, fmt.Errorf("default locale %q has no strings", defaultLocale)
	}

	tags := []language.Tag{def}
	for name := range messages {
		if name != def.String() {
			tags = append(tags, language.MustParse(name))
		}
	}

	return &Catalog{
		tags:     tags,
		matcher:  language.NewMatcher(tags),
		messages: messages,
	}, nil
}

// loadFS merges every *.yaml file in dir of fsys into messages.
func loadFS(fsys fs.FS, dir string, messages map[string]map[string]string) error {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		name := e.Name()
		ext := path.Ext(name)
		if e.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		tag, err := language.Parse(strings.TrimSuffix(name, ext))
		if err != nil {
			return fmt.Errorf("%s: file name is not a locale: %w", name, err)
		}

		data, err := fs.ReadFile(fsys, path.Join(dir, name))
		if err != nil {
			return err
		}
		var kv map[string]string
		if err := yaml.Unmarshal(data, &kv); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}

		key := tag.String()
		if messages[key] == nil {
			messages[key] = make(map[string]string, len(kv))
		}
		for k, v := range kv {
			messages[key][k] = v
		}
		slog.Debug("loaded locale strings", "locale", key, "file", name, "keys", len(kv))
	}
	return nil
}

// Locales returns the loaded locale tags, default first.
func (c *Catalog) Locales() []string {
	out := make([]string, len(c.tags))
	for i, t := range c.tags {
		out[i] = t.String()
	}
	return out
}

// Translator returns the strings for the supported locale closest to
// locale. Unknown or empty locales get the default.
func (c *Catalog) Translator(locale string) *Translator {
	tag := c.tags[0]
	if locale != "" {
		if want, err := language.Parse(locale); err == nil {
			_, idx, conf := c.matcher.Match(want)
			if conf != language.No {
				tag = c.tags[idx]
			}
		}
	}
	return &Translator{
		locale:   tag.String(),
		messages: c.messages[tag.String()],
		fallback: c.messages[c.tags[0].String()],
	}
}

// Translator renders the strings of one locale.
type Translator struct {
	locale   string
	messages map[string]string
	fallback map[string]string
}

// Locale returns the tag of the locale the translator renders.
func (t *Translator) Locale() string { return t.locale }

// Text returns the string for key with {name} placeholders replaced from
// the name/value pairs in kv. A key missing from the locale falls back to
// the default locale, then to the key itself.
func (t *Translator) Text(key string, kv ...string) string {
	msg, ok := t.messages[key]
	if !ok {
		if msg, ok = t.fallback[key]; !ok {
			slog.Warn("missing locale string", "locale", t.locale, "key", key)
			msg = key
		}
	}
	if len(kv) < 2 {
		return msg
	}
	pairs := make([]string, 0, len(kv))
	for i := 0; i+1 < len(kv); i += 2 {
		pairs = append(pairs, "{"+kv[i]+"}", kv[i+1])
	}
	return strings.NewReplacer(pairs...).Replace(msg)
}

// Join renders items as a spoken list: "a", "a and b", "a, b and c".
func (t *Translator) Join(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	}
	last := len(items) - 1
	return strings.Join(items[:last], ", ") + " " + t.Text("list.and") + " " + items[last]
}
