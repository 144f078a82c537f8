// Package catalog embeds the locale message files and registers them with
// x/text/message, so report rendering can ask for a localized Printer.
package catalog

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"
)

// BaseLocale is the fallback of last resort. Loading fails when it is
// missing, so every Printer can always resolve a message.
const BaseLocale = "en-US"

// localeFile mirrors one locales/<locale>/<namespace>.yaml document.
type localeFile struct {
	Locale    string            `yaml:"locale"`
	Namespace string            `yaml:"namespace"`
	Messages  map[string]string `yaml:"messages"`
}

// Bundle holds the merged message map per locale.
type Bundle struct {
	locales map[string]map[string]string
}

//go:embed locales/*/*.yaml
var localeFS embed.FS

var defaultBundle = func() *Bundle {
	b, err := Load(localeFS)
	if err != nil {
		panic(err)
	}
	if err := b.Register(); err != nil {
		panic(err)
	}
	return b
}()

// Default returns the process-wide bundle built from the embedded files,
// already registered with x/text/message.
func Default() *Bundle {
	return defaultBundle
}

// Load reads every locales/<locale>/<namespace>.yaml file from fsys. The
// document's locale and namespace fields must match its path, keys may not
// be blank or repeat within a locale, and BaseLocale must be present.
func Load(fsys fs.FS) (*Bundle, error) {
	paths, err := fs.Glob(fsys, "locales/*/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("glob locale catalogs: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no catalog files found")
	}
	sort.Strings(paths)

	b := &Bundle{locales: map[string]map[string]string{}}
	for _, p := range paths {
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, fmt.Errorf("read catalog %s: %w", p, err)
		}
		var file localeFile
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("parse catalog %s: %w", p, err)
		}
		if err := b.add(p, file); err != nil {
			return nil, err
		}
	}
	if _, ok := b.locales[BaseLocale]; !ok {
		return nil, fmt.Errorf("base locale %s is not defined in catalogs", BaseLocale)
	}
	return b, nil
}

func (b *Bundle) add(p string, file localeFile) error {
	locale := strings.TrimSpace(file.Locale)
	namespace := strings.TrimSpace(file.Namespace)
	switch {
	case locale == "":
		return fmt.Errorf("catalog %s: locale is required", p)
	case locale != path.Base(path.Dir(p)):
		return fmt.Errorf("catalog %s: locale %q must match path locale %q", p, locale, path.Base(path.Dir(p)))
	case namespace == "":
		return fmt.Errorf("catalog %s: namespace is required", p)
	case namespace != strings.TrimSuffix(path.Base(p), ".yaml"):
		return fmt.Errorf("catalog %s: namespace %q must match filename", p, namespace)
	case len(file.Messages) == 0:
		return fmt.Errorf("catalog %s: messages map is required", p)
	}

	messages, ok := b.locales[locale]
	if !ok {
		messages = map[string]string{}
		b.locales[locale] = messages
	}
	for key, value := range file.Messages {
		key = strings.TrimSpace(key)
		if key == "" {
			return fmt.Errorf("catalog %s: message key cannot be blank", p)
		}
		if _, exists := messages[key]; exists {
			return fmt.Errorf("catalog %s: duplicate key %q in locale %q", p, key, locale)
		}
		messages[key] = value
	}
	return nil
}

// Register installs every message with x/text/message under both the exact
// locale tag and, when distinct, its base language, so "pt" requests still
// resolve the pt-BR strings.
func (b *Bundle) Register() error {
	if b == nil {
		return nil
	}
	for _, locale := range b.Locales() {
		tag, err := language.Parse(locale)
		if err != nil {
			return fmt.Errorf("parse locale tag %q: %w", locale, err)
		}
		tags := []language.Tag{tag}
		if base, _ := tag.Base(); base.String() != "" && base.String() != "und" {
			if baseTag, err := language.Parse(base.String()); err == nil && baseTag != tag {
				tags = append(tags, baseTag)
			}
		}

		messages := b.locales[locale]
		keys := make([]string, 0, len(messages))
		for key := range messages {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			for _, registerTag := range tags {
				message.SetString(registerTag, key, messages[key])
			}
		}
	}
	return nil
}

// Locales returns the bundle's locale identifiers, sorted.
func (b *Bundle) Locales() []string {
	if b == nil {
		return nil
	}
	out := make([]string, 0, len(b.locales))
	for locale := range b.locales {
		out = append(out, locale)
	}
	sort.Strings(out)
	return out
}

// Printer returns a message printer for the closest registered locale.
// Matching follows language.MatchStrings over the bundle's locales with
// BaseLocale as the fallback of last resort.
func (b *Bundle) Printer(locale string) *message.Printer {
	tags := []language.Tag{language.MustParse(BaseLocale)}
	if b != nil {
		for _, candidate := range b.Locales() {
			if candidate == BaseLocale {
				continue
			}
			tag, err := language.Parse(candidate)
			if err != nil {
				continue
			}
			tags = append(tags, tag)
		}
	}
	matcher := language.NewMatcher(tags)
	tag, _ := language.MatchStrings(matcher, strings.TrimSpace(locale))
	return message.NewPrinter(tag)
}
