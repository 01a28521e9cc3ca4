package i18n

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sync"

	"gopkg.in/yaml.v3"
)

const DefaultLocale = "en"

type Translations map[string]string

//go:embed locales
var embedded embed.FS

var (
	locales = make(map[string]Translations)
	mu      sync.RWMutex
)

func init() {
	sub, err := fs.Sub(embedded, "locales")
	if err != nil {
		panic(err)
	}
	if err := loadFS(sub); err != nil {
		panic(err)
	}
}

// LoadTranslations overlays the locales found under localePath on top of the
// embedded catalog. Keys missing from the override keep their embedded copy.
func LoadTranslations(localePath string) error {
	return loadFS(os.DirFS(localePath))
}

func loadFS(fsys fs.FS) error {
	mu.Lock()
	defer mu.Unlock()

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		locale := entry.Name()
		filePath := path.Join(locale, "notifications.yaml")

		data, err := fs.ReadFile(fsys, filePath)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return err
		}

		var config struct {
			Notifications Translations `yaml:"NOTIFICATIONS"`
		}
		if err := yaml.Unmarshal(data, &config); err != nil {
			return fmt.Errorf("failed to parse %s: %w", filePath, err)
		}

		trans, ok := locales[locale]
		if !ok {
			trans = make(Translations)
			locales[locale] = trans
		}
		for k, v := range config.Notifications {
			trans[k] = v
		}
	}

	return nil
}

func Translate(locale, key string) string {
	mu.RLock()
	defer mu.RUnlock()

	if trans, ok := locales[locale]; ok {
		if val, ok := trans[key]; ok {
			return val
		}
	}

	if locale != DefaultLocale {
		if trans, ok := locales[DefaultLocale]; ok {
			if val, ok := trans[key]; ok {
				return val
			}
		}
	}

	return key
}

// Format translates key and applies args to it as a fmt template.
func Format(locale, key string, args ...any) string {
	return fmt.Sprintf(Translate(locale, key), args...)
}
