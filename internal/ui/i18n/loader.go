// loader.go — чтение встроенных JSON-каталогов переводов.
package i18n

import (
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
)

// LoadFromEmbedFS регистрирует в bundle все каталоги locales/*.json.
// Язык определяется именем файла: locales/ru.json → ru. Добавление языка —
// это новый файл в locales/, без изменений кода.
func LoadFromEmbedFS(bundle *Bundle, logger *slog.Logger) error {
	entries, err := fs.ReadDir(LocaleFS, "locales")
	if err != nil {
		return fmt.Errorf("i18n: каталог locales недоступен: %w", err)
	}

	var langs []string
	for _, entry := range entries {
		name := entry.Name()
		lang, ok := strings.CutSuffix(name, ".json")
		if !ok {
			continue
		}

		data, err := LocaleFS.ReadFile("locales/" + name)
		if err != nil {
			return fmt.Errorf("i18n: чтение locales/%s: %w", name, err)
		}
		if err := bundle.LoadMessages(lang, data); err != nil {
			return err
		}
		langs = append(langs, lang)
	}

	if len(langs) == 0 {
		return fmt.Errorf("i18n: в locales не найдено ни одного каталога")
	}

	logger.Info("Каталоги переводов загружены",
		slog.String("languages", strings.Join(langs, ", ")),
	)
	return nil
}
