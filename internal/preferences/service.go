// Package preferences stores the device's display settings.
package preferences

import (
	"context"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"
	"golang.org/x/text/language"

	"github.com/chamanbahar/cbm-sales/internal/platform/cache"
	"github.com/chamanbahar/cbm-sales/internal/shared"
)

const (
	fieldLanguage         = "language"
	fieldDarkTheme        = "dark_theme"
	fieldLanguageSelected = "language_selected"
)

// Supported lists the interface languages.
var Supported = []language.Tag{language.English, language.Hindi}

// Settings are the persisted display preferences.
type Settings struct {
	Language         string `json:"language"`
	DarkTheme        bool   `json:"dark_theme"`
	LanguageSelected bool   `json:"language_selected"`
}

// Defaults is what an untouched device reports.
func Defaults() Settings {
	return Settings{Language: language.English.String()}
}

// UpdateSettingsRequest changes the fields that are set.
type UpdateSettingsRequest struct {
	Language         *string `json:"language,omitempty"`
	DarkTheme        *bool   `json:"dark_theme,omitempty"`
	LanguageSelected *bool   `json:"language_selected,omitempty"`
}

// Service reads and writes the preferences hash.
type Service struct {
	client *redis.Client
	key    string
}

// NewService uses the hash <prefix>:preferences.
func NewService(client *redis.Client, prefix string) *Service {
	return &Service{client: client, key: cache.Key(prefix, "preferences")}
}

func (s *Service) Get(ctx context.Context) (Settings, error) {
	values, err := s.client.HGetAll(ctx, s.key).Result()
	if err != nil {
		return Settings{}, shared.Storage("read preferences", err)
	}
	out := Defaults()
	if lang := values[fieldLanguage]; lang != "" {
		out.Language = lang
	}
	out.DarkTheme = parseBool(values[fieldDarkTheme])
	out.LanguageSelected = parseBool(values[fieldLanguageSelected])
	return out, nil
}

// SetLanguage stores a supported language and marks it as chosen.
func (s *Service) SetLanguage(ctx context.Context, lang string) error {
	code, err := normalizeLanguage(lang)
	if err != nil {
		return err
	}
	return s.write(ctx, "write language", fieldLanguage, code, fieldLanguageSelected, "1")
}

func (s *Service) SetTheme(ctx context.Context, dark bool) error {
	return s.write(ctx, "write theme", fieldDarkTheme, formatBool(dark))
}

func (s *Service) SetLanguageSelected(ctx context.Context, selected bool) error {
	return s.write(ctx, "write language selection", fieldLanguageSelected, formatBool(selected))
}

// Update applies req atomically and returns the resulting settings.
func (s *Service) Update(ctx context.Context, req UpdateSettingsRequest) (Settings, error) {
	var values []any
	if req.Language != nil && req.LanguageSelected != nil && !*req.LanguageSelected {
		return Settings{}, shared.NewValidationError("language_selected", "cannot be false when language is set")
	}
	if req.Language != nil {
		code, err := normalizeLanguage(*req.Language)
		if err != nil {
			return Settings{}, err
		}
		values = append(values, fieldLanguage, code, fieldLanguageSelected, "1")
	}
	if req.LanguageSelected != nil {
		values = append(values, fieldLanguageSelected, formatBool(*req.LanguageSelected))
	}
	if req.DarkTheme != nil {
		values = append(values, fieldDarkTheme, formatBool(*req.DarkTheme))
	}
	if len(values) > 0 {
		if err := s.write(ctx, "write preferences", values...); err != nil {
			return Settings{}, err
		}
	}
	return s.Get(ctx)
}

func (s *Service) write(ctx context.Context, op string, values ...any) error {
	if err := s.client.HSet(ctx, s.key, values...).Err(); err != nil {
		return shared.Storage(op, err)
	}
	return nil
}

func normalizeLanguage(raw string) (string, error) {
	tag, err := language.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", shared.NewValidationError("language", "is not a language tag")
	}
	base, _ := tag.Base()
	for _, supported := range Supported {
		if want, _ := supported.Base(); want == base {
			return base.String(), nil
		}
	}
	return "", shared.NewValidationError("language", "is not supported")
}

func parseBool(raw string) bool {
	v, err := strconv.ParseBool(raw)
	return err == nil && v
}

func formatBool(v bool) string {
	if v {
		return "1"
	}
	return "0"
}
