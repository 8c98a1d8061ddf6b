package validation

import (
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/julianstephens/habitchain/internal/constants"
	apperrors "github.com/julianstephens/habitchain/internal/errors"
	"github.com/julianstephens/habitchain/internal/models"
)

var forbiddenKeys = map[string]bool{
	"__proto__":   true,
	"constructor": true,
	"prototype":   true,
}

var (
	structValidator     *validator.Validate
	structValidatorOnce sync.Once
)

func getValidator() *validator.Validate {
	structValidatorOnce.Do(func() {
		structValidator = validator.New(validator.WithRequiredStructEnabled())
	})
	return structValidator
}

// ValidateImportTree walks a decoded JSON document and rejects it if it nests
// deeper than MaxImportDepth or contains a forbidden object key.
func ValidateImportTree(v any) error {
	return walkTree(v, 0, "$")
}

func walkTree(v any, depth int, path string) error {
	if depth > constants.MaxImportDepth {
		return apperrors.Validationf("document nests deeper than %d levels at %s", constants.MaxImportDepth, path)
	}
	switch node := v.(type) {
	case map[string]any:
		for k, child := range node {
			if forbiddenKeys[k] {
				return apperrors.Validationf("forbidden key %q at %s", k, path)
			}
			if err := walkTree(child, depth+1, path+"."+k); err != nil {
				return err
			}
		}
	case []any:
		for i, child := range node {
			if err := walkTree(child, depth+1, fmt.Sprintf("%s[%d]", path, i)); err != nil {
				return err
			}
		}
	}
	return nil
}

var (
	requiredStatsFields    = []string{"totalXp", "level", "streakDays", "longestStreak", "totalCompletions"}
	requiredSettingsBools  = []string{"notificationsEnabled", "darkMode"}
	requiredSettingsString = []string{"reminderTime"}
)

// ValidateImportShape checks the JSON types of fields whose absence would
// otherwise decode silently to zero values.
func ValidateImportShape(tree any) error {
	root, ok := tree.(map[string]any)
	if !ok {
		return apperrors.Validationf("document must be a JSON object")
	}

	if _, ok := root["chains"].([]any); !ok {
		return apperrors.Validationf("chains must be a list")
	}

	stats, ok := root["stats"].(map[string]any)
	if !ok {
		return apperrors.Validationf("stats must be an object")
	}
	for _, f := range requiredStatsFields {
		n, ok := stats[f].(float64)
		if !ok || n < 0 {
			return apperrors.Validationf("stats.%s must be a non-negative number", f)
		}
	}

	settings, ok := root["settings"].(map[string]any)
	if !ok {
		return apperrors.Validationf("settings must be an object")
	}
	for _, f := range requiredSettingsBools {
		if _, ok := settings[f].(bool); !ok {
			return apperrors.Validationf("settings.%s must be a boolean", f)
		}
	}
	for _, f := range requiredSettingsString {
		if _, ok := settings[f].(string); !ok {
			return apperrors.Validationf("settings.%s must be a string", f)
		}
	}

	if name, present := root["userName"]; present && name != nil {
		if _, ok := name.(string); !ok {
			return apperrors.Validationf("userName must be a string")
		}
	}
	return nil
}

// ValidateImportData runs struct tag validation over a decoded payload.
func ValidateImportData(p *models.ExportPayload) error {
	if p == nil {
		return apperrors.Validationf("payload is empty")
	}
	if err := getValidator().Struct(p); err != nil {
		return apperrors.Validationf("%s", describe(err))
	}
	return nil
}

// ValidateStruct runs struct tag validation over any model value.
func ValidateStruct(v any) error {
	if err := getValidator().Struct(v); err != nil {
		return apperrors.Validationf("%s", describe(err))
	}
	return nil
}

func describe(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
	}
	return strings.Join(parts, "; ")
}
