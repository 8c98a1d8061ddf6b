package validation

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/julianstephens/habitchain/internal/errors"
	"github.com/julianstephens/habitchain/internal/models"
)

func decode(t *testing.T, s string) any {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal([]byte(s), &v))
	return v
}

const validDoc = `{
	"userName": "Ada",
	"chains": [{"id": "abcdefghij12", "name": "Morning", "habits": [{"id": "habit000001", "name": "Wake"}]}],
	"stats": {"totalXp": 0, "level": 1, "streakDays": 0, "longestStreak": 0, "totalCompletions": 0, "badges": []},
	"settings": {"notificationsEnabled": false, "darkMode": true, "reminderTime": "09:00"}
}`

func TestValidateImportTree(t *testing.T) {
	assert.NoError(t, ValidateImportTree(decode(t, validDoc)))

	for _, key := range []string{"__proto__", "constructor", "prototype"} {
		doc := `{"chains": [{"habits": [{"` + key + `": {}}]}]}`
		err := ValidateImportTree(decode(t, doc))
		assert.ErrorIs(t, err, apperrors.ErrValidation, key)
		assert.Contains(t, err.Error(), key)
	}
}

func TestValidateImportTreeDepth(t *testing.T) {
	nest := func(n int) string {
		return strings.Repeat(`{"a":`, n) + "1" + strings.Repeat("}", n)
	}
	assert.NoError(t, ValidateImportTree(decode(t, nest(32))))
	assert.ErrorIs(t, ValidateImportTree(decode(t, nest(33))), apperrors.ErrValidation)

	deepList := strings.Repeat("[", 40) + strings.Repeat("]", 40)
	assert.Error(t, ValidateImportTree(decode(t, deepList)))
}

func TestValidateImportShape(t *testing.T) {
	assert.NoError(t, ValidateImportShape(decode(t, validDoc)))

	tests := []struct {
		name string
		doc  string
	}{
		{"not an object", `[]`},
		{"chains missing", `{"stats": {}, "settings": {}}`},
		{"chains not list", `{"chains": {}, "stats": {}, "settings": {}}`},
		{"stats missing field", `{"chains": [], "stats": {"totalXp": 0}, "settings": {}}`},
		{"stats negative", `{"chains": [], "stats": {"totalXp": -1, "level": 1, "streakDays": 0, "longestStreak": 0, "totalCompletions": 0}, "settings": {}}`},
		{"stats string", `{"chains": [], "stats": {"totalXp": "5", "level": 1, "streakDays": 0, "longestStreak": 0, "totalCompletions": 0}, "settings": {}}`},
		{"settings bool wrong type", `{"chains": [], "stats": {"totalXp": 0, "level": 1, "streakDays": 0, "longestStreak": 0, "totalCompletions": 0}, "settings": {"notificationsEnabled": "yes", "darkMode": false, "reminderTime": "09:00"}}`},
		{"settings reminder missing", `{"chains": [], "stats": {"totalXp": 0, "level": 1, "streakDays": 0, "longestStreak": 0, "totalCompletions": 0}, "settings": {"notificationsEnabled": true, "darkMode": false}}`},
		{"userName number", `{"userName": 5, "chains": [], "stats": {"totalXp": 0, "level": 1, "streakDays": 0, "longestStreak": 0, "totalCompletions": 0}, "settings": {"notificationsEnabled": true, "darkMode": false, "reminderTime": "09:00"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, ValidateImportShape(decode(t, tt.doc)), apperrors.ErrValidation)
		})
	}
}

func TestValidateImportData(t *testing.T) {
	var p models.ExportPayload
	require.NoError(t, json.Unmarshal([]byte(validDoc), &p))
	assert.NoError(t, ValidateImportData(&p))

	p.Chains[0].Name = strings.Repeat("n", 101)
	err := ValidateImportData(&p)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Contains(t, err.Error(), "Name")

	p.Chains[0].Name = "Morning"
	p.Chains[0].Habits[0].Name = ""
	assert.Error(t, ValidateImportData(&p))

	p.Chains[0].Habits[0].Name = "Wake"
	p.Settings.SoundVolume = 2
	assert.Error(t, ValidateImportData(&p))

	assert.Error(t, ValidateImportData(nil))
}

func TestValidateImportDataMissingSections(t *testing.T) {
	var p models.ExportPayload
	require.NoError(t, json.Unmarshal([]byte(`{"chains": []}`), &p))
	assert.ErrorIs(t, ValidateImportData(&p), apperrors.ErrValidation)
}
