package repository

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/habitchain/internal/constants"
	apperrors "github.com/julianstephens/habitchain/internal/errors"
	"github.com/julianstephens/habitchain/internal/idgen"
	"github.com/julianstephens/habitchain/internal/logger"
	"github.com/julianstephens/habitchain/internal/models"
	"github.com/julianstephens/habitchain/internal/securestore"
	"github.com/julianstephens/habitchain/internal/utils"
	"github.com/julianstephens/habitchain/internal/validation"
)

// ExportFileName returns the conventional backup file name for day t.
func ExportFileName(t time.Time) string {
	return constants.ExportFilePrefix + t.Format(constants.DateFormat) + constants.ExportFileSuffix
}

// ExportData assembles every collection into a checksummed payload.
func (r *Repository) ExportData() (models.ExportPayload, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	chains, err := r.loadChains()
	if err != nil {
		return models.ExportPayload{}, err
	}
	stats, err := r.loadStats()
	if err != nil {
		return models.ExportPayload{}, err
	}
	settings, err := r.loadSettings()
	if err != nil {
		return models.ExportPayload{}, err
	}
	userName, err := r.loadUserName()
	if err != nil {
		return models.ExportPayload{}, err
	}

	payload := models.ExportPayload{
		UserName:   userName,
		Chains:     chains,
		Stats:      &stats,
		Settings:   &settings,
		ExportedAt: utils.FormatTimestamp(r.now()),
		Version:    constants.ExportVersion,
		Integrity:  true,
	}
	body, err := securestore.Marshal(payload)
	if err != nil {
		return models.ExportPayload{}, fmt.Errorf("failed to serialize export: %w", err)
	}
	if len(body) > constants.MaxExportBytes {
		return models.ExportPayload{}, fmt.Errorf("%w: export is %d bytes", apperrors.ErrSizeLimit, len(body))
	}
	payload.Checksum = r.store.Checksummer().Sum(string(body))
	return payload, nil
}

// ExportJSON renders ExportData as indented JSON suitable for a backup file.
func (r *Repository) ExportJSON() ([]byte, error) {
	payload, err := r.ExportData()
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent(constants.ExportIndentPrefix, constants.ExportIndent)
	if err := enc.Encode(payload); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ImportData replaces all stored data with the contents of an export. It
// returns false, logging the reason, if the import is rate limited or any
// check fails; nothing is written in that case.
func (r *Repository) ImportData(data string) bool {
	if !r.allow(constants.ActionDataImport, r.limits.DataImport) {
		logger.Error("Import rejected", "error", apperrors.ErrRateLimited)
		return false
	}
	if err := r.importData([]byte(data)); err != nil {
		logger.Error("Import rejected", "error", err)
		return false
	}
	logger.Info("Import completed")
	r.notify()
	return true
}

func (r *Repository) importData(raw []byte) error {
	if len(raw) > constants.MaxExportBytes {
		return fmt.Errorf("%w: import is %d bytes", apperrors.ErrSizeLimit, len(raw))
	}

	var tree any
	if err := json.Unmarshal(raw, &tree); err != nil {
		return apperrors.Validationf("not valid JSON: %v", err)
	}
	if err := validation.ValidateImportTree(tree); err != nil {
		return err
	}
	if err := validation.ValidateImportShape(tree); err != nil {
		return err
	}
	root := tree.(map[string]any)
	_, hasUserName := root["userName"]
	settingsFields, _ := root["settings"].(map[string]any)

	var payload models.ExportPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return apperrors.Validationf("unexpected field types: %v", err)
	}
	if err := validation.ValidateImportData(&payload); err != nil {
		return err
	}

	if payload.Checksum != "" {
		body, err := stripChecksum(raw)
		if err != nil {
			return err
		}
		if r.store.Checksummer().Sum(body) != payload.Checksum {
			return fmt.Errorf("%w: export checksum does not match its contents", apperrors.ErrIntegrity)
		}
	}

	chains, err := r.cleanImportedChains(payload.Chains)
	if err != nil {
		return err
	}

	stats := *payload.Stats
	stats.NormalizeBadges()
	stats.LongestStreak = max(stats.LongestStreak, stats.StreakDays)
	stats.Level = models.LevelForXP(stats.TotalXP)

	settings := *payload.Settings
	models.ApplyAbsentSettingDefaults(&settings, settingsFields)
	if err := settings.Validate(); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}

	items := map[string]any{
		constants.KeyChains:   chains,
		constants.KeyStats:    stats,
		constants.KeySettings: settings,
	}
	if hasUserName {
		userName, err := validation.CleanField("user name", payload.UserName, constants.MaxUserNameLen, false)
		if err != nil {
			return err
		}
		items[constants.KeyUserName] = userName
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.store.SetItems(items)
}

// cleanImportedChains sanitizes every text field and repairs structure:
// malformed or duplicate ids are replaced, positions made dense and streak
// bounds restored.
func (r *Repository) cleanImportedChains(in []models.HabitChain) ([]models.HabitChain, error) {
	chains := make([]models.HabitChain, len(in))
	copy(chains, in)
	ids := r.idGenerator(nil)
	seen := make(map[string]bool)
	fresh := func(id string) string {
		if !idgen.Valid(id) || seen[id] {
			id = ids.Generate()
		}
		seen[id] = true
		return id
	}

	for i := range chains {
		c := &chains[i]
		name, description, err := cleanChainText(c.Name, c.Description)
		if err != nil {
			return nil, fmt.Errorf("chain %d: %w", i, err)
		}
		c.Name = name
		c.Description = description
		c.ID = fresh(c.ID)
		c.Habits = append([]models.Habit(nil), c.Habits...)
		for j := range c.Habits {
			if err := cleanHabit(&c.Habits[j]); err != nil {
				return nil, fmt.Errorf("chain %q habit %d: %w", c.Name, j, err)
			}
			c.Habits[j].ID = fresh(c.Habits[j].ID)
		}
		c.Reindex()
		if c.AllCompleted() {
			c.ResetCycle()
		}
		c.LongestStreak = max(c.LongestStreak, c.Streak)
		if c.CreatedAt == "" {
			c.CreatedAt = utils.FormatTimestamp(r.now())
		}
	}
	return chains, nil
}

// stripChecksum re-encodes a JSON object compactly, in its original key
// order, without its top-level "checksum" member. This is the form export
// checksums are computed over, and it is unaffected by indentation.
func stripChecksum(raw []byte) (string, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return "", apperrors.Validationf("not valid JSON: %v", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return "", apperrors.Validationf("document must be a JSON object")
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return "", apperrors.Validationf("not valid JSON: %v", err)
		}
		key, ok := tok.(string)
		if !ok {
			return "", errors.New("unexpected token in object key position")
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return "", apperrors.Validationf("not valid JSON: %v", err)
		}
		if key == "checksum" {
			continue
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false
		encodedKey, err := securestore.Marshal(key)
		if err != nil {
			return "", err
		}
		buf.Write(encodedKey)
		buf.WriteByte(':')
		if err := json.Compact(&buf, value); err != nil {
			return "", err
		}
	}
	buf.WriteByte('}')
	return buf.String(), nil
}
