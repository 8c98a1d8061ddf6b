package models

// ExportPayload is the backup file format. Field names are shared with
// backups produced by the browser version of the app.
type ExportPayload struct {
	UserName   string       `json:"userName"`
	Chains     []HabitChain `json:"chains" validate:"required,dive"`
	Stats      *UserStats   `json:"stats" validate:"required"`
	Settings   *AppSettings `json:"settings" validate:"required"`
	ExportedAt string       `json:"exportedAt"`
	Version    string       `json:"version"`
	Integrity  bool         `json:"integrity"`
	Checksum   string       `json:"checksum,omitempty"`
}
