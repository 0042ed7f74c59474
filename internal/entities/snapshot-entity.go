package entities

import "time"

// SettingsEntry — произвольная пара ключ/значение служебной коллекции.
type SettingsEntry struct {
	Key       string      `json:"key"`
	Value     interface{} `json:"value"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// Snapshot — полный снимок всех четырёх коллекций хранилища.
type Snapshot struct {
	ID            string              `json:"id"`
	Timestamp     time.Time           `json:"timestamp"`
	SchemaVersion int                 `json:"schemaVersion"`
	Collections   SnapshotCollections `json:"collections"`
}

type SnapshotCollections struct {
	Orders        []Order              `json:"orders"`
	Stats         []DailyStats         `json:"stats"`
	Settings      []SettingsEntry      `json:"settings"`
	ImportHistory []ImportHistoryEntry `json:"importHistory"`
}
