package entities

import "time"

const (
	StrategySkipDuplicates = "skip_duplicates"
	StrategyFillBlanks     = "fill_blanks"
	StrategyUpdateAll      = "update_all"
)

// ImportError — ошибка одной строки импорта. Строка с ошибкой не
// прерывает обработку остального файла.
type ImportError struct {
	Row     int    `json:"row"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ImportStats — итог одного прогона импорта.
type ImportStats struct {
	Total    int           `json:"total"`
	Created  int           `json:"created"`
	Updated  int           `json:"updated"`
	Skipped  int           `json:"skipped"`
	Failed   int           `json:"failed"`
	Errors   []ImportError `json:"errors,omitempty"`
	Started  time.Time     `json:"startTime"`
	Ended    time.Time     `json:"endTime"`
	Duration time.Duration `json:"duration"`
}

// ImportHistoryEntry — неизменяемая запись аудита об одном импорте.
type ImportHistoryEntry struct {
	ID        uint64        `json:"id"`
	FileName  string        `json:"fileName"`
	Strategy  string        `json:"strategy"`
	Total     int           `json:"total"`
	Created   int           `json:"created"`
	Updated   int           `json:"updated"`
	Skipped   int           `json:"skipped"`
	Failed    int           `json:"failed"`
	Errors    []ImportError `json:"errors,omitempty"`
	StartedAt time.Time     `json:"startedAt"`
	EndedAt   time.Time     `json:"endedAt"`
	CreatedAt time.Time     `json:"createdAt"`
}
