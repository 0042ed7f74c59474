package dto

import (
	"time"

	"return-unpack-system/internal/entities"
)

// ImportOptionsDTO — параметры импорта файла.
type ImportOptionsDTO struct {
	Strategy string `json:"strategy" form:"strategy" validate:"omitempty,oneof=skip_duplicates fill_blanks update_all"`
}

// ImportResultDTO — итог импорта для клиента.
type ImportResultDTO struct {
	FileName string                 `json:"fileName"`
	Strategy string                 `json:"strategy"`
	Stats    entities.ImportStats   `json:"stats"`
	Errors   []entities.ImportError `json:"errors,omitempty"`
}

// ListOrdersDTO — параметры постраничной выборки.
type ListOrdersDTO struct {
	Page      int    `query:"page"`
	PageSize  int    `query:"pageSize"`
	SortField string `query:"sortBy"`
	SortOrder string `query:"sortOrder" validate:"omitempty,oneof=asc desc ASC DESC"`
}

// CleanupRequestDTO — очистка по возрасту.
type CleanupRequestDTO struct {
	Days          int  `json:"days" validate:"omitempty,min=1"`
	IncludeVideos bool `json:"includeVideos"`
}

// CleanupResultDTO — итог очистки.
type CleanupResultDTO struct {
	Found         int       `json:"found"`
	Deleted       int       `json:"deleted"`
	VideosDeleted int       `json:"videosDeleted"`
	Cutoff        time.Time `json:"cutoff"`
}

// VideoMetaDTO — метаданные загружаемого видео распаковки.
type VideoMetaDTO struct {
	Duration float64 `form:"duration"`
}
