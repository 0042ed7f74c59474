package normalize

import "return-unpack-system/internal/entities"

// FillBlanks — стратегия импорта "fill_blanks": значение из входящей
// записи попадает в результат только там, где у существующей записи поле
// пустое. Хранилище считается авторитетным, импорт — дополняющим.
func FillBlanks(existing, incoming entities.Order) entities.Order {
	merged := existing

	if merged.ExpressNumber == "" {
		merged.ExpressNumber = incoming.ExpressNumber
	}
	if merged.TrackingNumber == "" {
		merged.TrackingNumber = incoming.TrackingNumber
	}
	if merged.SkuInfo == "" {
		merged.SkuInfo = incoming.SkuInfo
	}
	if merged.ShopName == "" {
		merged.ShopName = incoming.ShopName
	}
	if merged.Notes == "" {
		merged.Notes = incoming.Notes
	}
	if merged.Status == "" {
		merged.Status = incoming.Status
	}
	if merged.Damage == "" {
		merged.Damage = incoming.Damage
	}
	if merged.ImportTime.IsZero() {
		merged.ImportTime = incoming.ImportTime
	}
	if merged.ScanTime == nil {
		merged.ScanTime = incoming.ScanTime
	}
	if merged.VideoFile == "" {
		merged.VideoFile = incoming.VideoFile
	}
	if !merged.VideoRecorded {
		merged.VideoRecorded = incoming.VideoRecorded
	}
	if merged.VideoRecordedAt == nil {
		merged.VideoRecordedAt = incoming.VideoRecordedAt
	}
	if merged.VideoDuration == 0 {
		merged.VideoDuration = incoming.VideoDuration
	}
	if merged.VideoSize == 0 {
		merged.VideoSize = incoming.VideoSize
	}

	if len(incoming.Extra) > 0 {
		copied := make(map[string]interface{}, len(merged.Extra)+len(incoming.Extra))
		for k, v := range merged.Extra {
			copied[k] = v
		}
		for k, v := range incoming.Extra {
			if current, ok := copied[k]; !ok || isEmptyValue(current) {
				copied[k] = v
			}
		}
		merged.Extra = copied
	}

	return merged
}

// Overwrite — стратегия импорта "update_all": входящая запись полностью
// перекрывает существующую, кроме неизменяемых id, orderNumber и createdAt.
func Overwrite(existing, incoming entities.Order) entities.Order {
	merged := incoming
	merged.ID = existing.ID
	merged.OrderNumber = existing.OrderNumber
	merged.CreatedAt = existing.CreatedAt

	// Собственные дополнительные поля записи не пропадают, но входящие
	// значения побеждают.
	if len(existing.Extra) > 0 {
		copied := make(map[string]interface{}, len(existing.Extra)+len(incoming.Extra))
		for k, v := range existing.Extra {
			copied[k] = v
		}
		for k, v := range incoming.Extra {
			copied[k] = v
		}
		merged.Extra = copied
	}

	return merged
}
