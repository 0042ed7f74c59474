// Package normalize приводит произвольные входные строки (сканер, импорт
// из Excel/CSV/JSON, ручной ввод) к канонической записи заказа. Все
// функции пакета чистые: никакого доступа к хранилищу и часов внутри.
package normalize

import (
	"time"

	"return-unpack-system/internal/entities"
	apperrors "return-unpack-system/pkg/errors"
)

// OrderNumber достаёт и проверяет бизнес-ключ из сырой строки.
func OrderNumber(raw map[string]interface{}) (string, error) {
	value, ok := lookup(raw, "orderNumber")
	if !ok || value == nil {
		return "", apperrors.ErrEmptyOrderNumber
	}
	switch value.(type) {
	case string, float64, int, int64:
	default:
		return "", apperrors.ErrInvalidOrderNumber
	}
	orderNumber := asString(value)
	if orderNumber == "" {
		return "", apperrors.ErrEmptyOrderNumber
	}
	return orderNumber, nil
}

// ValidateOrderNumber — проверка уже извлечённого ключа.
func ValidateOrderNumber(orderNumber string) error {
	if orderNumber == "" {
		return apperrors.ErrEmptyOrderNumber
	}
	return nil
}

// Normalize строит каноническую запись из сырой строки. При existing != nil
// (путь обновления) createdAt закрепляется за существующей записью.
// Порядок разрешения времени: явный importTime > явный scanTime > now;
// scanTime остаётся пустым, пока его не принесёт видео или явное значение.
func Normalize(raw map[string]interface{}, existing *entities.Order, now time.Time) entities.Order {
	order := entities.Order{
		Status:    entities.StatusPending,
		Damage:    entities.DamageIntact,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if v, ok := stringField(raw, "orderNumber"); ok {
		order.OrderNumber = v
	}
	if v, ok := stringField(raw, "expressNumber"); ok {
		order.ExpressNumber = v
	}
	if v, ok := stringField(raw, "trackingNumber"); ok {
		order.TrackingNumber = v
	}
	if v, ok := stringField(raw, "skuInfo"); ok {
		order.SkuInfo = v
	}
	if v, ok := stringField(raw, "shopName"); ok {
		order.ShopName = v
	}
	if v, ok := stringField(raw, "notes"); ok {
		order.Notes = v
	}
	if v, ok := stringField(raw, "status"); ok && v != "" {
		order.Status = CanonicalStatus(v)
	}
	if v, ok := stringField(raw, "damage"); ok && v != "" {
		order.Damage = CanonicalDamage(v)
	}

	if v, ok := stringField(raw, "videoFile"); ok {
		order.VideoFile = v
	}
	if v, ok := boolField(raw, "videoRecorded"); ok {
		order.VideoRecorded = v
	}
	if v, ok := timeField(raw, "videoRecordedAt"); ok {
		order.VideoRecordedAt = v
	}
	if v, ok := floatField(raw, "videoDuration"); ok {
		order.VideoDuration = v
	}
	if v, ok := int64Field(raw, "videoSize"); ok {
		order.VideoSize = v
	}

	importTime, _ := timeField(raw, "importTime")
	scanTime, _ := timeField(raw, "scanTime")
	switch {
	case importTime != nil:
		order.ImportTime = *importTime
	case scanTime != nil:
		order.ImportTime = *scanTime
	default:
		order.ImportTime = now
	}
	if scanTime != nil {
		order.ScanTime = scanTime
	} else if order.VideoRecordedAt != nil {
		order.ScanTime = order.VideoRecordedAt
	}

	if createdAt, _ := timeField(raw, "createdAt"); createdAt != nil {
		order.CreatedAt = *createdAt
	}
	if existing != nil {
		order.CreatedAt = existing.CreatedAt
	}

	order.Extra = extraFields(raw)
	return order
}

// ApplyPatch накладывает patch на существующую запись: побеждают только
// присутствующие в patch ключи. id, orderNumber и createdAt всегда
// сохраняются от существующей записи, updatedAt ставится в now. Если patch
// сообщает о записанном видео, а scanTime ещё пуст — scanTime ставится в now.
func ApplyPatch(existing entities.Order, raw map[string]interface{}, now time.Time) entities.Order {
	merged := existing

	if v, ok := stringField(raw, "expressNumber"); ok {
		merged.ExpressNumber = v
	}
	if v, ok := stringField(raw, "trackingNumber"); ok {
		merged.TrackingNumber = v
	}
	if v, ok := stringField(raw, "skuInfo"); ok {
		merged.SkuInfo = v
	}
	if v, ok := stringField(raw, "shopName"); ok {
		merged.ShopName = v
	}
	if v, ok := stringField(raw, "notes"); ok {
		merged.Notes = v
	}
	if v, ok := stringField(raw, "status"); ok && v != "" {
		merged.Status = CanonicalStatus(v)
	}
	if v, ok := stringField(raw, "damage"); ok && v != "" {
		merged.Damage = CanonicalDamage(v)
	}

	if v, ok := stringField(raw, "videoFile"); ok {
		merged.VideoFile = v
	}
	videoRecorded, videoRecordedPresent := boolField(raw, "videoRecorded")
	if videoRecordedPresent {
		merged.VideoRecorded = videoRecorded
	}
	if v, ok := timeField(raw, "videoRecordedAt"); ok && v != nil {
		merged.VideoRecordedAt = v
	}
	if v, ok := floatField(raw, "videoDuration"); ok {
		merged.VideoDuration = v
	}
	if v, ok := int64Field(raw, "videoSize"); ok {
		merged.VideoSize = v
	}

	if v, ok := timeField(raw, "importTime"); ok && v != nil {
		merged.ImportTime = *v
	}
	if v, ok := timeField(raw, "scanTime"); ok && v != nil {
		merged.ScanTime = v
	}
	if merged.ScanTime == nil && merged.VideoRecordedAt != nil {
		merged.ScanTime = merged.VideoRecordedAt
	}
	if videoRecordedPresent && videoRecorded && merged.ScanTime == nil {
		scanTime := now
		merged.ScanTime = &scanTime
	}

	if extras := extraFields(raw); len(extras) > 0 {
		if merged.Extra == nil {
			merged.Extra = make(map[string]interface{}, len(extras))
		} else {
			copied := make(map[string]interface{}, len(merged.Extra)+len(extras))
			for k, v := range merged.Extra {
				copied[k] = v
			}
			merged.Extra = copied
		}
		for k, v := range extras {
			merged.Extra[k] = v
		}
	}

	merged.ID = existing.ID
	merged.OrderNumber = existing.OrderNumber
	merged.CreatedAt = existing.CreatedAt
	merged.UpdatedAt = now
	return merged
}

func extraFields(raw map[string]interface{}) map[string]interface{} {
	var extras map[string]interface{}
	for key, value := range raw {
		if _, consumed := consumedKeys[key]; consumed {
			continue
		}
		if extras == nil {
			extras = make(map[string]interface{})
		}
		extras[key] = value
	}
	return extras
}
