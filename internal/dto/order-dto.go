package dto

import (
	"time"

	"github.com/aarondl/null/v8"

	"return-unpack-system/internal/entities"
)

// OrderDTO — представление заказа на границе API. Историческое поле
// damageType дублирует damage только здесь, внутри оно одно.
type OrderDTO struct {
	ID             uint64                 `json:"id"`
	OrderNumber    string                 `json:"orderNumber"`
	ExpressNumber  string                 `json:"expressNumber"`
	TrackingNumber string                 `json:"trackingNumber"`
	SkuInfo        string                 `json:"skuInfo"`
	ShopName       string                 `json:"shopName"`
	Notes          string                 `json:"notes"`
	Status         string                 `json:"status"`
	Damage         string                 `json:"damage"`
	DamageType     string                 `json:"damageType"`
	ImportTime     time.Time              `json:"importTime"`
	ScanTime       *time.Time             `json:"scanTime"`
	VideoFile      string                 `json:"videoFile,omitempty"`
	VideoRecorded  bool                   `json:"videoRecorded"`
	VideoDuration  float64                `json:"videoDuration,omitempty"`
	VideoSize      int64                  `json:"videoSize,omitempty"`
	HasVideo       bool                   `json:"hasVideo"`
	Extra          map[string]interface{} `json:"extra,omitempty"`
	CreatedAt      time.Time              `json:"createdAt"`
	UpdatedAt      time.Time              `json:"updatedAt"`
}

func OrderToDTO(order *entities.Order) OrderDTO {
	return OrderDTO{
		ID:             order.ID,
		OrderNumber:    order.OrderNumber,
		ExpressNumber:  order.ExpressNumber,
		TrackingNumber: order.TrackingNumber,
		SkuInfo:        order.SkuInfo,
		ShopName:       order.ShopName,
		Notes:          order.Notes,
		Status:         string(order.Status),
		Damage:         string(order.Damage),
		DamageType:     string(order.Damage),
		ImportTime:     order.ImportTime,
		ScanTime:       order.ScanTime,
		VideoFile:      order.VideoFile,
		VideoRecorded:  order.VideoRecorded,
		VideoDuration:  order.VideoDuration,
		VideoSize:      order.VideoSize,
		HasVideo:       order.HasVideo(),
		Extra:          order.Extra,
		CreatedAt:      order.CreatedAt,
		UpdatedAt:      order.UpdatedAt,
	}
}

func OrdersToDTO(orders []entities.Order) []OrderDTO {
	result := make([]OrderDTO, 0, len(orders))
	for i := range orders {
		result = append(result, OrderToDTO(&orders[i]))
	}
	return result
}

// CreateOrderDTO — ручное создание записи или запись по скану.
type CreateOrderDTO struct {
	OrderNumber    string `json:"orderNumber" validate:"required"`
	ExpressNumber  string `json:"expressNumber"`
	TrackingNumber string `json:"trackingNumber"`
	SkuInfo        string `json:"skuInfo"`
	ShopName       string `json:"shopName"`
	Notes          string `json:"notes"`
	Status         string `json:"status" validate:"omitempty"`
	Damage         string `json:"damage" validate:"omitempty"`
	ImportTime     string `json:"importTime" validate:"omitempty"`
	ScanTime       string `json:"scanTime" validate:"omitempty"`
}

// ToRaw переводит DTO в сырую строку для нормализатора; пустые поля не
// участвуют.
func (d CreateOrderDTO) ToRaw() map[string]interface{} {
	raw := map[string]interface{}{"orderNumber": d.OrderNumber}
	put := func(key, value string) {
		if value != "" {
			raw[key] = value
		}
	}
	put("expressNumber", d.ExpressNumber)
	put("trackingNumber", d.TrackingNumber)
	put("skuInfo", d.SkuInfo)
	put("shopName", d.ShopName)
	put("notes", d.Notes)
	put("status", d.Status)
	put("damage", d.Damage)
	put("importTime", d.ImportTime)
	put("scanTime", d.ScanTime)
	return raw
}

// UpdateOrderDTO — частичное обновление: в patch попадают только
// присланные поля, null-обёртки отличают "не прислано" от пустого.
type UpdateOrderDTO struct {
	ExpressNumber  null.String  `json:"expressNumber"`
	TrackingNumber null.String  `json:"trackingNumber"`
	SkuInfo        null.String  `json:"skuInfo"`
	ShopName       null.String  `json:"shopName"`
	Notes          null.String  `json:"notes"`
	Status         null.String  `json:"status"`
	Damage         null.String  `json:"damage"`
	ImportTime     null.String  `json:"importTime"`
	ScanTime       null.String  `json:"scanTime"`
	VideoFile      null.String  `json:"videoFile"`
	VideoRecorded  null.Bool    `json:"videoRecorded"`
	VideoDuration  null.Float64 `json:"videoDuration"`
	VideoSize      null.Int64   `json:"videoSize"`
}

func (d UpdateOrderDTO) ToPatch() map[string]interface{} {
	patch := map[string]interface{}{}
	if d.ExpressNumber.Valid {
		patch["expressNumber"] = d.ExpressNumber.String
	}
	if d.TrackingNumber.Valid {
		patch["trackingNumber"] = d.TrackingNumber.String
	}
	if d.SkuInfo.Valid {
		patch["skuInfo"] = d.SkuInfo.String
	}
	if d.ShopName.Valid {
		patch["shopName"] = d.ShopName.String
	}
	if d.Notes.Valid {
		patch["notes"] = d.Notes.String
	}
	if d.Status.Valid {
		patch["status"] = d.Status.String
	}
	if d.Damage.Valid {
		patch["damage"] = d.Damage.String
	}
	if d.ImportTime.Valid {
		patch["importTime"] = d.ImportTime.String
	}
	if d.ScanTime.Valid {
		patch["scanTime"] = d.ScanTime.String
	}
	if d.VideoFile.Valid {
		patch["videoFile"] = d.VideoFile.String
	}
	if d.VideoRecorded.Valid {
		patch["videoRecorded"] = d.VideoRecorded.Bool
	}
	if d.VideoDuration.Valid {
		patch["videoDuration"] = d.VideoDuration.Float64
	}
	if d.VideoSize.Valid {
		patch["videoSize"] = d.VideoSize.Int64
	}
	return patch
}
