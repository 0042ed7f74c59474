package entities

import "time"

type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusProcessed  OrderStatus = "processed"
	StatusInProgress OrderStatus = "in_progress"
	StatusCancelled  OrderStatus = "cancelled"
)

type DamageLevel string

const (
	DamageIntact       DamageLevel = "intact"
	DamageDamaged      DamageLevel = "damaged"
	DamageMissingParts DamageLevel = "missing_parts"
	DamageOther        DamageLevel = "other"
)

// Order — запись о распаковке возврата. Бизнес-ключом служит OrderNumber,
// суррогатный ID назначается хранилищем и наружу смысла не несёт.
type Order struct {
	ID             uint64      `json:"id"`
	OrderNumber    string      `json:"orderNumber"`
	ExpressNumber  string      `json:"expressNumber"`
	TrackingNumber string      `json:"trackingNumber"`
	SkuInfo        string      `json:"skuInfo"`
	ShopName       string      `json:"shopName"`
	Notes          string      `json:"notes"`
	Status         OrderStatus `json:"status"`
	Damage         DamageLevel `json:"damage"`

	// ImportTime — когда мы узнали о заказе; ScanTime — когда возврат был
	// физически проверен на столе распаковки. Это разные события.
	ImportTime time.Time  `json:"importTime"`
	ScanTime   *time.Time `json:"scanTime,omitempty"`

	VideoFile       string     `json:"videoFile,omitempty"`
	VideoRecorded   bool       `json:"videoRecorded"`
	VideoRecordedAt *time.Time `json:"videoRecordedAt,omitempty"`
	VideoDuration   float64    `json:"videoDuration,omitempty"`
	VideoSize       int64      `json:"videoSize,omitempty"`

	// Extra хранит нераспознанные поля импорта как есть, чтобы повторный
	// экспорт не терял чужие колонки.
	Extra map[string]interface{} `json:"extra,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (o *Order) HasVideo() bool {
	return o.VideoFile != "" || o.VideoRecorded
}

// EffectiveDate — дата для фильтров по диапазону: scanTime, иначе
// importTime, иначе createdAt.
func (o *Order) EffectiveDate() time.Time {
	if o.ScanTime != nil {
		return *o.ScanTime
	}
	if !o.ImportTime.IsZero() {
		return o.ImportTime
	}
	return o.CreatedAt
}

// RetentionDate — дата для очистки по возрасту: scanTime, иначе importTime.
// createdAt в очистке не участвует.
func (o *Order) RetentionDate() time.Time {
	if o.ScanTime != nil {
		return *o.ScanTime
	}
	return o.ImportTime
}
