package entities

import "time"

// DailyStats — сводка по одному календарному дню. Пересчитывается полным
// проходом по заказам, инкрементально не поддерживается.
type DailyStats struct {
	Date            string    `json:"date"` // YYYY-MM-DD
	TotalOrders     int       `json:"totalOrders"`
	ProcessedOrders int       `json:"processedOrders"`
	PendingOrders   int       `json:"pendingOrders"`
	DamagedOrders   int       `json:"damagedOrders"`
	VideoOrders     int       `json:"videoOrders"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// FilterStats — сводка по произвольной выборке.
type FilterStats struct {
	Total        int `json:"total"`
	Pending      int `json:"pending"`
	Processed    int `json:"processed"`
	Damaged      int `json:"damaged"`
	WithVideo    int `json:"withVideo"`
	WithoutVideo int `json:"withoutVideo"`
}
