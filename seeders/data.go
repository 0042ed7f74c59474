package seeders

import (
	"time"

	"return-unpack-system/internal/entities"
)

func timePtr(t time.Time) *time.Time { return &t }

// demoOrders — срез типичных возвратов: свежие и залежавшиеся, с видео и
// без, с разной степенью повреждения. Хватает, чтобы пощупать фильтры,
// статистику и очистку по возрасту.
func demoOrders() []entities.Order {
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 10, 0, 0, 0, time.Local)
	yesterday := today.AddDate(0, 0, -1)
	lastWeek := today.AddDate(0, 0, -6)
	lastMonth := today.AddDate(0, 0, -25)

	return []entities.Order{
		{
			OrderNumber:   "DEMO-2026-0001",
			ExpressNumber: "SF1390276551234",
			SkuInfo:       "蓝牙耳机 白色 x1",
			ShopName:      "数码旗舰店",
			Status:        entities.StatusPending,
			Damage:        entities.DamageIntact,
			ImportTime:    today,
			CreatedAt:     today,
			UpdatedAt:     today,
		},
		{
			OrderNumber:    "DEMO-2026-0002",
			ExpressNumber:  "YT7558200998811",
			TrackingNumber: "RT-889231",
			SkuInfo:        "保温杯 500ml x2",
			ShopName:       "家居生活馆",
			Notes:          "клиент жалуется на вмятину",
			Status:         entities.StatusProcessed,
			Damage:         entities.DamageDamaged,
			ImportTime:     yesterday,
			ScanTime:       timePtr(yesterday.Add(2 * time.Hour)),
			VideoFile:      "videos/DEMO-2026-0002_家居生活馆.mp4",
			VideoRecorded:  true,
			VideoDuration:  47.3,
			VideoSize:      18_450_221,
			CreatedAt:      yesterday,
			UpdatedAt:      yesterday,
		},
		{
			OrderNumber:   "DEMO-2026-0003",
			ExpressNumber: "JD0044187226543",
			SkuInfo:       "机械键盘 87键 x1",
			ShopName:      "数码旗舰店",
			Notes:         "не хватает кабеля в комплекте",
			Status:        entities.StatusInProgress,
			Damage:        entities.DamageMissingParts,
			ImportTime:    yesterday,
			ScanTime:      timePtr(yesterday.Add(4 * time.Hour)),
			VideoRecorded: true,
			CreatedAt:     yesterday,
			UpdatedAt:     yesterday,
		},
		{
			OrderNumber: "DEMO-2026-0004",
			SkuInfo:     "运动鞋 42码 x1",
			ShopName:    "潮流鞋仓",
			Status:      entities.StatusCancelled,
			Damage:      entities.DamageOther,
			Notes:       "возврат отменён покупателем",
			ImportTime:  lastWeek,
			CreatedAt:   lastWeek,
			UpdatedAt:   lastWeek,
		},
		{
			OrderNumber:   "DEMO-2026-0005",
			ExpressNumber: "ZTO9912034456712",
			SkuInfo:       "台灯 北欧风 x1",
			ShopName:      "家居生活馆",
			Status:        entities.StatusProcessed,
			Damage:        entities.DamageIntact,
			ImportTime:    lastMonth,
			ScanTime:      timePtr(lastMonth.Add(time.Hour)),
			VideoFile:     "videos/DEMO-2026-0005_家居生活馆.mp4",
			VideoRecorded: true,
			VideoDuration: 31.8,
			VideoSize:     9_882_004,
			CreatedAt:     lastMonth,
			UpdatedAt:     lastMonth,
		},
	}
}
