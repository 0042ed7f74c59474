package normalize

import "return-unpack-system/internal/entities"

// fieldAliases — все известные входные имена каждого канонического поля.
// Порядок важен: первое непустое значение побеждает. Файлы приходят и от
// китайских маркетплейсов, и от выгрузок со старыми английскими шапками.
var fieldAliases = map[string][]string{
	"orderNumber": {"orderNumber", "订单编号", "订单号", "单号", "订单", "OrderNumber", "Order No"},

	"expressNumber": {"expressNumber", "发货运单号", "运单号", "快递单号", "发货单号", "ShippingNo", "ExpressNumber"},

	"trackingNumber": {"trackingNumber", "退货运单号", "退货单号", "退货快递单号", "ReturnTracking", "TrackingNumber"},

	"skuInfo": {"skuInfo", "sku信息", "SKU信息", "商品编码", "SKU", "ProductSKU", "SKUCode"},

	"notes": {"notes", "备注", "商品备注", "订单备注", "Remarks", "Note", "Comments"},

	"shopName": {"shopName", "店铺名字", "店铺名称", "店铺", "卖家", "StoreName", "Shop", "Seller"},

	"scanTime":   {"scanTime", "扫描时间", "扫描/录制时间"},
	"importTime": {"importTime", "导入时间"},
	"createdAt":  {"createdAt", "创建时间"},
	"updatedAt":  {"updatedAt", "更新时间"},

	"status": {"status", "状态", "Status"},

	// damage и damageType исторически дублировали друг друга; внутри
	// храним одно каноническое поле.
	"damage": {"damage", "damageType", "损坏情况", "损坏类型", "Damage"},

	"videoFile":       {"videoFile", "videoFileName", "视频文件"},
	"videoRecorded":   {"videoRecorded"},
	"videoRecordedAt": {"videoRecordedAt"},
	"videoDuration":   {"videoDuration"},
	"videoSize":       {"videoSize"},
}

// DisplayLabels — обратное отображение для экспорта: каноническое поле ->
// заголовок колонки, который ожидают на складе.
var DisplayLabels = map[string]string{
	"orderNumber":    "订单编号",
	"expressNumber":  "发货运单号",
	"trackingNumber": "退货运单号",
	"skuInfo":        "SKU信息",
	"notes":          "备注",
	"shopName":       "店铺名称",
	"importTime":     "导入时间",
	"scanTime":       "扫描/录制时间",
	"status":         "状态",
	"damage":         "损坏情况",
	"videoFile":      "视频文件",
	"createdAt":      "创建时间",
	"updatedAt":      "更新时间",
}

// ExportColumns — порядок колонок экспорта.
var ExportColumns = []string{
	"orderNumber", "expressNumber", "trackingNumber", "skuInfo", "shopName",
	"notes", "status", "damage", "importTime", "scanTime", "videoFile",
}

var statusValues = map[string]entities.OrderStatus{
	"pending":     entities.StatusPending,
	"processed":   entities.StatusProcessed,
	"in_progress": entities.StatusInProgress,
	"cancelled":   entities.StatusCancelled,
	"待处理":         entities.StatusPending,
	"已处理":         entities.StatusProcessed,
	"处理中":         entities.StatusInProgress,
	"已取消":         entities.StatusCancelled,
}

var damageValues = map[string]entities.DamageLevel{
	"intact":        entities.DamageIntact,
	"damaged":       entities.DamageDamaged,
	"missing_parts": entities.DamageMissingParts,
	"other":         entities.DamageOther,
	"完好":            entities.DamageIntact,
	"破损":            entities.DamageDamaged,
	"缺件":            entities.DamageMissingParts,
	"其他":            entities.DamageOther,
}

// StatusLabels и DamageLabels — подписи для экспорта и статистики.
var StatusLabels = map[entities.OrderStatus]string{
	entities.StatusPending:    "待处理",
	entities.StatusProcessed:  "已处理",
	entities.StatusInProgress: "处理中",
	entities.StatusCancelled:  "已取消",
}

var DamageLabels = map[entities.DamageLevel]string{
	entities.DamageIntact:       "完好",
	entities.DamageDamaged:      "破损",
	entities.DamageMissingParts: "缺件",
	entities.DamageOther:        "其他",
}

// CanonicalStatus переводит входное значение в канонический статус.
// Неизвестное значение считается "pending".
func CanonicalStatus(raw string) entities.OrderStatus {
	if status, ok := statusValues[raw]; ok {
		return status
	}
	return entities.StatusPending
}

// CanonicalDamage переводит входное значение в каноническую степень
// повреждения. Неизвестное значение считается "intact".
func CanonicalDamage(raw string) entities.DamageLevel {
	if damage, ok := damageValues[raw]; ok {
		return damage
	}
	return entities.DamageIntact
}

// consumedKeys — все входные ключи, которые нормализатор понимает сам.
// Остальные уходят в Extra как есть.
var consumedKeys = func() map[string]struct{} {
	keys := make(map[string]struct{})
	for _, aliases := range fieldAliases {
		for _, alias := range aliases {
			keys[alias] = struct{}{}
		}
	}
	// Бинарное содержимое видео в запись не попадает, им владеет
	// файловое хранилище.
	keys["videoData"] = struct{}{}
	keys["id"] = struct{}{}
	return keys
}()
