// Package filtering описывает фильтр выборки заказов и два его
// вычислителя: SQL-условия для squirrel и предикат в памяти. Оба обязаны
// давать одинаковый результат на одних и тех же записях.
package filtering

import (
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"

	"return-unpack-system/internal/entities"
)

// HasVideo — трёхзначный фильтр наличия видео.
const (
	VideoAny = "any"
	VideoYes = "yes"
	VideoNo  = "no"
)

// OrderFilter — конъюнкция независимых необязательных условий. Пустое
// значение отключает условие целиком.
type OrderFilter struct {
	Status   string `json:"status" query:"status"`
	Damage   string `json:"damage" query:"damage"`
	ShopName string `json:"shopName" query:"shopName"`
	DateFrom string `json:"dateFrom" query:"dateFrom"` // YYYY-MM-DD
	DateTo   string `json:"dateTo" query:"dateTo"`     // YYYY-MM-DD
	HasVideo string `json:"hasVideo" query:"hasVideo"`
	Keyword  string `json:"keyword" query:"keyword"`
}

// IsAll — сторожевое значение "все", отключающее условие.
func IsAll(value string) bool {
	return value == "" || value == "all" || value == "全部"
}

// NormalizedVideo сводит исторические подписи к трём значениям.
func NormalizedVideo(value string) string {
	switch value {
	case VideoYes, "有视频", "true":
		return VideoYes
	case VideoNo, "无视频", "false":
		return VideoNo
	default:
		return VideoAny
	}
}

// keywordFields — колонки, по которым ищет подстрочный поиск.
var keywordFields = []string{
	"order_number", "express_number", "tracking_number", "shop_name", "sku_info", "notes",
}

// likeEscaper экранирует метасимволы LIKE: ключевое слово ищется как
// буквальная подстрока, в точности как в Match.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// dayStart и dayEnd — включительные границы дня в локальном времени.
func dayStart(day string) (time.Time, bool) {
	parsed, err := time.ParseInLocation("2006-01-02", day, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return parsed, true
}

func dayEnd(day string) (time.Time, bool) {
	start, ok := dayStart(day)
	if !ok {
		return time.Time{}, false
	}
	return start.Add(24*time.Hour - time.Millisecond), true
}

// effectiveDateExpr — SQL-эквивалент Order.EffectiveDate.
const effectiveDateExpr = "COALESCE(scan_time, import_time, created_at)"

// ApplyToSelect навешивает условия фильтра на SELECT-запрос.
func (f OrderFilter) ApplyToSelect(builder sq.SelectBuilder) sq.SelectBuilder {
	if !IsAll(f.Status) {
		builder = builder.Where(sq.Eq{"status": f.Status})
	}
	if !IsAll(f.Damage) {
		builder = builder.Where(sq.Eq{"damage": f.Damage})
	}
	if !IsAll(f.ShopName) {
		builder = builder.Where(sq.Eq{"shop_name": f.ShopName})
	}

	if from, ok := dayStart(f.DateFrom); f.DateFrom != "" && ok {
		builder = builder.Where(sq.Expr(effectiveDateExpr+" >= ?", from))
	}
	if to, ok := dayEnd(f.DateTo); f.DateTo != "" && ok {
		builder = builder.Where(sq.Expr(effectiveDateExpr+" <= ?", to))
	}

	switch NormalizedVideo(f.HasVideo) {
	case VideoYes:
		builder = builder.Where(sq.Or{
			sq.NotEq{"video_file": ""},
			sq.Eq{"video_recorded": true},
		})
	case VideoNo:
		builder = builder.Where(sq.Eq{"video_file": "", "video_recorded": false})
	}

	if keyword := strings.TrimSpace(f.Keyword); keyword != "" {
		pattern := "%" + likeEscaper.Replace(keyword) + "%"
		or := make(sq.Or, 0, len(keywordFields))
		for _, field := range keywordFields {
			or = append(or, sq.ILike{field: pattern})
		}
		builder = builder.Where(or)
	}

	return builder
}

// Match — предикат в памяти с той же семантикой, что и ApplyToSelect.
// Используется статистикой, экспортом и резервным полным проходом.
func (f OrderFilter) Match(order *entities.Order) bool {
	if !IsAll(f.Status) && string(order.Status) != f.Status {
		return false
	}
	if !IsAll(f.Damage) && string(order.Damage) != f.Damage {
		return false
	}
	if !IsAll(f.ShopName) && order.ShopName != f.ShopName {
		return false
	}

	if f.DateFrom != "" || f.DateTo != "" {
		effective := order.EffectiveDate()
		if !effective.IsZero() {
			if from, ok := dayStart(f.DateFrom); f.DateFrom != "" && ok && effective.Before(from) {
				return false
			}
			if to, ok := dayEnd(f.DateTo); f.DateTo != "" && ok && effective.After(to) {
				return false
			}
		}
	}

	switch NormalizedVideo(f.HasVideo) {
	case VideoYes:
		if !order.HasVideo() {
			return false
		}
	case VideoNo:
		if order.HasVideo() {
			return false
		}
	}

	if keyword := strings.TrimSpace(f.Keyword); keyword != "" {
		needle := strings.ToLower(keyword)
		haystacks := []string{
			order.OrderNumber, order.ExpressNumber, order.TrackingNumber,
			order.ShopName, order.SkuInfo, order.Notes,
		}
		found := false
		for _, value := range haystacks {
			if strings.Contains(strings.ToLower(value), needle) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	return true
}

// sortColumns — разрешённые поля сортировки.
var sortColumns = map[string]string{
	"importTime":  "import_time",
	"scanTime":    "scan_time",
	"createdAt":   "created_at",
	"updatedAt":   "updated_at",
	"orderNumber": "order_number",
}

// SortColumn переводит имя поля сортировки в колонку; неизвестное поле
// превращается в сортировку по import_time.
func SortColumn(field string) string {
	if column, ok := sortColumns[field]; ok {
		return column
	}
	return "import_time"
}

// SortDirection нормализует порядок сортировки (по умолчанию DESC).
func SortDirection(order string) string {
	if strings.EqualFold(order, "asc") {
		return "ASC"
	}
	return "DESC"
}
