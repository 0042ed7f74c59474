// Package events — события доменной шины.
package events

const (
	OrderSavedName   = "order.saved"
	OrderDeletedName = "order.deleted"
	StoreClearedName = "store.cleared"
)

// OrderSaved публикуется после любой мутации заказа (создание,
// обновление, импорт, видео). Date — рабочая дата записи (YYYY-MM-DD),
// по ней слушатель статистики понимает, какой день пересчитывать.
type OrderSaved struct {
	OrderNumber string
	Date        string
}

func (e OrderSaved) Name() string { return OrderSavedName }

type OrderDeleted struct {
	OrderNumber string
	Date        string
}

func (e OrderDeleted) Name() string { return OrderDeletedName }

// StoreCleared публикуется после полной очистки или восстановления из
// снимка.
type StoreCleared struct{}

func (e StoreCleared) Name() string { return StoreClearedName }

const ImportCompletedName = "import.completed"

// ImportCompleted несёт все рабочие даты, затронутые прогоном импорта.
type ImportCompleted struct {
	FileName string
	Dates    []string
}

func (e ImportCompleted) Name() string { return ImportCompletedName }
