package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError — ошибка с машинным кодом. Код уходит клиенту как есть,
// поэтому коды стабильны и не переводятся.
type AppError struct {
	Code    string
	Message string
	Status  int
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Err }

func New(code, message string, status int) *AppError {
	return &AppError{Code: code, Message: message, Status: status}
}

// Wrap сохраняет код и статус шаблона, но цепляет причину.
func Wrap(template *AppError, cause error) *AppError {
	return &AppError{Code: template.Code, Message: template.Message, Status: template.Status, Err: cause}
}

func WithMessage(template *AppError, format string, args ...interface{}) *AppError {
	return &AppError{Code: template.Code, Message: fmt.Sprintf(format, args...), Status: template.Status}
}

// AsAppError достаёт AppError из цепочки ошибок.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

func IsCode(err error, code string) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == code
}

// Валидация ключей.
var (
	ErrEmptyOrderNumber   = New("EMPTY_ORDER_NUMBER", "номер заказа не может быть пустым", http.StatusBadRequest)
	ErrInvalidOrderNumber = New("INVALID_ORDER_NUMBER", "номер заказа должен быть непустой строкой", http.StatusBadRequest)

	// Хранилище.
	ErrOrderNotFound        = New("ORDER_NOT_FOUND", "запись не найдена", http.StatusNotFound)
	ErrDuplicateOrderNumber = New("DUPLICATE_ORDER_NUMBER", "заказ с таким номером уже существует", http.StatusConflict)
	ErrUpdateConflict       = New("UPDATE_CONFLICT", "конфликт версий при обновлении записи", http.StatusConflict)
	ErrNotInitialized       = New("NOT_INITIALIZED", "хранилище не инициализировано", http.StatusServiceUnavailable)
	ErrUnsupported          = New("UNSUPPORTED", "операция не поддерживается этим хранилищем", http.StatusNotImplemented)

	// Импорт и экспорт.
	ErrImportInProgress  = New("IMPORT_IN_PROGRESS", "импорт уже выполняется", http.StatusConflict)
	ErrEmptyImportFile   = New("EMPTY_IMPORT_FILE", "файл импорта не содержит записей", http.StatusBadRequest)
	ErrUnsupportedFormat = New("UNSUPPORTED_FORMAT", "неподдерживаемый формат файла", http.StatusBadRequest)
	ErrImportTooLarge    = New("IMPORT_TOO_LARGE", "файл импорта превышает допустимый размер", http.StatusRequestEntityTooLarge)
	ErrTooManyRecords    = New("TOO_MANY_RECORDS", "файл импорта содержит слишком много записей", http.StatusRequestEntityTooLarge)

	// Резервные копии.
	ErrInvalidSnapshot = New("INVALID_SNAPSHOT", "снимок данных повреждён или имеет неверный формат", http.StatusBadRequest)

	// Общие.
	ErrBadRequest = New("BAD_REQUEST", "неверный запрос", http.StatusBadRequest)
	ErrInternal   = New("INTERNAL", "внутренняя ошибка сервера", http.StatusInternalServerError)
)
