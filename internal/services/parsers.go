package services

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	apperrors "return-unpack-system/pkg/errors"
)

// ParseImportFile разбирает файл импорта в упорядоченную последовательность
// плоских строк. Формат определяется по расширению; дальше по конвейеру
// строки идут без знания о формате файла.
func ParseImportFile(file io.Reader, fileName string) ([]map[string]interface{}, error) {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".csv", ".txt":
		return parseCSV(file)
	case ".json":
		return parseJSON(file)
	case ".xlsx", ".xls":
		return parseXLSX(file)
	default:
		return nil, apperrors.WithMessage(apperrors.ErrUnsupportedFormat, "неподдерживаемый формат файла: %s", filepath.Ext(fileName))
	}
}

func parseCSV(file io.Reader) ([]map[string]interface{}, error) {
	buffered := bufio.NewReader(file)
	// Excel добавляет BOM в начало CSV с китайскими заголовками.
	if bom, err := buffered.Peek(3); err == nil && bytes.Equal(bom, []byte{0xEF, 0xBB, 0xBF}) {
		_, _ = buffered.Discard(3)
	}

	reader := csv.NewReader(buffered)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	all, err := reader.ReadAll()
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrUnsupportedFormat, err)
	}
	if len(all) == 0 {
		return nil, nil
	}

	header := all[0]
	rows := make([]map[string]interface{}, 0, len(all)-1)
	for _, record := range all[1:] {
		if isBlankRow(record) {
			continue
		}
		row := make(map[string]interface{}, len(header))
		for i, column := range header {
			column = strings.TrimSpace(column)
			if column == "" || i >= len(record) {
				continue
			}
			row[column] = record[i]
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseJSON(file io.Reader) ([]map[string]interface{}, error) {
	payload, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}

	var direct []map[string]interface{}
	if err := json.Unmarshal(payload, &direct); err == nil {
		return direct, nil
	}

	// Допускаем обёртки {"orders": [...]} и {"records": [...]}.
	var wrapped map[string]json.RawMessage
	if err := json.Unmarshal(payload, &wrapped); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrUnsupportedFormat, err)
	}
	for _, key := range []string{"orders", "records", "data"} {
		raw, ok := wrapped[key]
		if !ok {
			continue
		}
		var rows []map[string]interface{}
		if err := json.Unmarshal(raw, &rows); err != nil {
			return nil, apperrors.Wrap(apperrors.ErrUnsupportedFormat, err)
		}
		return rows, nil
	}
	return nil, apperrors.WithMessage(apperrors.ErrUnsupportedFormat, "JSON не содержит массива записей")
}

// orderNumberHeaders — варианты заголовка колонки с номером заказа, по
// которым ищется шапка таблицы в Excel-файле.
var orderNumberHeaders = []string{"订单编号", "订单号", "单号", "订单", "ordernumber", "order no"}

func parseXLSX(file io.Reader) ([]map[string]interface{}, error) {
	book, err := excelize.OpenReader(file)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrUnsupportedFormat, err)
	}
	defer book.Close()

	// Шапка не обязана быть первой строкой: выгрузки маркетплейсов любят
	// ставить над таблицей заголовок отчёта.
	for _, sheet := range book.GetSheetList() {
		sheetRows, err := book.GetRows(sheet)
		if err != nil {
			continue
		}
		headerIdx := findHeaderRow(sheetRows)
		if headerIdx == -1 {
			continue
		}

		header := sheetRows[headerIdx]
		rows := make([]map[string]interface{}, 0, len(sheetRows)-headerIdx-1)
		for _, record := range sheetRows[headerIdx+1:] {
			if isBlankRow(record) {
				continue
			}
			row := make(map[string]interface{}, len(header))
			for i, column := range header {
				column = strings.TrimSpace(column)
				if column == "" || i >= len(record) {
					continue
				}
				row[column] = record[i]
			}
			rows = append(rows, row)
		}
		return rows, nil
	}
	return nil, apperrors.WithMessage(apperrors.ErrUnsupportedFormat, "в файле не найдена шапка таблицы с колонкой номера заказа")
}

func findHeaderRow(rows [][]string) int {
	for idx, row := range rows {
		for _, cell := range row {
			lowered := strings.ToLower(strings.TrimSpace(cell))
			for _, known := range orderNumberHeaders {
				if lowered == known {
					return idx
				}
			}
		}
	}
	return -1
}

func isBlankRow(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
