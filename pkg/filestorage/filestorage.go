package filestorage

import "io"

// FileStorageInterface — контракт хранилища файлов. Save пишет файл под
// заданным именем (повторная запись перекрывает старый файл), SaveUnique
// генерирует уникальное имя сам.
type FileStorageInterface interface {
	Save(file io.Reader, fileName string, prefix string) (filePath string, err error)
	SaveUnique(file io.Reader, originalFileName string, prefix string) (filePath string, err error)
	Delete(filePath string) error
}
