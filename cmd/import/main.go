// Файл: cmd/import/main.go
//
// Консольный импорт заказов из файла (CSV/JSON/XLSX) напрямую в базу,
// без запуска HTTP-сервера.

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"return-unpack-system/internal/dto"
	"return-unpack-system/internal/entities"
	"return-unpack-system/internal/repositories"
	"return-unpack-system/internal/services"
	"return-unpack-system/pkg/config"
	"return-unpack-system/pkg/eventbus"
	applogger "return-unpack-system/pkg/logger"

	"github.com/joho/godotenv"
	"github.com/olekukonko/tablewriter"
	"go.uber.org/zap"
)

func main() {
	filePath := flag.String("file", "", "путь к файлу импорта (.csv, .json, .xlsx)")
	strategy := flag.String("strategy", entities.StrategyFillBlanks, "стратегия слияния: skip_duplicates | fill_blanks | update_all")
	dsn := flag.String("dsn", "", "строка подключения к PostgreSQL (по умолчанию DATABASE_URL)")
	flag.Parse()

	if *filePath == "" {
		flag.Usage()
		os.Exit(2)
	}

	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found or could not be loaded.")
	}

	logger := applogger.NewLogger()
	defer logger.Sync()

	cfg := config.New()
	if *dsn == "" {
		*dsn = cfg.DatabaseURL
	}

	ctx := context.Background()

	store := repositories.NewStore(*dsn, logger)
	if err := store.Open(ctx); err != nil {
		logger.Fatal("не удалось открыть хранилище заказов", zap.Error(err))
	}
	defer store.Close()

	file, err := os.Open(*filePath)
	if err != nil {
		logger.Fatal("не удалось открыть файл импорта", zap.String("file", *filePath), zap.Error(err))
	}
	defer file.Close()

	orderRepo := repositories.NewOrderRepository(store, logger)
	// Без кеша замок импорта работает на локальном мьютексе; шина событий
	// публикует в пустоту, слушатели есть только у HTTP-сервера.
	exchangeSvc := services.NewExchangeService(
		orderRepo,
		repositories.NewImportHistoryRepository(store),
		repositories.NewSettingsRepository(store),
		nil,
		eventbus.New(logger),
		logger,
		cfg.ImportBatchSize,
		cfg.ImportBatchPause,
		cfg.ImportMaxRecords,
	)

	result, err := exchangeSvc.Import(ctx, file, filepath.Base(*filePath), dto.ImportOptionsDTO{Strategy: *strategy})
	if err != nil {
		logger.Fatal("импорт завершился ошибкой", zap.Error(err))
	}

	printSummary(&result.Stats)

	if result.Stats.Failed > 0 {
		os.Exit(1)
	}
}

func printSummary(stats *entities.ImportStats) {
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Показатель", "Значение")
	_ = table.Append([]string{"Всего строк", strconv.Itoa(stats.Total)})
	_ = table.Append([]string{"Создано", strconv.Itoa(stats.Created)})
	_ = table.Append([]string{"Обновлено", strconv.Itoa(stats.Updated)})
	_ = table.Append([]string{"Пропущено", strconv.Itoa(stats.Skipped)})
	_ = table.Append([]string{"С ошибками", strconv.Itoa(stats.Failed)})
	_ = table.Append([]string{"Длительность", stats.Duration.String()})
	_ = table.Render()

	if len(stats.Errors) == 0 {
		return
	}

	fmt.Println()
	errTable := tablewriter.NewWriter(os.Stdout)
	errTable.Header("Строка", "Код", "Сообщение")
	for _, e := range stats.Errors {
		_ = errTable.Append([]string{strconv.Itoa(e.Row), e.Code, e.Message})
	}
	_ = errTable.Render()
}
