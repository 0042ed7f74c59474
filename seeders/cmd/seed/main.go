package main

import (
	"context"
	"flag"
	"log"

	"github.com/joho/godotenv"

	"return-unpack-system/internal/repositories"
	"return-unpack-system/pkg/config"
	applogger "return-unpack-system/pkg/logger"
	"return-unpack-system/seeders"
)

func main() {
	log.Println("======================================================")
	log.Println("       🌱 СИСТЕМА СИДЕРОВ (Наполнение БД)           ")
	log.Println("======================================================")

	runOrders := flag.Bool("orders", false, "Засеять демонстрационные возвраты")
	runStats := flag.Bool("stats", false, "Пересчитать дневные сводки по засеянным данным")
	runAll := flag.Bool("all", false, "Запустить все сидеры (эквивалентно -orders -stats)")

	flag.Parse()

	if !*runOrders && !*runStats && !*runAll {
		log.Println("❌ Не выбран ни один сидер для запуска.")
		log.Println("")
		log.Println("Доступные флаги:")
		flag.PrintDefaults()
		log.Println("")
		log.Println("Примеры использования:")
		log.Println("  go run ./seeders/cmd/seed/main.go -orders")
		log.Println("  go run ./seeders/cmd/seed/main.go -all")
		log.Println("======================================================")
		return
	}

	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found or could not be loaded.")
	}

	logger := applogger.NewLogger()
	defer logger.Sync()

	cfg := config.New()
	ctx := context.Background()

	store := repositories.NewStore(cfg.DatabaseURL, logger)
	if err := store.Open(ctx); err != nil {
		log.Fatalf("❌ Не удалось открыть хранилище: %v", err)
	}
	defer store.Close()

	if *runOrders || *runAll {
		if err := seeders.SeedDemoOrders(ctx, store, logger); err != nil {
			log.Fatalf("❌ Ошибка наполнения возвратами: %v", err)
		}
	}
	if *runStats || *runAll {
		if err := seeders.SeedDemoStats(ctx, store, logger); err != nil {
			log.Fatalf("❌ Ошибка пересчёта сводок: %v", err)
		}
	}

	log.Println("======================================================")
	log.Println("            ✅ Сидеры отработали успешно              ")
	log.Println("======================================================")
}
