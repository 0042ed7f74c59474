package postgresql

import (
	"database/sql"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"

	"return-unpack-system/migrations"
)

// Migrate прогоняет goose-миграции из встроенной директории migrations/.
// Goose работает поверх database/sql, поэтому открываем отдельное
// соединение через pgx-stdlib и закрываем его сразу после миграций.
func Migrate(dsn string, logger *zap.Logger) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	if err := goose.Up(db, "."); err != nil {
		return err
	}

	logger.Info("✅ Миграции применены")
	return nil
}
