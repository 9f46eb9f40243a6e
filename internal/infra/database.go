package infra

import (
	"fmt"

	"github.com/BistroPdv/bistro-api/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate to
// create / update all tables, then applies the idempotent SQL patches that GORM
// cannot express (partial indexes).
//
// TranslateError is enabled so unique violations surface as
// gorm.ErrDuplicatedKey instead of a driver-specific error.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}
	return db, nil
}

// RunMigrations applies AutoMigrate plus the schema patches. Exposed
// separately so integration tests can bring up a schema on a throwaway DB.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Restaurante{},
		&model.Usuario{},
		&model.Produto{},
		&model.Adicional{},
		&model.MetodoPagamento{},
		&model.Mesa{},
		&model.Comanda{},
		&model.Caixa{},
		&model.CaixaMovimentacao{},
		&model.CaixaFechamento{},
		&model.CaixaFechamentoMetodo{},
		&model.Pedido{},
		&model.PedidoProduto{},
		&model.PedidoProdutoAdicional{},
		&model.HistoryPedido{},
		&model.Payment{},
		&model.PdvSyncIntent{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL that AutoMigrate cannot express.
// Each statement is safe to re-run on an already-patched schema.
func applySchemaPatches(db *gorm.DB) error {
	patches := []string{
		// At most one open caixa per user per restaurant. The application
		// also checks before creating, but only this index holds under
		// concurrent opens.
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_caixas_aberto_por_usuario
		    ON caixas (restaurant_cnpj, user_id)
		    WHERE status = true AND deleted = false`,
		// Retry cron scans pending intents by due time.
		`CREATE INDEX IF NOT EXISTS idx_pdv_sync_intents_pendente
		    ON pdv_sync_intents (next_retry_at)
		    WHERE status = 'PENDENTE'`,
	}

	for _, sql := range patches {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("schema patch: %w", err)
		}
	}
	return nil
}
