package migration

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	customerdomain "github.com/smallbiznis/rechargedesk/internal/customer/domain"
	invoicedomain "github.com/smallbiznis/rechargedesk/internal/invoice/domain"
	plandomain "github.com/smallbiznis/rechargedesk/internal/plan/domain"
	saledomain "github.com/smallbiznis/rechargedesk/internal/sale/domain"
	subscriptiondomain "github.com/smallbiznis/rechargedesk/internal/subscription/domain"
	"github.com/smallbiznis/rechargedesk/pkg/db"
	"gorm.io/gorm"
)

const migrationsDir = "migrations"

//go:embed migrations/*.sql
var embeddedMigrations embed.FS

// Models lists every table the application persists.
func Models() []any {
	return []any{
		&customerdomain.Customer{},
		&customerdomain.CustomerNumber{},
		&plandomain.Plan{},
		&subscriptiondomain.CustomerPlan{},
		&saledomain.Sale{},
		&invoicedomain.Invoice{},
		&invoicedomain.InvoiceItem{},
	}
}

// Run brings the schema up to date. Postgres uses the versioned SQL files;
// other dialects are development targets and use AutoMigrate.
func Run(conn *gorm.DB, dbType string) error {
	if conn == nil {
		return errors.New("migration database handle is required")
	}
	if dbType != db.TypePostgres {
		if err := conn.AutoMigrate(Models()...); err != nil {
			return fmt.Errorf("auto migrate: %w", err)
		}
		return nil
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return err
	}
	return RunMigrations(sqlDB)
}

func RunMigrations(db *sql.DB) error {
	if db == nil {
		return errors.New("migration database handle is required")
	}

	sub, err := fs.Sub(embeddedMigrations, migrationsDir)
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}

	source, err := iofs.New(sub, ".")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}

	migrator, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	upErr := migrator.Up()
	if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", upErr)
	}
	// Do not call migrator.Close here because it would close the shared *sql.DB.

	return nil
}
