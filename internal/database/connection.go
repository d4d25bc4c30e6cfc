// internal/database/connection.go
package database

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/DaltonP93/prepaga-digital-sub002/internal/config"
	"github.com/DaltonP93/prepaga-digital-sub002/internal/models"
)

var DB *gorm.DB

func Initialize(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var err error
	var gormConfig *gorm.Config

	// Configure GORM logger
	if cfg.LogLevel == "silent" {
		gormConfig = &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		}
	} else {
		gormConfig = &gorm.Config{
			Logger: logger.Default.LogMode(logger.Info),
		}
	}

	// Connect to database
	DB, err = gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying sql.DB
	sqlDB, err := DB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Configure connection pool
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.MaxLifetime) * time.Second)

	// Test connection
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("Database connection established successfully")
	return DB, nil
}

func Close(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		log.Printf("Error getting underlying sql.DB: %v", err)
		return
	}

	if err := sqlDB.Close(); err != nil {
		log.Printf("Error closing database connection: %v", err)
	} else {
		log.Println("Database connection closed successfully")
	}
}

func RunMigrations(db *gorm.DB) error {
	log.Println("Running database migrations...")

	// Enable UUID extension
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS \"uuid-ossp\"").Error; err != nil {
		return fmt.Errorf("failed to create UUID extension: %w", err)
	}

	// Run auto-migrations
	err := db.AutoMigrate(
		&models.Company{},
		&models.User{},
		&models.Client{},
		&models.Plan{},
		&models.Template{},
		&models.TemplateResponse{},
		&models.Sale{},
		&models.SignatureLink{},
		&models.ProcessTrace{},
		&models.Document{},
		&models.DocumentPackage{},
		&models.DocumentPackageItem{},
		&models.NotificationLog{},
		&models.AuditLog{},
	)

	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Create indexes
	if err := createIndexes(db); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	log.Println("Database migrations completed successfully")
	return nil
}

func createIndexes(db *gorm.DB) error {
	indexes := []string{
		// User indexes
		"CREATE INDEX IF NOT EXISTS idx_users_email ON users(email)",
		"CREATE INDEX IF NOT EXISTS idx_users_company_role ON users(company_id, role)",

		// Sale indexes
		"CREATE INDEX IF NOT EXISTS idx_sales_company_status ON sales(company_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_sales_client ON sales(client_id)",
		"CREATE INDEX IF NOT EXISTS idx_sales_seller ON sales(seller_id)",
		"CREATE INDEX IF NOT EXISTS idx_sales_created_at ON sales(created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_sales_signature_token ON sales(signature_token)",

		// Signature link indexes
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_signature_links_token ON signature_links(token)",
		"CREATE INDEX IF NOT EXISTS idx_signature_links_sale ON signature_links(sale_id)",
		"CREATE INDEX IF NOT EXISTS idx_signature_links_status_expires ON signature_links(status, expires_at)",

		// Trace indexes
		"CREATE INDEX IF NOT EXISTS idx_process_traces_sale_created ON process_traces(sale_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_process_traces_action ON process_traces(action)",

		// Document indexes
		"CREATE INDEX IF NOT EXISTS idx_documents_sale_status ON documents(sale_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_document_packages_sale ON document_packages(sale_id)",
		"CREATE INDEX IF NOT EXISTS idx_document_package_items_package ON document_package_items(package_id, position)",

		// Questionnaire indexes
		"CREATE INDEX IF NOT EXISTS idx_template_responses_template_client ON template_responses(template_id, client_id)",
		"CREATE INDEX IF NOT EXISTS idx_template_responses_sale ON template_responses(sale_id)",

		// Audit indexes
		"CREATE INDEX IF NOT EXISTS idx_audit_logs_user_action ON audit_logs(user_id, action)",
		"CREATE INDEX IF NOT EXISTS idx_audit_logs_resource ON audit_logs(resource_type, resource_id)",
		"CREATE INDEX IF NOT EXISTS idx_audit_logs_created ON audit_logs(created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_notification_logs_sale ON notification_logs(sale_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_notification_logs_status ON notification_logs(status)",
	}

	for _, index := range indexes {
		if err := db.Exec(index).Error; err != nil {
			log.Printf("Warning: Failed to create index: %s, Error: %v", index, err)
			// Continue with other indexes instead of failing completely
		}
	}

	return nil
}

// Seed initial data
func SeedInitialData(db *gorm.DB) error {
	log.Println("Seeding initial data...")

	var companyCount int64
	db.Model(&models.Company{}).Count(&companyCount)

	var company models.Company
	if companyCount == 0 {
		company = models.Company{
			Name:  "Prepaga Digital",
			Email: "contacto@prepagadigital.com",
		}
		if err := db.Create(&company).Error; err != nil {
			return fmt.Errorf("failed to create default company: %w", err)
		}
		log.Println("Default company created successfully")
	} else {
		if err := db.First(&company).Error; err != nil {
			return fmt.Errorf("failed to load default company: %w", err)
		}
	}

	// Create default admin user
	var adminCount int64
	db.Model(&models.User{}).Where("role = ?", models.UserRoleAdmin).Count(&adminCount)

	if adminCount == 0 {
		admin := &models.User{
			CompanyID: company.ID,
			FirstName: "Administrador",
			LastName:  "Sistema",
			Email:     "admin@prepagadigital.com",
			Role:      models.UserRoleAdmin,
			Active:    true,
		}

		if err := admin.SetPassword("admin123!@#"); err != nil {
			return fmt.Errorf("failed to set admin password: %w", err)
		}

		if err := db.Create(admin).Error; err != nil {
			return fmt.Errorf("failed to create admin user: %w", err)
		}

		log.Println("Default admin user created successfully")
	}

	log.Println("Initial data seeding completed")
	return nil
}

// Transaction helper
func WithTransaction(db *gorm.DB, fn func(*gorm.DB) error) error {
	tx := db.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}
