package database

import (
	"fmt"
	"log"

	"enrollment-app/config"
	"enrollment-app/internal/checkout"
	"enrollment-app/internal/domain/billing"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func InitDB() {
	dsn := config.DB_URL
	if dsn == "" {
		log.Fatal("❌ DB_URL not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("❌ Failed to connect to database:", err)
	}

	DB = db

	// Pending checkouts must survive the redirect to the gateway and back,
	// so the correlation table lives here rather than in memory.
	if err := DB.AutoMigrate(
		&checkout.PendingCheckout{},
		&billing.Payment{},
	); err != nil {
		log.Fatal("❌ AutoMigrate error:", err)
	}

	fmt.Println("✅ Connected and migrated successfully")
}
