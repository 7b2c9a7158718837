package db

import (
	"log"
	"os"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/kdiawara/sika/internal/models"
)

// seed creates a default operator account and a first agent so a fresh
// development install is usable immediately. No-op when rows already exist.
func seed(db *gorm.DB) {
	email := os.Getenv("SEED_ADMIN_EMAIL")
	if email == "" {
		email = "admin@sika.local"
	}
	var existing models.User
	if err := db.Where("email = ?", email).First(&existing).Error; err == gorm.ErrRecordNotFound {
		password := os.Getenv("SEED_ADMIN_PASSWORD")
		if password == "" {
			password = "changeme"
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			log.Printf("[DB] seed: hash admin password: %v", err)
			return
		}
		admin := models.User{Email: email, Password: string(hash), Firstname: "Admin", Lastname: "Sika"}
		if err := db.Create(&admin).Error; err != nil {
			log.Printf("[DB] seed: create admin: %v", err)
		}
	}

	var count int64
	if err := db.Model(&models.Agent{}).Count(&count).Error; err == nil && count == 0 {
		agent := models.Agent{Firstname: "Awa", Lastname: "Traoré", Location: "Bamako"}
		if err := db.Create(&agent).Error; err != nil {
			log.Printf("[DB] seed: create agent: %v", err)
		}
	}
}
