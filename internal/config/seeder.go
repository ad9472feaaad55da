package config

import (
	"log"

	"perpus-backend/internal/adapters/persistence/models"
	"perpus-backend/internal/core/domain"
	"perpus-backend/internal/pkg/password"

	"gorm.io/gorm"
)

// Seeder handles database seeding
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// Run executes all seeders
func (s *Seeder) Run() error {
	log.Println("🌱 Running database seeders...")

	if err := s.seedAdminUser(); err != nil {
		log.Printf("⚠️ Admin seeder skipped: %v", err)
	}
	if err := s.seedBooks(); err != nil {
		log.Printf("⚠️ Book seeder skipped: %v", err)
	}

	log.Println("✅ Database seeding completed")
	return nil
}

// seedAdminUser seeds a default admin account for development.
// In production, create the admin through a secure process instead.
func (s *Seeder) seedAdminUser() error {
	var count int64
	s.db.Model(&models.User{}).Where("role = ?", string(domain.RoleAdmin)).Count(&count)
	if count > 0 {
		return nil
	}

	hashed, err := password.Hash("admin123456")
	if err != nil {
		return err
	}

	admin := &models.User{
		Name:     "Administrator",
		Email:    "admin@perpus.local",
		Password: hashed,
		Role:     string(domain.RoleAdmin),
	}

	if err := s.db.Create(admin).Error; err != nil {
		return err
	}

	log.Println("🌱 Seeded admin account (admin@perpus.local)")
	return nil
}

// seedBooks seeds a starter catalog so the API is usable right away
func (s *Seeder) seedBooks() error {
	var count int64
	s.db.Model(&models.Book{}).Count(&count)
	if count > 0 {
		return nil
	}

	books := []models.Book{
		{Title: "Laskar Pelangi", Author: "Andrea Hirata", Publisher: "Bentang Pustaka", PublishedYear: 2005, Stock: 5},
		{Title: "Bumi Manusia", Author: "Pramoedya Ananta Toer", Publisher: "Hasta Mitra", PublishedYear: 1980, Stock: 3},
		{Title: "Negeri 5 Menara", Author: "Ahmad Fuadi", Publisher: "Gramedia", PublishedYear: 2009, Stock: 4},
		{Title: "Perahu Kertas", Author: "Dee Lestari", Publisher: "Bentang Pustaka", PublishedYear: 2009, Stock: 2},
		{Title: "Cantik Itu Luka", Author: "Eka Kurniawan", Publisher: "Gramedia", PublishedYear: 2002, Stock: 3},
		{Title: "Pulang", Author: "Leila S. Chudori", Publisher: "Kepustakaan Populer Gramedia", PublishedYear: 2012, Stock: 2},
	}

	if err := s.db.Create(&books).Error; err != nil {
		return err
	}

	log.Printf("🌱 Seeded %d catalog books", len(books))
	return nil
}
