// Seeding script for the notification category catalog
// cmd/seed-categories/main.go
package main

import (
	"log"

	"github.com/joho/godotenv"

	"service-request-api/config"
	"service-request-api/models"
)

var categorySeed = []models.NotificationCategory{
	{CategoryID: 1, Code: "meeting_room", Label: "คำขอใช้ห้องประชุม"},
	{CategoryID: 2, Code: "repair", Label: "คำขอแจ้งซ่อม"},
	{CategoryID: 3, Code: "other", Label: "คำขอรับบริการอื่น ๆ"},
	{CategoryID: 5, Code: "event", Label: "กิจกรรม"},
}

func main() {
	// Load .env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	// Initialize database
	config.InitDB()

	// Upsert categories by id, keep existing labels untouched
	for _, cat := range categorySeed {
		if err := config.DB.Exec(
			`INSERT INTO notification_categories (category_id, code, label) VALUES (?, ?, ?)
			 ON DUPLICATE KEY UPDATE code = VALUES(code)`,
			cat.CategoryID, cat.Code, cat.Label,
		).Error; err != nil {
			log.Printf("Failed to seed category %s: %v\n", cat.Code, err)
			continue
		}
		log.Printf("Seeded category %d (%s)\n", cat.CategoryID, cat.Code)
	}

	// Opt every staff member in to all categories by default
	var staff []models.User
	if err := config.DB.Where("role_id IN ? AND delete_at IS NULL",
		[]int{models.RoleStaff, models.RoleAdmin}).Find(&staff).Error; err != nil {
		log.Fatal("Failed to fetch staff users:", err)
	}

	for _, user := range staff {
		for _, cat := range categorySeed {
			if err := config.DB.Exec(
				`INSERT IGNORE INTO category_recipients (category_id, user_id, enabled) VALUES (?, ?, 1)`,
				cat.CategoryID, user.UserID,
			).Error; err != nil {
				log.Printf("Failed to subscribe user %d to category %d: %v\n", user.UserID, cat.CategoryID, err)
			}
		}
	}

	log.Println("Category seeding completed!")
}
