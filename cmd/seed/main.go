package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/mlhuang/tastemap-backend/config"
	"github.com/mlhuang/tastemap-backend/internal/app/model"
	"github.com/mlhuang/tastemap-backend/internal/app/repository"
	"github.com/mlhuang/tastemap-backend/internal/db"
	"github.com/xuri/excelize/v2"
)

// Imports restaurants from an XLSX workbook. Expected columns:
// Name, Category, Tel, Address, Opening Hours, Description, Image URL.
func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: go run cmd/seed/main.go <xlsx_file_path>")
	}

	filePath := os.Args[1]

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	restaurantRepo := repository.NewRestaurantRepository(db.GetDB())
	categoryRepo := repository.NewCategoryRepository(db.GetDB())

	fmt.Printf("Reading XLSX file: %s\n", filePath)
	restaurants, err := readRestaurantsFromXLSX(filePath, categoryRepo)
	if err != nil {
		log.Fatal("Failed to read XLSX:", err)
	}

	fmt.Printf("Total restaurants to import: %d\n", len(restaurants))

	fmt.Print("Do you want to proceed with the import? (yes/no): ")
	var confirm string
	fmt.Scanln(&confirm)
	if confirm != "yes" && confirm != "y" {
		fmt.Println("Import cancelled.")
		return
	}

	batchSize := 1000
	fmt.Printf("Starting bulk import with batch size: %d\n", batchSize)
	if err := restaurantRepo.BulkCreate(restaurants, batchSize); err != nil {
		log.Fatal("Failed to bulk create restaurants:", err)
	}

	fmt.Println("Import completed successfully!")
	fmt.Printf("Total restaurants imported: %d\n", len(restaurants))
}

func readRestaurantsFromXLSX(filePath string, categoryRepo repository.CategoryRepository) ([]model.Restaurant, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("no sheets found in XLSX file")
	}

	fmt.Printf("Reading sheet: %s\n", sheetName)

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no data found in XLSX file")
	}

	// Category names resolve to ids once; unknown names get created on the fly
	categoryIDs := make(map[string]uint)
	skippedCount := 0

	var restaurants []model.Restaurant
	for i, row := range rows {
		if i == 0 {
			fmt.Printf("Headers: %v\n", row)
			continue
		}
		if len(row) < 2 {
			skippedCount++
			continue
		}

		name := strings.TrimSpace(row[0])
		categoryName := strings.TrimSpace(row[1])
		if name == "" || categoryName == "" {
			skippedCount++
			continue
		}

		categoryID, ok := categoryIDs[categoryName]
		if !ok {
			id, err := findOrCreateCategory(categoryRepo, categoryName)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve category %q: %w", categoryName, err)
			}
			categoryIDs[categoryName] = id
			categoryID = id
		}

		restaurant := model.Restaurant{
			Name:       name,
			CategoryID: categoryID,
		}
		if len(row) > 2 {
			restaurant.Tel = strings.TrimSpace(row[2])
		}
		if len(row) > 3 {
			restaurant.Address = strings.TrimSpace(row[3])
		}
		if len(row) > 4 {
			restaurant.OpeningHours = strings.TrimSpace(row[4])
		}
		if len(row) > 5 {
			restaurant.Description = strings.TrimSpace(row[5])
		}
		if len(row) > 6 {
			restaurant.Image = strings.TrimSpace(row[6])
		}

		restaurants = append(restaurants, restaurant)
	}

	if skippedCount > 0 {
		fmt.Printf("Skipped %d rows with missing name or category\n", skippedCount)
	}

	return restaurants, nil
}

func findOrCreateCategory(categoryRepo repository.CategoryRepository, name string) (uint, error) {
	if category, err := categoryRepo.FindByName(name); err == nil {
		return category.ID, nil
	}

	category := &model.Category{Name: name}
	if err := categoryRepo.Create(category); err != nil {
		return 0, err
	}
	return category.ID, nil
}
