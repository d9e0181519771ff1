package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/ikkim/vitrine-backend/config"
	"github.com/ikkim/vitrine-backend/internal/app/model"
	"github.com/ikkim/vitrine-backend/internal/app/repository"
	"github.com/ikkim/vitrine-backend/internal/catalog"
	"github.com/ikkim/vitrine-backend/internal/db"
	"github.com/ikkim/vitrine-backend/internal/storage"
)

const usage = "Usage: go run cmd/seed/main.go <catalog.xlsx|catalog.json> [db|s3] [-y]"

func main() {
	// 명령줄 인자 확인
	if len(os.Args) < 2 {
		log.Fatal(usage)
	}
	filePath := os.Args[1]
	target := "db"
	confirmed := false
	for _, arg := range os.Args[2:] {
		switch arg {
		case "db", "s3":
			target = arg
		case "-y", "--yes":
			confirmed = true
		default:
			log.Fatal(usage)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	fmt.Printf("Reading catalog file: %s\n", filePath)
	products, err := readCatalog(filePath)
	if err != nil {
		log.Fatal("Failed to read catalog:", err)
	}

	// 서버와 같은 규칙으로 검증
	cat, err := catalog.New(products)
	if err != nil {
		log.Fatal("Catalog rejected:", err)
	}
	fmt.Printf("Total products to import: %d (shops: %s)\n", cat.Len(), strings.Join(cat.Shops(), ", "))

	if !confirmed {
		fmt.Printf("Do you want to replace the %s catalog? (yes/no): ", target)
		var confirm string
		fmt.Scanln(&confirm)
		if confirm != "yes" && confirm != "y" {
			fmt.Println("Import cancelled.")
			return
		}
	}

	ctx := context.Background()
	switch target {
	case "s3":
		if cfg.S3.Bucket == "" {
			log.Fatal("AWS_S3_BUCKET is required for the s3 target")
		}
		payload, err := json.MarshalIndent(products, "", "  ")
		if err != nil {
			log.Fatal("Failed to encode catalog:", err)
		}
		store := storage.NewS3Storage(ctx, &cfg.S3)
		if err := store.PutObject(ctx, cfg.Catalog.S3Key, "application/json", payload); err != nil {
			log.Fatal("Failed to upload catalog:", err)
		}
		fmt.Printf("Catalog uploaded to s3://%s/%s\n", cfg.S3.Bucket, cfg.Catalog.S3Key)

	default:
		if err := db.Initialize(&cfg.Database); err != nil {
			log.Fatal("Failed to connect to database:", err)
		}
		defer db.Close()

		if err := db.GetDB().AutoMigrate(db.CatalogModels...); err != nil {
			log.Fatal("Failed to migrate catalog tables:", err)
		}
		model.AssignPositions(products)
		if err := repository.NewProductRepository(db.GetDB()).ReplaceAll(ctx, products); err != nil {
			log.Fatal("Failed to replace catalog:", err)
		}
		fmt.Println("Import completed successfully!")
		fmt.Printf("Total products imported: %d\n", len(products))
	}
}

func readCatalog(path string) ([]model.Product, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return catalog.DecodeJSON(f)
	case ".xlsx":
		return readCatalogXLSX(path)
	default:
		return nil, fmt.Errorf("unsupported catalog file %q", path)
	}
}
