// Seeds the product catalog: wipes existing products and bulk-inserts the
// sample craft catalog. Run against an empty or disposable database.
package main

import (
	"context"
	"log"

	"github.com/craftculture/orders-api/internal/config"
	"github.com/craftculture/orders-api/internal/database"
	"github.com/craftculture/orders-api/internal/models"
	"github.com/craftculture/orders-api/internal/store"
	"github.com/shopspring/decimal"
)

func product(name, category, image string, price float64, offer int64, quantity int, status models.ProductStatus) models.Product {
	return models.Product{
		Name:     name,
		Category: category,
		Image:    image,
		Price:    decimal.NewFromFloat(price),
		Offer:    decimal.NewFromInt(offer),
		Quantity: quantity,
		Status:   status,
	}
}

func sampleProducts() []models.Product {
	return []models.Product{
		product("Frame1", "Frames", "Frames/frame1.jpeg", 120.00, 10, 15, models.ProductAvailable),
		product("Frame2", "Frames", "Frames/frame2.jpeg", 150.00, 15, 10, models.ProductAvailable),
		product("Frame3", "Frames", "Frames/frame3.jpeg", 100.00, 8, 20, models.ProductNotAvailable),
		product("Frame4", "Frames", "Frames/frame4.jpeg", 140.00, 12, 18, models.ProductAvailable),
		product("Frame5", "Frames", "Frames/frame5.jpeg", 200.00, 20, 8, models.ProductAvailable),
		product("WallHanging1", "Wall Hanging", "WallHanging/wallhanging1.jpeg", 45.00, 10, 20, models.ProductAvailable),
		product("WallHanging2", "Wall Hanging", "WallHanging/wallhanging2.jpeg", 60.00, 15, 30, models.ProductNotAvailable),
		product("WallHanging3", "Wall Hanging", "WallHanging/wallhanging3.jpeg", 80.00, 5, 25, models.ProductAvailable),
		product("WallHanging4", "Wall Hanging", "WallHanging/wallhanging4.jpeg", 100.00, 20, 15, models.ProductAvailable),
		product("Bag1", "Bag", "Bag/bag1.jpeg", 250.00, 12, 12, models.ProductAvailable),
		product("Bag2", "Bag", "Bag/bag2.jpeg", 300.00, 18, 9, models.ProductAvailable),
		product("Bag3", "Bag", "Bag/bag3.jpeg", 220.00, 8, 0, models.ProductNotAvailable),
		product("PenStand1", "Pen Stand", "PenStand/penstand1.jpeg", 70.00, 5, 40, models.ProductAvailable),
		product("PenStand2", "Pen Stand", "PenStand/penstand2.jpeg", 85.00, 10, 35, models.ProductAvailable),
		product("Jewellery1", "Jewellery", "Jewellery/jewellery1.jpeg", 180.00, 25, 14, models.ProductAvailable),
		product("Jewellery2", "Jewellery", "Jewellery/jewellery2.jpeg", 210.00, 15, 11, models.ProductAvailable),
		product("Diya1", "Diyas", "Diyas/diya1.jpeg", 30.00, 5, 100, models.ProductAvailable),
		product("Diya2", "Diyas", "Diyas/diya2.jpeg", 40.00, 10, 80, models.ProductAvailable),
		product("BottleArt1", "Bottle Art", "BottleArt/bottleart1.jpeg", 95.00, 12, 22, models.ProductAvailable),
		product("BottleArt2", "Bottle Art", "BottleArt/bottleart2.jpeg", 110.00, 15, 17, models.ProductAvailable),
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Load config: %v", err)
	}

	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		log.Fatalf("Connect to database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()

	deleted, err := store.DeleteAllProducts(ctx, db)
	if err != nil {
		log.Fatalf("Delete products: %v", err)
	}
	log.Printf("Deleted %d existing product(s)", deleted)

	products := sampleProducts()
	if err := store.InsertProducts(ctx, db, products); err != nil {
		log.Fatalf("Insert products: %v", err)
	}
	log.Printf("Inserted %d product(s)", len(products))
}
