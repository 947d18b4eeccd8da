package integration

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/craftculture/orders-api/internal/database"
	"github.com/craftculture/orders-api/internal/models"
	"github.com/craftculture/orders-api/internal/store"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func TestCreateAndGetProduct(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	created := createTestProduct(t, db, "Wall Hanging1", 220.50, 20, 15, "")

	if created.ID == "" {
		t.Fatal("Expected generated product ID")
	}
	if created.Status != models.ProductAvailable {
		t.Errorf("Expected derived status Available, got %s", created.Status)
	}

	fetched, err := store.GetProduct(ctx, db, created.ID)
	if err != nil {
		t.Fatalf("Get product: %v", err)
	}
	if fetched.Name != "Wall Hanging1" {
		t.Errorf("Expected name Wall Hanging1, got %s", fetched.Name)
	}
	if !fetched.Price.Equal(decimal.NewFromFloat(220.50)) {
		t.Errorf("Expected price 220.50, got %s", fetched.Price)
	}
	if fetched.Quantity != 15 {
		t.Errorf("Expected quantity 15, got %d", fetched.Quantity)
	}
}

func TestCreateProductZeroStockStatus(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	created := createTestProduct(t, db, "Bag3", 340, 0, 0, "")

	if created.Status != models.ProductNotAvailable {
		t.Errorf("Expected Not Available for zero stock, got %s", created.Status)
	}
}

func TestGetProductNotFound(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := store.GetProduct(context.Background(), db, uuid.NewString())
	if !errors.Is(err, database.ErrProductNotFound) {
		t.Errorf("Expected not found error, got: %v", err)
	}
}

func TestListProducts(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	for i := 0; i < 7; i++ {
		createTestProduct(t, db, fmt.Sprintf("Diyas%d", i), 25, 0, 50, models.ProductAvailable)
	}

	page, err := store.ListProducts(ctx, db, 1, 5)
	if err != nil {
		t.Fatalf("List products: %v", err)
	}
	if page.Total != 7 {
		t.Errorf("Expected 7 total products, got %d", page.Total)
	}
	if page.TotalPages != 2 {
		t.Errorf("Expected 2 pages, got %d", page.TotalPages)
	}
	if items := page.Items.([]models.Product); len(items) != 5 {
		t.Errorf("Expected 5 products on page 1, got %d", len(items))
	}

	page2, err := store.ListProducts(ctx, db, 2, 5)
	if err != nil {
		t.Fatalf("List products page 2: %v", err)
	}
	if items := page2.Items.([]models.Product); len(items) != 2 {
		t.Errorf("Expected 2 products on page 2, got %d", len(items))
	}
}

func TestReseedProducts(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	createTestProduct(t, db, "Stale1", 10, 0, 1, models.ProductAvailable)
	createTestProduct(t, db, "Stale2", 20, 0, 2, models.ProductAvailable)

	deleted, err := store.DeleteAllProducts(ctx, db)
	if err != nil {
		t.Fatalf("Delete all products: %v", err)
	}
	if deleted != 2 {
		t.Errorf("Expected 2 deleted, got %d", deleted)
	}

	fresh := []models.Product{
		{Name: "Frame1", Category: "Frames", Price: decimal.NewFromInt(100), Offer: decimal.NewFromInt(10), Quantity: 10, Status: models.ProductAvailable},
		{Name: "Pen Stand1", Category: "Pen Stand", Price: decimal.NewFromInt(70), Offer: decimal.NewFromInt(5), Quantity: 30, Status: models.ProductAvailable},
	}
	if err := store.InsertProducts(ctx, db, fresh); err != nil {
		t.Fatalf("Insert products: %v", err)
	}

	all, err := store.ListProducts(ctx, db, 1, 50)
	if err != nil {
		t.Fatalf("List products: %v", err)
	}
	if all.Total != 2 {
		t.Errorf("Expected 2 products after reseed, got %d", all.Total)
	}
}
