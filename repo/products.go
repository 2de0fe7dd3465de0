// Copyright 2025 The OpenCohort Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package repo

import (
	"github.com/opencohort/mockdb"
	"github.com/opencohort/mockdb/core"
)

// EnrichedProduct is a product with its category resolved.
type EnrichedProduct struct {
	*core.Product
	Category *core.ProductCategory `json:"category,omitempty"`
}

// ProductRepository owns the shop catalog and order bookkeeping.
type ProductRepository struct {
	Repository[*core.Product]
}

// NewProductRepository creates a product repository.
func NewProductRepository(db *mockdb.Database) *ProductRepository {
	return &ProductRepository{Repository: newRepository(db, db.Products())}
}

// Featured returns featured products in insertion order.
func (r *ProductRepository) Featured() []*core.Product {
	return r.Find(whereField[*core.Product]("featured", true))
}

// ByCategory returns products in a category.
func (r *ProductRepository) ByCategory(categoryID string) []*core.Product {
	return r.Find(whereField[*core.Product]("categoryId", categoryID))
}

// Enriched resolves one product's category.
func (r *ProductRepository) Enriched(id string) (*EnrichedProduct, bool) {
	product, ok := r.Get(id)
	if !ok {
		return nil, false
	}
	enriched := &EnrichedProduct{Product: product}
	if category, ok := r.db.ProductCategories().FindByID(product.CategoryID); ok {
		enriched.Category = category
	}
	return enriched, true
}

// AllEnriched resolves every product's category with a single category
// index.
func (r *ProductRepository) AllEnriched() []*EnrichedProduct {
	categories := IndexBy(r.db.ProductCategories().ToArray(),
		func(c *core.ProductCategory) string { return c.ID })

	products := r.All()
	enriched := make([]*EnrichedProduct, 0, len(products))
	for _, product := range products {
		e := &EnrichedProduct{Product: product}
		if category, ok := categories[product.CategoryID]; ok {
			e.Category = category
		}
		enriched = append(enriched, e)
	}
	return enriched
}

// Purchase creates an order for a product and decrements its stock.
// ok is false when the product is missing, the quantity is not
// positive, or stock cannot cover it; stock is never driven negative.
func (r *ProductRepository) Purchase(productID, userID string, quantity int) (*core.Order, bool) {
	if quantity <= 0 {
		return nil, false
	}
	product, ok := r.Get(productID)
	if !ok || product.Stock < quantity {
		return nil, false
	}

	order, err := createIn(r.db, r.db.Orders(), &core.Order{
		UserID:     userID,
		ProductID:  productID,
		Quantity:   quantity,
		TotalCents: product.PriceCents * quantity,
		Status:     "completed",
	})
	if err != nil {
		return nil, false
	}
	r.Update(productID, func(p *core.Product) { p.Stock -= quantity })
	return order, true
}

// OrdersForUser returns a user's orders in insertion order.
func (r *ProductRepository) OrdersForUser(userID string) []*core.Order {
	return r.db.Orders().FindMany(whereField[*core.Order]("userId", userID))
}
