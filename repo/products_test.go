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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opencohort/mockdb"
	"github.com/opencohort/mockdb/core"
)

func setupProducts(t *testing.T) (*mockdb.Database, *ProductRepository) {
	t.Helper()
	db := setupDB(t)
	addUser(t, db, "u1", "Lena")
	mustCreate(t, db.ProductCategories().Create, &core.ProductCategory{Meta: core.Meta{ID: "pc1"}, Name: "Apparel"})
	mustCreate(t, db.Products().Create, &core.Product{
		Meta: core.Meta{ID: "prod1"}, Title: "Hoodie", CategoryID: "pc1",
		PriceCents: 5400, Stock: 3, Featured: true,
	})
	return db, NewProductRepository(db)
}

func TestPurchase_DecrementsStock(t *testing.T) {
	db, products := setupProducts(t)

	order, ok := products.Purchase("prod1", "u1", 2)
	require.True(t, ok)
	assert.Equal(t, 10800, order.TotalCents)

	product, _ := db.Products().FindByID("prod1")
	assert.Equal(t, 1, product.Stock)
}

func TestPurchase_NeverOversells(t *testing.T) {
	db, products := setupProducts(t)

	_, ok := products.Purchase("prod1", "u1", 4)
	assert.False(t, ok)
	_, ok = products.Purchase("prod1", "u1", 0)
	assert.False(t, ok)
	_, ok = products.Purchase("ghost", "u1", 1)
	assert.False(t, ok)

	product, _ := db.Products().FindByID("prod1")
	assert.Equal(t, 3, product.Stock)
	assert.Empty(t, products.OrdersForUser("u1"))
}

func TestEnrichedProduct(t *testing.T) {
	_, products := setupProducts(t)

	enriched, ok := products.Enriched("prod1")
	require.True(t, ok)
	require.NotNil(t, enriched.Category)
	assert.Equal(t, "Apparel", enriched.Category.Name)

	all := products.AllEnriched()
	require.Len(t, all, 1)
	assert.Equal(t, enriched.Category, all[0].Category)
}

func TestFeatured(t *testing.T) {
	db, products := setupProducts(t)
	mustCreate(t, db.Products().Create, &core.Product{Meta: core.Meta{ID: "prod2"}, Title: "Plain"})

	featured := products.Featured()
	require.Len(t, featured, 1)
	assert.Equal(t, "prod1", featured[0].ID)
}
