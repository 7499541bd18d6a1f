package inventory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/scoopworks/inventory-api/internal/platform/httpx"
)

type memoryStore struct {
	count     int
	listed    []Product
	suppliers []Supplier
	inserted  []ProductInput
	batched   []ProductInput
	patched   map[int64]ProductPatch
}

func (s *memoryStore) Count(context.Context, *PriceFilter) (int, error) { return s.count, nil }
func (s *memoryStore) List(context.Context, ListQuery) ([]Product, error) {
	return s.listed, nil
}
func (s *memoryStore) GetByID(context.Context, int64) (Product, error) {
	return Product{}, httpx.ErrNotFound
}
func (s *memoryStore) Insert(_ context.Context, input ProductInput) (int64, error) {
	s.inserted = append(s.inserted, input)
	return int64(len(s.inserted)), nil
}
func (s *memoryStore) InsertBatch(_ context.Context, inputs []ProductInput) error {
	s.batched = append(s.batched, inputs...)
	return nil
}
func (s *memoryStore) UpdateByID(_ context.Context, id int64, patch ProductPatch) error {
	if s.patched == nil {
		s.patched = make(map[int64]ProductPatch)
	}
	s.patched[id] = patch
	return nil
}
func (s *memoryStore) DeleteByID(context.Context, int64) error { return nil }
func (s *memoryStore) ListSuppliers(context.Context) ([]Supplier, error) {
	return s.suppliers, nil
}
func (s *memoryStore) GetSupplierByID(_ context.Context, id int64) (Supplier, error) {
	for _, supplier := range s.suppliers {
		if supplier.ID == id {
			return supplier, nil
		}
	}
	return Supplier{}, httpx.ErrNotFound
}

func TestListProductsPagination(t *testing.T) {
	tests := []struct {
		name  string
		count int
		page  int
		want  Pagination
	}{
		{"first of many", 35, 1, Pagination{Next: true, Prev: false, Pages: 4}},
		{"middle page", 35, 2, Pagination{Next: true, Prev: true, Pages: 4}},
		{"last partial page", 35, 4, Pagination{Next: false, Prev: true, Pages: 4}},
		{"exact multiple", 30, 3, Pagination{Next: false, Prev: true, Pages: 3}},
		{"empty catalog", 0, 1, Pagination{Next: false, Prev: false, Pages: 0}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := NewService(&memoryStore{count: tc.count})
			_, pagination, err := svc.ListProducts(context.Background(), ListQuery{
				Page: tc.page, Size: PageSize, SortBy: "id", SortOrder: "ASC",
			})
			require.NoError(t, err)
			require.Equal(t, tc.want, pagination)
		})
	}
}

func TestAddProductUnknownSupplier(t *testing.T) {
	svc := NewService(&memoryStore{suppliers: []Supplier{{ID: 1, Name: "Sweet Co"}}})

	_, err := svc.AddProduct(context.Background(), "Waffle", 4.50, 99)
	require.ErrorIs(t, err, ErrSupplierNotFound)
}

func TestAddProductFormatsPrice(t *testing.T) {
	store := &memoryStore{suppliers: []Supplier{{ID: 1, Name: "Sweet Co"}}}
	svc := NewService(store)

	product, err := svc.AddProduct(context.Background(), "Waffle", 4.5, 1)
	require.NoError(t, err)
	require.Equal(t, "4.50", product.Price)
	require.Equal(t, Supplier{ID: 1, Name: "Sweet Co"}, product.Supplier)
	require.Len(t, store.inserted, 1)
}

func TestUpdateProductValidatesNewSupplier(t *testing.T) {
	store := &memoryStore{suppliers: []Supplier{{ID: 1, Name: "Sweet Co"}}}
	svc := NewService(store)

	missing := int64(42)
	err := svc.UpdateProduct(context.Background(), 7, ProductPatch{SupplierID: &missing})
	require.ErrorIs(t, err, ErrSupplierNotFound)
	require.Empty(t, store.patched, "nothing written on a bad supplier reference")

	name := "Renamed"
	require.NoError(t, svc.UpdateProduct(context.Background(), 7, ProductPatch{Name: &name}))
	require.Contains(t, store.patched, int64(7))
}

func TestPopulateRequiresSuppliers(t *testing.T) {
	svc := NewService(&memoryStore{})

	_, err := svc.Populate(context.Background())
	require.Error(t, err)
}

func TestPopulateInsertsGeneratedBatch(t *testing.T) {
	store := &memoryStore{suppliers: []Supplier{{ID: 1, Name: "Sweet Co"}, {ID: 2, Name: "Crunch Ltd"}}}
	svc := NewService(store)

	products, err := svc.Populate(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 1000)
	require.Len(t, store.batched, 1000)
}

func TestGenerateProductsProperties(t *testing.T) {
	suppliers := []Supplier{{ID: 1}, {ID: 2}, {ID: 3}}
	products := GenerateProducts(500, suppliers)
	require.Len(t, products, 500)

	seen := make(map[string]struct{}, len(products))
	for _, p := range products {
		_, dup := seen[p.Name]
		require.False(t, dup, "duplicate name %q", p.Name)
		seen[p.Name] = struct{}{}

		require.GreaterOrEqual(t, p.Price, 5.0)
		require.LessOrEqual(t, p.Price, 95.0)
		cents := p.Price * 100
		require.InDelta(t, cents, 10*float64(int(cents/10+0.5)), 1e-6,
			"price %v not on a ten-cent boundary", p.Price)

		require.Contains(t, p.Image, "https://placehold.co/600x400?text=")
		require.NotZero(t, p.SupplierID)
	}
}

func TestToNearestTenCent(t *testing.T) {
	require.InDelta(t, 5.1, ToNearestTenCent(5.01), 1e-9)
	require.InDelta(t, 5.1, ToNearestTenCent(5.1), 1e-9)
	require.InDelta(t, 90.0, ToNearestTenCent(89.91), 1e-9)
}

func TestParsePriceFilter(t *testing.T) {
	require.Equal(t, &PriceFilter{Operator: "<", Value: 30}, ParsePriceFilter("lt:30"))
	require.Equal(t, &PriceFilter{Operator: ">=", Value: 10}, ParsePriceFilter("gte:10"))
	require.Nil(t, ParsePriceFilter(""))
	require.Nil(t, ParsePriceFilter("between:5"))
	require.Nil(t, ParsePriceFilter("lt:abc"))
}
