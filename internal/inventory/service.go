package inventory

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/scoopworks/inventory-api/internal/platform/httpx"
)

func isNotFound(err error) bool {
	return errors.Is(err, httpx.ErrNotFound)
}

// PageSize is the fixed listing page size.
const PageSize = 10

const populateCount = 1000

// Store is the persistence surface the service needs.
type Store interface {
	Count(ctx context.Context, filter *PriceFilter) (int, error)
	List(ctx context.Context, q ListQuery) ([]Product, error)
	GetByID(ctx context.Context, id int64) (Product, error)
	Insert(ctx context.Context, input ProductInput) (int64, error)
	InsertBatch(ctx context.Context, inputs []ProductInput) error
	UpdateByID(ctx context.Context, id int64, patch ProductPatch) error
	DeleteByID(ctx context.Context, id int64) error
	ListSuppliers(ctx context.Context) ([]Supplier, error)
	GetSupplierByID(ctx context.Context, id int64) (Supplier, error)
}

// Pagination summarises a listing page.
type Pagination struct {
	Next  bool `json:"next"`
	Prev  bool `json:"prev"`
	Pages int  `json:"pages"`
}

// Service wraps catalog business rules.
type Service struct {
	store Store
}

// NewService constructs a Service.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// ListProducts returns one page and its pagination summary.
func (s *Service) ListProducts(ctx context.Context, q ListQuery) ([]Product, Pagination, error) {
	if q.Size == 0 {
		q.Size = PageSize
	}
	count, err := s.store.Count(ctx, q.Price)
	if err != nil {
		return nil, Pagination{}, err
	}
	products, err := s.store.List(ctx, q)
	if err != nil {
		return nil, Pagination{}, err
	}
	pagination := Pagination{
		Next:  count > q.Page*q.Size,
		Prev:  q.Size < q.Page*q.Size,
		Pages: int(math.Ceil(float64(count) / float64(q.Size))),
	}
	return products, pagination, nil
}

// GetProduct fetches one product.
func (s *Service) GetProduct(ctx context.Context, id int64) (Product, error) {
	return s.store.GetByID(ctx, id)
}

// AddProduct validates the supplier reference and inserts the product.
func (s *Service) AddProduct(ctx context.Context, name string, price float64, supplierID int64) (Product, error) {
	supplier, err := s.store.GetSupplierByID(ctx, supplierID)
	if err != nil {
		if isNotFound(err) {
			return Product{}, ErrSupplierNotFound
		}
		return Product{}, err
	}

	id, err := s.store.Insert(ctx, ProductInput{
		Name:       name,
		Price:      price,
		SupplierID: supplier.ID,
	})
	if err != nil {
		return Product{}, err
	}
	return Product{ID: id, Name: name, Price: FormatPrice(price), Supplier: supplier}, nil
}

// UpdateProduct applies a partial update, validating any new supplier.
func (s *Service) UpdateProduct(ctx context.Context, id int64, patch ProductPatch) error {
	if patch.SupplierID != nil {
		if _, err := s.store.GetSupplierByID(ctx, *patch.SupplierID); err != nil {
			if isNotFound(err) {
				return ErrSupplierNotFound
			}
			return err
		}
	}
	return s.store.UpdateByID(ctx, id, patch)
}

// DeleteProduct removes one product.
func (s *Service) DeleteProduct(ctx context.Context, id int64) error {
	return s.store.DeleteByID(ctx, id)
}

// ListSuppliers returns every supplier.
func (s *Service) ListSuppliers(ctx context.Context) ([]Supplier, error) {
	return s.store.ListSuppliers(ctx)
}

// Populate fills the catalog with generated products.
func (s *Service) Populate(ctx context.Context) ([]ProductInput, error) {
	suppliers, err := s.store.ListSuppliers(ctx)
	if err != nil {
		return nil, err
	}
	if len(suppliers) == 0 {
		return nil, errors.New("inventory: no suppliers to populate against")
	}
	products := GenerateProducts(populateCount, suppliers)
	if err := s.store.InsertBatch(ctx, products); err != nil {
		return nil, err
	}
	return products, nil
}

var (
	adjectives = []string{
		"Cosmic", "Galactic", "Volcanic", "Electric", "Tropical", "Swirly",
		"Gooey", "Chewy", "Mega", "Super", "Double", "Triple",
	}
	flavors = []string{
		"Chocolate", "Vanilla", "Strawberry", "Mango", "Coffee",
		"Mint Chocolate Chip", "Oreo Cookies", "Peanut Butter", "Banana", "Bubblegum",
	}
	items = []string{
		"Milkshake", "Ice-Cream", "Waffle", "Candy", "Lollipop", "Bread",
		"Twiggies", "Cookie", "Juice",
	}
	variants = []string{
		"Jumbo", "Indulgence", "Gigante", "Megabite", "Bonanza", "Muncheroo",
	}
)

// GenerateProducts builds n products with unique grammar-generated names,
// prices between $5 and $95 rounded up to the nearest ten cents, and
// random suppliers from the given set.
func GenerateProducts(n int, suppliers []Supplier) []ProductInput {
	usedNames := make(map[string]struct{}, n)
	products := make([]ProductInput, 0, n)
	for len(products) < n {
		adjective := adjectives[rand.Intn(len(adjectives))]
		flavor := flavors[rand.Intn(len(flavors))]
		item := items[rand.Intn(len(items))]
		variant := variants[rand.Intn(len(variants))]
		name := fmt.Sprintf("%s %s %s %s", adjective, flavor, variant, item)
		if _, seen := usedNames[name]; seen {
			continue
		}
		usedNames[name] = struct{}{}

		products = append(products, ProductInput{
			Flavor:     flavor,
			Name:       name,
			Price:      ToNearestTenCent(rand.Float64()*90 + 5),
			Image:      "https://placehold.co/600x400?text=" + adjective,
			SupplierID: suppliers[rand.Intn(len(suppliers))].ID,
		})
	}
	return products
}
