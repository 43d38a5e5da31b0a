package stub

import (
	"net/http"
	"strings"

	"bluemedix-workflow/internal/common/validation"
	"bluemedix-workflow/internal/models"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds models.Credentials
	if err := decodeBody(r, &creds); err != nil {
		fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if creds.Email == "" || creds.Password == "" {
		fail(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	acct, ok := s.store.accountByEmail(strings.ToLower(creds.Email))
	if !ok || acct.password != creds.Password {
		fail(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	token := uuid.NewString()
	s.store.tokens[token] = acct.user.ID
	respond(w, http.StatusOK, map[string]interface{}{"token": token, "user": acct.user})
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var in models.CategoryInput
	if err := decodeBody(r, &in); err != nil {
		fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		fail(w, http.StatusBadRequest, "Category name is required")
		return
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	for _, c := range s.store.categories.list(nil) {
		if strings.EqualFold(c.Name, in.Name) {
			fail(w, http.StatusConflict, "Category already exists")
			return
		}
	}

	id, seq := s.store.nextID()
	cat := models.Category{ID: id, Name: in.Name, Image: in.Image}
	s.store.categories.put(id, seq, cat)
	respond(w, http.StatusCreated, map[string]interface{}{"category": cat})
}

func (s *Server) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var in models.ProductInput
	if err := decodeBody(r, &in); err != nil {
		fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if msg := checkProductFields(in.Name, in.Price, in.Discount, in.WarehouseStock, in.LowStockThreshold); msg != "" {
		fail(w, http.StatusBadRequest, msg)
		return
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	if !validID(in.Category) {
		fail(w, http.StatusBadRequest, "Invalid category id")
		return
	}
	if _, ok := s.store.categories.get(in.Category); !ok {
		fail(w, http.StatusNotFound, "Category not found")
		return
	}

	id, seq := s.store.nextID()
	p := models.Product{
		ID:                id,
		Name:              strings.TrimSpace(in.Name),
		Description:       in.Description,
		Price:             in.Price,
		Discount:          in.Discount,
		WarehouseStock:    in.WarehouseStock,
		LowStockThreshold: in.LowStockThreshold,
		Category:          models.NewRef(in.Category),
	}
	s.store.products.put(id, seq, p)
	respond(w, http.StatusCreated, map[string]interface{}{"product": p})
}

func checkProductFields(name string, price, discount float64, stock, threshold int) string {
	switch {
	case strings.TrimSpace(name) == "":
		return "Product name is required"
	case price < 0:
		return "Price must not be negative"
	case discount < 0 || discount > 100:
		return "Discount must be between 0 and 100"
	case stock < 0:
		return "Warehouse stock must not be negative"
	case threshold < 0:
		return "Low stock threshold must not be negative"
	}
	return ""
}

func (s *Server) handleListProducts(w http.ResponseWriter, r *http.Request) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	products := s.store.products.list(nil)
	out := make([]map[string]interface{}, len(products))
	for i, p := range products {
		out[i] = s.populateProduct(p)
	}
	respond(w, http.StatusOK, map[string]interface{}{"products": out})
}

func (s *Server) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	p, ok := s.lookupProduct(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	respond(w, http.StatusOK, map[string]interface{}{"product": s.populateProduct(p)})
}

func (s *Server) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	var in models.ProductUpdate
	if err := decodeBody(r, &in); err != nil {
		fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	p, ok := s.lookupProduct(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if in.Name != nil {
		p.Name = *in.Name
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.Discount != nil {
		p.Discount = *in.Discount
	}
	if in.LowStockThreshold != nil {
		p.LowStockThreshold = *in.LowStockThreshold
	}
	if msg := checkProductFields(p.Name, p.Price, p.Discount, p.WarehouseStock, p.LowStockThreshold); msg != "" {
		fail(w, http.StatusBadRequest, msg)
		return
	}

	s.store.products.put(p.ID, 0, p)
	respond(w, http.StatusOK, map[string]interface{}{"product": p})
}

func (s *Server) handleUpdateStock(w http.ResponseWriter, r *http.Request) {
	var adj models.StockAdjustment
	if err := decodeBody(r, &adj); err != nil {
		fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	p, ok := s.lookupProduct(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	next, err := adj.Apply(p.WarehouseStock)
	if err != nil {
		fail(w, http.StatusBadRequest, err.Error())
		return
	}
	p.WarehouseStock = next
	s.store.products.put(p.ID, 0, p)
	respond(w, http.StatusOK, map[string]interface{}{"product": p})
}

// lookupProduct writes the failure response itself when the product is unknown.
func (s *Server) lookupProduct(w http.ResponseWriter, id string) (models.Product, bool) {
	if !validID(id) {
		fail(w, http.StatusBadRequest, "Invalid product id")
		return models.Product{}, false
	}
	p, ok := s.store.products.get(id)
	if !ok {
		fail(w, http.StatusNotFound, "Product not found")
		return models.Product{}, false
	}
	return p, true
}

func (s *Server) populateProduct(p models.Product) map[string]interface{} {
	var category interface{}
	if c, ok := s.store.categories.get(p.Category.ID); ok {
		category = c
	}
	return populate(p, map[string]interface{}{"category": category})
}

func (s *Server) handleCreateManager(w http.ResponseWriter, r *http.Request) {
	var in models.ManagerInput
	if err := decodeBody(r, &in); err != nil {
		fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	switch {
	case strings.TrimSpace(in.Name) == "":
		fail(w, http.StatusBadRequest, "Name is required")
		return
	case !validation.ValidateEmail(in.Email):
		fail(w, http.StatusBadRequest, "A valid email is required")
		return
	case len(in.Password) < 6:
		fail(w, http.StatusBadRequest, "Password must be at least 6 characters")
		return
	case in.Phone != "" && !validation.ValidatePhone(in.Phone):
		fail(w, http.StatusBadRequest, "Invalid phone number")
		return
	case in.Franchise != "" && !validID(in.Franchise):
		fail(w, http.StatusBadRequest, "Invalid franchise id")
		return
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	if _, exists := s.store.accountByEmail(in.Email); exists {
		fail(w, http.StatusConflict, "User already exists")
		return
	}
	var franchise models.Franchise
	if in.Franchise != "" {
		f, ok := s.store.franchises.get(in.Franchise)
		if !ok {
			fail(w, http.StatusNotFound, "Franchise not found")
			return
		}
		franchise = f
	}

	id, seq := s.store.nextID()
	acct := account{
		user:     models.User{ID: id, Name: in.Name, Email: in.Email, Phone: in.Phone, Role: models.RoleManager},
		password: in.Password,
	}
	s.store.accounts.put(id, seq, acct)
	if franchise.ID != "" {
		s.store.bindManager(franchise, acct)
		acct, _ = s.store.accounts.get(id)
	}
	respond(w, http.StatusCreated, map[string]interface{}{"user": acct.user})
}
