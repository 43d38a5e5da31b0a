package stub

import (
	"sort"
	"sync"

	"bluemedix-workflow/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type account struct {
	user     models.User
	password string
}

type record[T any] struct {
	seq   int
	value T
}

// collection keeps documents by id and remembers insertion order.
type collection[T any] struct {
	items map[string]*record[T]
}

func newCollection[T any]() *collection[T] {
	return &collection[T]{items: make(map[string]*record[T])}
}

func (c *collection[T]) put(id string, seq int, v T) {
	if existing, ok := c.items[id]; ok {
		existing.value = v
		return
	}
	c.items[id] = &record[T]{seq: seq, value: v}
}

func (c *collection[T]) get(id string) (T, bool) {
	r, ok := c.items[id]
	if !ok {
		var zero T
		return zero, false
	}
	return r.value, true
}

func (c *collection[T]) list(keep func(T) bool) []T {
	recs := make([]*record[T], 0, len(c.items))
	for _, r := range c.items {
		if keep == nil || keep(r.value) {
			recs = append(recs, r)
		}
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].seq < recs[j].seq })

	out := make([]T, len(recs))
	for i, r := range recs {
		out[i] = r.value
	}
	return out
}

// store is the backend's in-memory system of record.
type store struct {
	mu  sync.Mutex
	seq int

	tokens     map[string]string
	accounts   *collection[account]
	categories *collection[models.Category]
	products   *collection[models.Product]
	franchises *collection[models.Franchise]
	addresses  *collection[models.Address]
	orders     *collection[models.Order]
}

func newStore() *store {
	return &store{
		tokens:     make(map[string]string),
		accounts:   newCollection[account](),
		categories: newCollection[models.Category](),
		products:   newCollection[models.Product](),
		franchises: newCollection[models.Franchise](),
		addresses:  newCollection[models.Address](),
		orders:     newCollection[models.Order](),
	}
}

func (s *store) nextID() (string, int) {
	s.seq++
	return primitive.NewObjectID().Hex(), s.seq
}

func (s *store) accountByEmail(email string) (account, bool) {
	for _, a := range s.accounts.items {
		if a.value.user.Email == email {
			return a.value, true
		}
	}
	return account{}, false
}

// bindManager makes mgr the manager of f, releasing both previous bindings.
// Callers hold mu.
func (s *store) bindManager(f models.Franchise, mgr account) models.Franchise {
	if prev, ok := s.accounts.get(f.Manager.ID); ok && prev.user.ID != mgr.user.ID {
		prev.user.Franchise = models.Ref{}
		s.accounts.put(prev.user.ID, 0, prev)
	}
	if old, ok := s.franchises.get(mgr.user.Franchise.ID); ok && old.ID != f.ID {
		old.Manager = models.Ref{}
		s.franchises.put(old.ID, 0, old)
	}

	f.Manager = models.NewRef(mgr.user.ID)
	mgr.user.Franchise = models.NewRef(f.ID)
	s.franchises.put(f.ID, 0, f)
	s.accounts.put(mgr.user.ID, 0, mgr)
	return f
}

func validID(id string) bool {
	_, err := primitive.ObjectIDFromHex(id)
	return err == nil
}
