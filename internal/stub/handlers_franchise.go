package stub

import (
	"net/http"
	"strings"

	"bluemedix-workflow/internal/common/validation"
	"bluemedix-workflow/internal/models"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handleCreateFranchise(w http.ResponseWriter, r *http.Request) {
	var in models.FranchiseInput
	if err := decodeBody(r, &in); err != nil {
		fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	switch {
	case strings.TrimSpace(in.Name) == "":
		fail(w, http.StatusBadRequest, "Franchise name is required")
		return
	case strings.TrimSpace(in.Address) == "":
		fail(w, http.StatusBadRequest, "Franchise address is required")
		return
	case in.Email != "" && !validation.ValidateEmail(in.Email):
		fail(w, http.StatusBadRequest, "Invalid franchise email")
		return
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	id, seq := s.store.nextID()
	f := models.Franchise{
		ID:            id,
		Name:          strings.TrimSpace(in.Name),
		Address:       in.Address,
		ContactNumber: in.ContactNumber,
		Email:         in.Email,
	}
	s.store.franchises.put(id, seq, f)
	respond(w, http.StatusCreated, map[string]interface{}{"franchise": f})
}

func (s *Server) handleListFranchises(w http.ResponseWriter, r *http.Request) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	franchises := s.store.franchises.list(nil)
	out := make([]map[string]interface{}, len(franchises))
	for i, f := range franchises {
		var manager interface{}
		if acct, ok := s.store.accounts.get(f.Manager.ID); ok {
			manager = map[string]interface{}{
				"_id":   acct.user.ID,
				"name":  acct.user.Name,
				"email": acct.user.Email,
			}
		}
		out[i] = populate(f, map[string]interface{}{"manager": manager})
	}
	respond(w, http.StatusOK, map[string]interface{}{"franchises": out})
}

// handleAssignManager binds a manager to a franchise. A franchise holds at
// most one manager and a manager runs at most one franchise, so both previous
// bindings are released.
func (s *Server) handleAssignManager(w http.ResponseWriter, r *http.Request) {
	var in models.AssignManagerRequest
	if err := decodeBody(r, &in); err != nil {
		fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if in.FranchiseID == "" || in.ManagerID == "" {
		fail(w, http.StatusBadRequest, "franchiseId and managerId are required")
		return
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	f, ok := s.store.franchises.get(in.FranchiseID)
	if !ok {
		fail(w, http.StatusNotFound, "Franchise not found")
		return
	}
	mgr, ok := s.store.accounts.get(in.ManagerID)
	if !ok {
		fail(w, http.StatusNotFound, "Manager not found")
		return
	}
	if mgr.user.Role != models.RoleManager {
		fail(w, http.StatusBadRequest, "User is not a manager")
		return
	}

	f = s.store.bindManager(f, mgr)
	respond(w, http.StatusOK, map[string]interface{}{"franchise": f})
}

func (s *Server) handleFranchiseOrders(w http.ResponseWriter, r *http.Request) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	f, ok := s.lookupFranchiseFor(w, r)
	if !ok {
		return
	}
	orders := s.store.orders.list(func(o models.Order) bool { return o.Franchise.ID == f.ID })
	respond(w, http.StatusOK, map[string]interface{}{"orders": orders})
}

func (s *Server) handleFranchiseStats(w http.ResponseWriter, r *http.Request) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	f, ok := s.lookupFranchiseFor(w, r)
	if !ok {
		return
	}

	var stats models.FranchiseStats
	for _, o := range s.store.orders.list(func(o models.Order) bool { return o.Franchise.ID == f.ID }) {
		stats.TotalOrders++
		switch models.DeliveryStatus(o.DeliveryStatus) {
		case models.DeliveryPending:
			stats.PendingOrders++
		case models.DeliveryDelivered:
			stats.DeliveredOrders++
		case models.DeliveryCancelled:
			stats.CancelledOrders++
			continue
		}
		stats.TotalRevenue += o.TotalAmount
	}
	respond(w, http.StatusOK, map[string]interface{}{"stats": stats})
}

// lookupFranchiseFor resolves the {id} franchise and checks that a manager
// caller runs it.
func (s *Server) lookupFranchiseFor(w http.ResponseWriter, r *http.Request) (models.Franchise, bool) {
	id := chi.URLParam(r, "id")
	if !validID(id) {
		fail(w, http.StatusBadRequest, "Invalid franchise id")
		return models.Franchise{}, false
	}
	f, ok := s.store.franchises.get(id)
	if !ok {
		fail(w, http.StatusNotFound, "Franchise not found")
		return models.Franchise{}, false
	}
	if caller := currentUser(r); caller.Role == models.RoleManager && f.Manager.ID != caller.ID {
		fail(w, http.StatusForbidden, "Not the manager of this franchise")
		return models.Franchise{}, false
	}
	return f, true
}
