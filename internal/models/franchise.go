// internal/models/franchise.go
package models

type Franchise struct {
	ID            string `json:"_id"`
	Name          string `json:"name"`
	Address       string `json:"address"`
	ContactNumber string `json:"contactNumber"`
	Email         string `json:"email"`
	Manager       Ref    `json:"manager"`
}

// FranchiseInput creates a franchise without a manager binding.
type FranchiseInput struct {
	Name          string `json:"name"`
	Address       string `json:"address"`
	ContactNumber string `json:"contactNumber"`
	Email         string `json:"email"`
}

type AssignManagerRequest struct {
	FranchiseID string `json:"franchiseId"`
	ManagerID   string `json:"managerId"`
}

type FranchiseStats struct {
	TotalOrders     int     `json:"totalOrders"`
	PendingOrders   int     `json:"pendingOrders"`
	DeliveredOrders int     `json:"deliveredOrders"`
	CancelledOrders int     `json:"cancelledOrders"`
	TotalRevenue    float64 `json:"totalRevenue"`
}
