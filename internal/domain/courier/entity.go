package courier

import (
	"context"
	"errors"
	"time"

	common "modaorganica/internal/domain/common"
)

var (
	ErrSenderIncomplete = errors.New("courier: sender data is incomplete")
	ErrGuideRejected    = errors.New("courier: guide rejected")
)

// Party is a sender or recipient on a shipping guide.
type Party struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	City    string `json:"city"`
}

func (p Party) Complete() bool {
	return p.Name != "" && p.Phone != "" && p.Address != ""
}

// GuideRequest asks the courier for a shipping guide.
type GuideRequest struct {
	Sender    Party `json:"sender"`
	Recipient Party `json:"recipient"`

	OrderID       string       `json:"order_id"`
	PackageType   string       `json:"package_type"`
	WeightLb      float64      `json:"weight"`
	DeclaredValue common.Money `json:"declared_value"`
	Notes         string       `json:"notes"`

	DeliveryType string `json:"delivery_type"`
	PickupBranch string `json:"pickup_branch,omitempty"`
}

// Guide is the courier's answer.
type Guide struct {
	TrackingNumber string       `json:"tracking_number"`
	GuideURL       string       `json:"guide_url"`
	EstimatedDays  int          `json:"estimated_days"`
	Cost           common.Money `json:"cost"`
}

type TrackingInfo struct {
	TrackingNumber string    `json:"tracking_number"`
	Status         string    `json:"status"`
	LastUpdate     time.Time `json:"last_update"`
	Location       string    `json:"location"`
}

// GuideService creates guides with the national courier.
type GuideService interface {
	CreateGuide(ctx context.Context, req GuideRequest) (Guide, error)
	Tracking(ctx context.Context, trackingNumber string) (TrackingInfo, error)
}
