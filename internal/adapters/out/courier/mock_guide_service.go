// internal/adapters/out/courier/mock_guide_service.go
package courierout

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	common "modaorganica/internal/domain/common"
	courierdom "modaorganica/internal/domain/courier"
)

// MockGuideService issues fake Cargo Expreso guides (CE-YYYY-NNNNNN) for development.
type MockGuideService struct {
	now func() time.Time

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewMockGuideService() *MockGuideService {
	return &MockGuideService{
		now: time.Now,
		rnd: rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x4345)),
	}
}

// WithClock fixes the clock used for the tracking year and last update.
func (s *MockGuideService) WithClock(now func() time.Time) *MockGuideService {
	if now != nil {
		s.now = now
	}
	return s
}

func (s *MockGuideService) CreateGuide(ctx context.Context, req courierdom.GuideRequest) (courierdom.Guide, error) {
	if err := ctx.Err(); err != nil {
		return courierdom.Guide{}, err
	}
	if !req.Sender.Complete() {
		return courierdom.Guide{}, courierdom.ErrSenderIncomplete
	}

	s.mu.Lock()
	seq := s.rnd.IntN(900000) + 100000
	s.mu.Unlock()

	tracking := fmt.Sprintf("CE-%d-%06d", s.now().Year(), seq)
	return courierdom.Guide{
		TrackingNumber: tracking,
		GuideURL:       fmt.Sprintf("https://storage.example.com/guides/%s.pdf", tracking),
		EstimatedDays:  3,
		Cost:           common.MustParseMoney("36.00"),
	}, nil
}

func (s *MockGuideService) Tracking(ctx context.Context, trackingNumber string) (courierdom.TrackingInfo, error) {
	if err := ctx.Err(); err != nil {
		return courierdom.TrackingInfo{}, err
	}
	tn := strings.TrimSpace(trackingNumber)
	if tn == "" {
		return courierdom.TrackingInfo{}, fmt.Errorf("courier: tracking number is empty")
	}
	return courierdom.TrackingInfo{
		TrackingNumber: tn,
		Status:         "in_transit",
		LastUpdate:     s.now().Add(-2 * time.Hour),
		Location:       "Centro de Distribución Ciudad de Guatemala",
	}, nil
}
