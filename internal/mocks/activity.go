package mocks

import (
	"context"
	"time"

	regDomain "github.com/davicafu/eventreg/internal/registration/domain"
	"github.com/stretchr/testify/mock"
)

// MockActivityLog simula el almacén analítico.
type MockActivityLog struct {
	mock.Mock
}

func (m *MockActivityLog) Record(ctx context.Context, activities []regDomain.Activity) error {
	args := m.Called(ctx, activities)
	return args.Error(0)
}

func (m *MockActivityLog) DailyTrend(ctx context.Context, from, to time.Time) ([]regDomain.DailyActivity, error) {
	args := m.Called(ctx, from, to)
	if trend, ok := args.Get(0).([]regDomain.DailyActivity); ok {
		return trend, args.Error(1)
	}
	return nil, args.Error(1)
}
