package pricing

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockHistory struct {
	mock.Mock
}

func (m *mockHistory) LatestPlannedPrice(userID, itemID int64) (*float64, error) {
	args := m.Called(userID, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*float64), args.Error(1)
}

func ptr[T any](v T) *T { return &v }

func TestResolveDefaultWhenNoPlanned(t *testing.T) {
	h := new(mockHistory)
	r := NewResolver(h)

	res, err := r.Resolve(1, nil, ptr(500.0), ptr(int64(7)))
	require.NoError(t, err)
	assert.Equal(t, 500.0, res.Price)
	assert.Equal(t, SourceDefault, res.Source)
	h.AssertNotCalled(t, "LatestPlannedPrice", mock.Anything, mock.Anything)
}

func TestResolvePlannedWins(t *testing.T) {
	h := new(mockHistory)
	r := NewResolver(h)

	res, err := r.Resolve(1, ptr(300.0), ptr(500.0), ptr(int64(7)))
	require.NoError(t, err)
	assert.Equal(t, 300.0, res.Price)
	assert.Equal(t, SourcePlanned, res.Source)
	h.AssertNotCalled(t, "LatestPlannedPrice", mock.Anything, mock.Anything)
}

func TestResolveHistory(t *testing.T) {
	h := new(mockHistory)
	h.On("LatestPlannedPrice", int64(1), int64(7)).Return(ptr(250.0), nil)
	r := NewResolver(h)

	res, err := r.Resolve(1, nil, nil, ptr(int64(7)))
	require.NoError(t, err)
	assert.Equal(t, 250.0, res.Price)
	assert.Equal(t, SourceHistory, res.Source)
	h.AssertExpectations(t)
}

func TestResolveNothing(t *testing.T) {
	h := new(mockHistory)
	h.On("LatestPlannedPrice", int64(1), int64(7)).Return(nil, nil)
	r := NewResolver(h)

	res, err := r.Resolve(1, nil, nil, ptr(int64(7)))
	require.NoError(t, err)
	assert.Equal(t, 0.0, res.Price)
	assert.Equal(t, SourceNone, res.Source)
	h.AssertExpectations(t)
}

func TestResolveSkipsNonPositive(t *testing.T) {
	h := new(mockHistory)
	h.On("LatestPlannedPrice", int64(2), int64(9)).Return(ptr(120.0), nil)
	r := NewResolver(h)

	res, err := r.Resolve(2, ptr(0.0), ptr(-1.0), ptr(int64(9)))
	require.NoError(t, err)
	assert.Equal(t, 120.0, res.Price)
	assert.Equal(t, SourceHistory, res.Source)
}

func TestResolveWithoutItem(t *testing.T) {
	h := new(mockHistory)
	r := NewResolver(h)

	res, err := r.Resolve(1, nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, SourceNone, res.Source)
	h.AssertNotCalled(t, "LatestPlannedPrice", mock.Anything, mock.Anything)
}

func TestResolveHistoryError(t *testing.T) {
	h := new(mockHistory)
	boom := errors.New("db down")
	h.On("LatestPlannedPrice", int64(1), int64(7)).Return(nil, boom)
	r := NewResolver(h)

	_, err := r.Resolve(1, nil, nil, ptr(int64(7)))
	assert.ErrorIs(t, err, boom)
}
