package customer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- Mocks ---

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) GetByID(ctx context.Context, id uuid.UUID) (*Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Customer), args.Error(1)
}

func (m *MockRepository) FindOneByNameContaining(ctx context.Context, name string) (*Customer, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Customer), args.Error(1)
}

func (m *MockRepository) Create(ctx context.Context, c *Customer) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockRepository) Search(ctx context.Context, name string, limit, page int32, sortBy, direction string) ([]*Customer, int64, error) {
	args := m.Called(ctx, name, limit, page, sortBy, direction)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*Customer), args.Get(1).(int64), args.Error(2)
}

func (m *MockRepository) DeleteByIDs(ctx context.Context, ids []uuid.UUID) error {
	args := m.Called(ctx, ids)
	return args.Error(0)
}

func (m *MockRepository) RecordOrder(ctx context.Context, customerID uuid.UUID, orderCreatedAt time.Time) error {
	args := m.Called(ctx, customerID, orderCreatedAt)
	return args.Error(0)
}

// --- Tests ---

func TestService_FindOrCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("ExistingMatch_IgnoresContactFields", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := NewService(mockRepo)

		existing := &Customer{
			ID:          uuid.New(),
			Name:        "Nguyễn Văn A",
			PhoneNumber: "0901234567",
		}
		mockRepo.On("FindOneByNameContaining", ctx, "Văn A").Return(existing, nil)

		c, created, err := svc.FindOrCreate(ctx, CreateCustomerInput{
			Name:        "Văn A",
			PhoneNumber: "0987654321", // differs from the stored number
		})
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, existing.ID, c.ID)
		assert.Equal(t, "0901234567", c.PhoneNumber)
		mockRepo.AssertNotCalled(t, "Create")
	})

	t.Run("NoMatch_CreatesCustomer", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := NewService(mockRepo)

		mockRepo.On("FindOneByNameContaining", ctx, "Trần B").Return(nil, nil)
		mockRepo.On("Create", ctx, mock.AnythingOfType("*customer.Customer")).Return(nil)

		c, created, err := svc.FindOrCreate(ctx, CreateCustomerInput{
			Name:        "Trần B",
			PhoneNumber: "0911222333",
			Email:       "b@example.com",
		})
		require.NoError(t, err)
		assert.True(t, created)
		assert.Equal(t, "Trần B", c.Name)
		assert.Equal(t, "0911222333", c.PhoneNumber)
		assert.NotEqual(t, uuid.Nil, c.ID)
		mockRepo.AssertExpectations(t)
	})

	t.Run("BlankName", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := NewService(mockRepo)

		_, _, err := svc.FindOrCreate(ctx, CreateCustomerInput{Name: "   "})
		assert.ErrorIs(t, err, ErrInvalidInput)
		mockRepo.AssertNotCalled(t, "FindOneByNameContaining")
	})

	t.Run("LookupError", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := NewService(mockRepo)

		mockRepo.On("FindOneByNameContaining", ctx, "A").Return(nil, errors.New("db error"))
		_, _, err := svc.FindOrCreate(ctx, CreateCustomerInput{Name: "A"})
		assert.Error(t, err)
	})
}

func TestService_Search(t *testing.T) {
	ctx := context.Background()

	t.Run("ClampsPagination", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := NewService(mockRepo)

		mockRepo.On("Search", ctx, "", int32(20), int32(1), "", "").
			Return([]*Customer{}, int64(0), nil)

		res, err := svc.Search(ctx, "", 0, -5, "", "")
		require.NoError(t, err)
		assert.Equal(t, int32(1), res.Page)
		assert.Equal(t, int32(20), res.Size)
	})

	t.Run("PassesThroughResults", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := NewService(mockRepo)

		expected := []*Customer{{ID: uuid.New(), Name: "A"}}
		mockRepo.On("Search", ctx, "a", int32(10), int32(2), "totalOrders", "desc").
			Return(expected, int64(11), nil)

		res, err := svc.Search(ctx, "a", 2, 10, "totalOrders", "desc")
		require.NoError(t, err)
		assert.Equal(t, expected, res.Items)
		assert.Equal(t, int64(11), res.TotalCount)
	})
}

func TestService_RecordOrder(t *testing.T) {
	ctx := context.Background()
	custID := uuid.New()
	now := time.Now()

	mockRepo := new(MockRepository)
	svc := NewService(mockRepo)

	mockRepo.On("RecordOrder", ctx, custID, now).Return(nil)
	assert.NoError(t, svc.RecordOrder(ctx, custID, now))
	mockRepo.AssertExpectations(t)
}
