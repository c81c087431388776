package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"storycare-server/internal/contract"
	"storycare-server/internal/models"
)

// MockContractStore is a mock type for the contract.Store type
type MockContractStore struct {
	mock.Mock
}

// Get provides a mock function with given fields: ctx, briefID
func (_m *MockContractStore) Get(ctx context.Context, briefID string) (*models.GenerationContract, error) {
	ret := _m.Called(ctx, briefID)

	var r0 *models.GenerationContract
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.GenerationContract)
	}

	return r0, ret.Error(1)
}

// Save provides a mock function with given fields: ctx, c
func (_m *MockContractStore) Save(ctx context.Context, c *models.GenerationContract) error {
	ret := _m.Called(ctx, c)
	return ret.Error(0)
}

// Delete provides a mock function with given fields: ctx, briefID
func (_m *MockContractStore) Delete(ctx context.Context, briefID string) error {
	ret := _m.Called(ctx, briefID)
	return ret.Error(0)
}

// NewMockContractStore creates a new instance of MockContractStore.
func NewMockContractStore(t interface {
	mock.TestingT
	Helper()
}) *MockContractStore {
	m := &MockContractStore{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

var _ contract.Store = (*MockContractStore)(nil)
