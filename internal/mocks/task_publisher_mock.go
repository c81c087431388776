package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"storycare-server/internal/messaging"
)

// MockTaskPublisher is a mock type for the messaging.TaskPublisher type
type MockTaskPublisher struct {
	mock.Mock
}

// PublishGenerationTask provides a mock function with given fields: ctx, task
func (_m *MockTaskPublisher) PublishGenerationTask(ctx context.Context, task messaging.GenerationTaskPayload) error {
	ret := _m.Called(ctx, task)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, messaging.GenerationTaskPayload) error); ok {
		r0 = rf(ctx, task)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// Close provides a mock function
func (_m *MockTaskPublisher) Close() error {
	ret := _m.Called()
	return ret.Error(0)
}

// NewMockTaskPublisher creates a new instance of MockTaskPublisher.
func NewMockTaskPublisher(t interface {
	mock.TestingT
	Helper()
}) *MockTaskPublisher {
	m := &MockTaskPublisher{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

var _ messaging.TaskPublisher = (*MockTaskPublisher)(nil)
