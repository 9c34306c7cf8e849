package mocks

import (
	mock "github.com/stretchr/testify/mock"

	models "github.com/wheelibin/merossd/internal/models"
)

// MockBridgeEventPublisher is a mock type for the EventPublisher type
type MockBridgeEventPublisher struct {
	mock.Mock
}

// Publish provides a mock function with given fields: event
func (_m *MockBridgeEventPublisher) Publish(event models.DeviceEvent) {
	_m.Called(event)
}

// NewMockBridgeEventPublisher creates a new instance of MockBridgeEventPublisher. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMockBridgeEventPublisher(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockBridgeEventPublisher {
	mock := &MockBridgeEventPublisher{}
	mock.Mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}
