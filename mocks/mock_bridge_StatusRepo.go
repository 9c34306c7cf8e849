package mocks

import (
	mock "github.com/stretchr/testify/mock"

	models "github.com/wheelibin/merossd/internal/models"
)

// MockBridgeStatusRepo is a mock type for the StatusRepo type
type MockBridgeStatusRepo struct {
	mock.Mock
}

// Add provides a mock function with given fields: devices
func (_m *MockBridgeStatusRepo) Add(devices []models.DeviceIdentity) error {
	ret := _m.Called(devices)

	var r0 error
	if rf, ok := ret.Get(0).(func([]models.DeviceIdentity) error); ok {
		r0 = rf(devices)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// MarkDeviceAsUpdated provides a mock function with given fields: id, intent
func (_m *MockBridgeStatusRepo) MarkDeviceAsUpdated(id string, intent string) error {
	ret := _m.Called(id, intent)

	var r0 error
	if rf, ok := ret.Get(0).(func(string, string) error); ok {
		r0 = rf(id, intent)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// SetDeviceError provides a mock function with given fields: id, intent, cause
func (_m *MockBridgeStatusRepo) SetDeviceError(id string, intent string, cause error) error {
	ret := _m.Called(id, intent, cause)

	var r0 error
	if rf, ok := ret.Get(0).(func(string, string, error) error); ok {
		r0 = rf(id, intent, cause)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// SetDeviceUnreachable provides a mock function with given fields: id, intent, cause
func (_m *MockBridgeStatusRepo) SetDeviceUnreachable(id string, intent string, cause error) error {
	ret := _m.Called(id, intent, cause)

	var r0 error
	if rf, ok := ret.Get(0).(func(string, string, error) error); ok {
		r0 = rf(id, intent, cause)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// NewMockBridgeStatusRepo creates a new instance of MockBridgeStatusRepo. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMockBridgeStatusRepo(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockBridgeStatusRepo {
	mock := &MockBridgeStatusRepo{}
	mock.Mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}
