package mocks

import (
	context "context"

	meross "github.com/wheelibin/merossd/internal/meross"

	mock "github.com/stretchr/testify/mock"

	models "github.com/wheelibin/merossd/internal/models"
)

// MockBridgeLightService is a mock type for the LightService type
type MockBridgeLightService struct {
	mock.Mock
}

// AddDevice provides a mock function with given fields: device
func (_m *MockBridgeLightService) AddDevice(device models.DeviceIdentity) {
	_m.Called(device)
}

// Probe provides a mock function with given fields: ctx, device
func (_m *MockBridgeLightService) Probe(ctx context.Context, device models.DeviceIdentity) (meross.Response, error) {
	ret := _m.Called(ctx, device)

	var r0 meross.Response
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, models.DeviceIdentity) (meross.Response, error)); ok {
		return rf(ctx, device)
	}
	if rf, ok := ret.Get(0).(func(context.Context, models.DeviceIdentity) meross.Response); ok {
		r0 = rf(ctx, device)
	} else {
		r0 = ret.Get(0).(meross.Response)
	}

	if rf, ok := ret.Get(1).(func(context.Context, models.DeviceIdentity) error); ok {
		r1 = rf(ctx, device)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// SetBrightness provides a mock function with given fields: ctx, device, levelRaw
func (_m *MockBridgeLightService) SetBrightness(ctx context.Context, device models.DeviceIdentity, levelRaw int) error {
	ret := _m.Called(ctx, device, levelRaw)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, models.DeviceIdentity, int) error); ok {
		r0 = rf(ctx, device, levelRaw)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// SetBrightnessWithOnOff provides a mock function with given fields: ctx, device, levelRaw
func (_m *MockBridgeLightService) SetBrightnessWithOnOff(ctx context.Context, device models.DeviceIdentity, levelRaw int) error {
	ret := _m.Called(ctx, device, levelRaw)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, models.DeviceIdentity, int) error); ok {
		r0 = rf(ctx, device, levelRaw)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// SetColorXY provides a mock function with given fields: ctx, device, x, y
func (_m *MockBridgeLightService) SetColorXY(ctx context.Context, device models.DeviceIdentity, x float64, y float64) error {
	ret := _m.Called(ctx, device, x, y)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, models.DeviceIdentity, float64, float64) error); ok {
		r0 = rf(ctx, device, x, y)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// SetHueSaturation provides a mock function with given fields: ctx, device, hue254, sat254
func (_m *MockBridgeLightService) SetHueSaturation(ctx context.Context, device models.DeviceIdentity, hue254 int, sat254 int) error {
	ret := _m.Called(ctx, device, hue254, sat254)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, models.DeviceIdentity, int, int) error); ok {
		r0 = rf(ctx, device, hue254, sat254)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// SetLight provides a mock function with given fields: ctx, device, levelRaw, hue254, sat254, withOnOff
func (_m *MockBridgeLightService) SetLight(ctx context.Context, device models.DeviceIdentity, levelRaw int, hue254 int, sat254 int, withOnOff bool) error {
	ret := _m.Called(ctx, device, levelRaw, hue254, sat254, withOnOff)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, models.DeviceIdentity, int, int, int, bool) error); ok {
		r0 = rf(ctx, device, levelRaw, hue254, sat254, withOnOff)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// SetPower provides a mock function with given fields: ctx, device, on
func (_m *MockBridgeLightService) SetPower(ctx context.Context, device models.DeviceIdentity, on bool) error {
	ret := _m.Called(ctx, device, on)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, models.DeviceIdentity, bool) error); ok {
		r0 = rf(ctx, device, on)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// State provides a mock function with given fields: deviceID
func (_m *MockBridgeLightService) State(deviceID string) models.LightState {
	ret := _m.Called(deviceID)

	var r0 models.LightState
	if rf, ok := ret.Get(0).(func(string) models.LightState); ok {
		r0 = rf(deviceID)
	} else {
		r0 = ret.Get(0).(models.LightState)
	}

	return r0
}

// NewMockBridgeLightService creates a new instance of MockBridgeLightService. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMockBridgeLightService(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockBridgeLightService {
	mock := &MockBridgeLightService{}
	mock.Mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}
