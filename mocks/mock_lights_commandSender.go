package mocks

import (
	context "context"

	meross "github.com/wheelibin/merossd/internal/meross"

	mock "github.com/stretchr/testify/mock"

	time "time"
)

// MockLightsCommandSender is a mock type for the commandSender type
type MockLightsCommandSender struct {
	mock.Mock
}

// Send provides a mock function with given fields: ctx, address, secret, namespace, method, payload, timeout
func (_m *MockLightsCommandSender) Send(ctx context.Context, address string, secret string, namespace string, method string, payload interface{}, timeout time.Duration) (meross.Response, error) {
	ret := _m.Called(ctx, address, secret, namespace, method, payload, timeout)

	var r0 meross.Response
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, string, string, string, string, interface{}, time.Duration) (meross.Response, error)); ok {
		return rf(ctx, address, secret, namespace, method, payload, timeout)
	}
	if rf, ok := ret.Get(0).(func(context.Context, string, string, string, string, interface{}, time.Duration) meross.Response); ok {
		r0 = rf(ctx, address, secret, namespace, method, payload, timeout)
	} else {
		r0 = ret.Get(0).(meross.Response)
	}

	if rf, ok := ret.Get(1).(func(context.Context, string, string, string, string, interface{}, time.Duration) error); ok {
		r1 = rf(ctx, address, secret, namespace, method, payload, timeout)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// NewMockLightsCommandSender creates a new instance of MockLightsCommandSender. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMockLightsCommandSender(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockLightsCommandSender {
	mock := &MockLightsCommandSender{}
	mock.Mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}
