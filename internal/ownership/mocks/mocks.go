// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 OpenLot Contributors

// Package mocks provides testify mocks for the ownership repositories.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/openlot/openlot/internal/ownership"
)

// MockWalletRepository is a mock implementation of ownership.WalletRepository.
type MockWalletRepository struct {
	mock.Mock
}

// NewMockWalletRepository creates a new mock with expectations asserted
// on test cleanup.
func NewMockWalletRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockWalletRepository {
	m := &MockWalletRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockWalletRepository) Create(ctx context.Context, wallet *ownership.Wallet) error {
	args := m.Called(ctx, wallet)
	return args.Error(0)
}

func (m *MockWalletRepository) Get(ctx context.Context, id int64) (*ownership.Wallet, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ownership.Wallet), args.Error(1)
}

func (m *MockWalletRepository) ListByOwner(ctx context.Context, ownerID int64) ([]*ownership.Wallet, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*ownership.Wallet), args.Error(1)
}

// MockCardRepository is a mock implementation of ownership.CardRepository.
type MockCardRepository struct {
	mock.Mock
}

// NewMockCardRepository creates a new mock with expectations asserted on
// test cleanup.
func NewMockCardRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockCardRepository {
	m := &MockCardRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockCardRepository) Create(ctx context.Context, card *ownership.Card) error {
	args := m.Called(ctx, card)
	return args.Error(0)
}

func (m *MockCardRepository) Get(ctx context.Context, id int64) (*ownership.Card, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ownership.Card), args.Error(1)
}

func (m *MockCardRepository) ListByOwner(ctx context.Context, ownerID int64) ([]*ownership.Card, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*ownership.Card), args.Error(1)
}

// MockCarRepository is a mock implementation of ownership.CarRepository.
type MockCarRepository struct {
	mock.Mock
}

// NewMockCarRepository creates a new mock with expectations asserted on
// test cleanup.
func NewMockCarRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockCarRepository {
	m := &MockCarRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockCarRepository) Create(ctx context.Context, car *ownership.Car) error {
	args := m.Called(ctx, car)
	return args.Error(0)
}

func (m *MockCarRepository) Get(ctx context.Context, id int64) (*ownership.Car, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ownership.Car), args.Error(1)
}

func (m *MockCarRepository) ListByOwner(ctx context.Context, ownerID int64) ([]*ownership.Car, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*ownership.Car), args.Error(1)
}

// MockParkingEventRepository is a mock implementation of
// ownership.ParkingEventRepository.
type MockParkingEventRepository struct {
	mock.Mock
}

// NewMockParkingEventRepository creates a new mock with expectations
// asserted on test cleanup.
func NewMockParkingEventRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockParkingEventRepository {
	m := &MockParkingEventRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockParkingEventRepository) Append(ctx context.Context, carID int64) (*ownership.ParkingEvent, error) {
	args := m.Called(ctx, carID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ownership.ParkingEvent), args.Error(1)
}

func (m *MockParkingEventRepository) ListByCar(ctx context.Context, carID int64) ([]*ownership.ParkingEvent, error) {
	args := m.Called(ctx, carID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*ownership.ParkingEvent), args.Error(1)
}

// Compile-time interface checks.
var (
	_ ownership.WalletRepository       = (*MockWalletRepository)(nil)
	_ ownership.CardRepository         = (*MockCardRepository)(nil)
	_ ownership.CarRepository          = (*MockCarRepository)(nil)
	_ ownership.ParkingEventRepository = (*MockParkingEventRepository)(nil)
)
