package mocks

import (
	"github.com/brettbedarf/mailfs"
	"github.com/brettbedarf/mailfs/config"
	"github.com/stretchr/testify/mock"
)

// MockProvider implements backends.Provider for testing across packages
type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) NewFactory(cfg *config.Config) (mailfs.FileSystemFactory, error) {
	args := m.Called(cfg)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(mailfs.FileSystemFactory), args.Error(1)
}
