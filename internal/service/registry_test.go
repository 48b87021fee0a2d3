package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"playhub/internal/models"
	"playhub/internal/storage"
)

func TestSeedDefaultsProvisionsFloorLayout(t *testing.T) {
	store := storage.NewMemory()
	registry := NewStationRegistry(store, zap.NewNop())

	require.NoError(t, registry.SeedDefaults(context.Background()))

	stations, err := store.ListStations(context.Background())
	require.NoError(t, err)
	require.Len(t, stations, 25)

	pcCount, consoleCount := 0, 0
	for _, station := range stations {
		assert.True(t, station.IsActive)
		switch station.Type {
		case models.StationTypePC:
			pcCount++
			assert.True(t, station.HourlyRate.Equal(decimal.NewFromInt(100)),
				"%s should bill 100/hr, got %s", station.Name, station.HourlyRate)
		case models.StationTypeConsole:
			consoleCount++
			assert.True(t, station.HourlyRate.Equal(decimal.NewFromInt(120)),
				"%s should bill 120/hr, got %s", station.Name, station.HourlyRate)
		}
	}
	assert.Equal(t, 15, pcCount)
	assert.Equal(t, 10, consoleCount)
}

func TestSeedDefaultsSkipsPopulatedStore(t *testing.T) {
	store := storage.NewMemory()
	registry := NewStationRegistry(store, zap.NewNop())

	existing := &models.Station{Name: "VIP-01", Type: models.StationTypePC, HourlyRate: decimal.NewFromInt(250), IsActive: true}
	require.NoError(t, store.CreateStation(context.Background(), existing))

	require.NoError(t, registry.SeedDefaults(context.Background()))

	stations, err := store.ListStations(context.Background())
	require.NoError(t, err)
	require.Len(t, stations, 1)
	assert.Equal(t, "VIP-01", stations[0].Name)
}
