package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"playhub/internal/models"
	"playhub/internal/storage"
)

// StationRegistry manages station definitions.
type StationRegistry struct {
	store  storage.Store
	logger *zap.Logger
}

// NewStationRegistry builds the registry.
func NewStationRegistry(store storage.Store, logger *zap.Logger) *StationRegistry {
	return &StationRegistry{store: store, logger: logger}
}

// Create validates and inserts a station.
func (r *StationRegistry) Create(ctx context.Context, station *models.Station) error {
	if strings.TrimSpace(station.Name) == "" {
		return ErrStationRequired
	}
	if station.HourlyRate.Sign() <= 0 {
		return ErrInvalidRate
	}
	return r.store.CreateStation(ctx, station)
}

// Update rewrites a station. Rate edits take effect for in-progress sessions
// at close time.
func (r *StationRegistry) Update(ctx context.Context, station *models.Station) error {
	if station.HourlyRate.Sign() <= 0 {
		return ErrInvalidRate
	}
	return r.store.UpdateStation(ctx, station)
}

// Delete removes a station; stations with open sessions are rejected with
// storage.ErrStationBusy.
func (r *StationRegistry) Delete(ctx context.Context, id string) error {
	return r.store.DeleteStation(ctx, id)
}

// SeedDefaults provisions the default floor layout: fifteen PCs at 100/hr
// and ten consoles (five PS5, five Xbox) at 120/hr. It is a no-op when any
// stations already exist.
func (r *StationRegistry) SeedDefaults(ctx context.Context) error {
	existing, err := r.store.ListStations(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	pcRate := decimal.NewFromInt(100)
	consoleRate := decimal.NewFromInt(120)

	var seed []models.Station
	for i := 1; i <= 15; i++ {
		seed = append(seed, models.Station{
			Name:       fmt.Sprintf("PC-%02d", i),
			Type:       models.StationTypePC,
			HourlyRate: pcRate,
			IsActive:   true,
		})
	}
	for i := 1; i <= 5; i++ {
		seed = append(seed, models.Station{
			Name:       fmt.Sprintf("PS5-%02d", i),
			Type:       models.StationTypeConsole,
			HourlyRate: consoleRate,
			IsActive:   true,
		})
	}
	for i := 1; i <= 5; i++ {
		seed = append(seed, models.Station{
			Name:       fmt.Sprintf("XBOX-%02d", i),
			Type:       models.StationTypeConsole,
			HourlyRate: consoleRate,
			IsActive:   true,
		})
	}

	for i := range seed {
		if err := r.store.CreateStation(ctx, &seed[i]); err != nil {
			return err
		}
	}
	r.logger.Info("seeded default stations", zap.Int("count", len(seed)))
	return nil
}

// Get fetches one station.
func (r *StationRegistry) Get(ctx context.Context, id string) (*models.Station, error) {
	return r.store.GetStation(ctx, id)
}

// List returns all stations.
func (r *StationRegistry) List(ctx context.Context) ([]models.Station, error) {
	return r.store.ListStations(ctx)
}
