// Package services provides business logic services
package services

import (
	"fmt"
	"time"

	"github.com/fleetguard/backend/detection"
	"gorm.io/gorm"
)

// SnapshotProvider supplies the read-only telemetry view a detection pass
// consumes. The database loader implements it; tests can swap in fixtures.
type SnapshotProvider interface {
	Snapshot(windowDays int, now time.Time) (*detection.Snapshot, error)
}

// DBSnapshotProvider loads snapshots from the gorm store.
type DBSnapshotProvider struct {
	DB *gorm.DB
}

// Snapshot materializes active vehicles, their trips (with ordered GPS
// points), fuel events (with photo metadata), level readings and active
// geofences for the trailing window.
func (p *DBSnapshotProvider) Snapshot(windowDays int, now time.Time) (*detection.Snapshot, error) {
	snap := &detection.Snapshot{}

	// Coarse telemetry horizon. The rolling consumption window is narrower
	// and filtered inside the detectors; immobilization needs trips well
	// older than that window, so the horizon never drops below 90 days.
	horizon := windowDays
	if horizon < 90 {
		horizon = 90
	}
	cutoff := now.AddDate(0, 0, -horizon)

	if err := p.DB.Where("is_active = ?", true).Order("id").Find(&snap.Vehicles).Error; err != nil {
		return nil, fmt.Errorf("failed to load vehicles: %w", err)
	}

	if err := p.DB.Preload("Points", func(db *gorm.DB) *gorm.DB {
		return db.Order("seq ASC")
	}).Where("start_time >= ?", cutoff).Order("id").Find(&snap.Trips).Error; err != nil {
		return nil, fmt.Errorf("failed to load trips: %w", err)
	}

	if err := p.DB.Preload("Photo").Where("timestamp >= ?", cutoff).Order("id").Find(&snap.FuelEvents).Error; err != nil {
		return nil, fmt.Errorf("failed to load fuel events: %w", err)
	}

	if err := p.DB.Where("timestamp >= ?", cutoff).Order("id").Find(&snap.LevelReadings).Error; err != nil {
		return nil, fmt.Errorf("failed to load level readings: %w", err)
	}

	if err := p.DB.Where("is_active = ?", true).Order("id").Find(&snap.Geofences).Error; err != nil {
		return nil, fmt.Errorf("failed to load geofences: %w", err)
	}

	return snap, nil
}
