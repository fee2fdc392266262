package services

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/fleetguard/backend/detection"
	"github.com/fleetguard/backend/models"
	"github.com/nats-io/nats.go"
	"gorm.io/gorm"
)

// RunResult summarizes one detection pass.
type RunResult struct {
	RanAt      time.Time `json:"ranAt"`
	Duration   string    `json:"duration"`
	Evaluated  int       `json:"evaluated"`
	Inserted   int       `json:"inserted"`
	Duplicates int       `json:"duplicates"`
}

// DetectionRunner executes the detection pipeline over a fresh snapshot,
// persists the alerts that were not already known and publishes each new one
// on the NATS alert bus. The detection core itself stays pure; dedup and
// persistence live here.
type DetectionRunner struct {
	db       *gorm.DB
	provider SnapshotProvider
	natsConn *nats.Conn

	mu      sync.Mutex
	lastRun *RunResult
}

// NewDetectionRunner creates a runner over the given store and bus.
func NewDetectionRunner(db *gorm.DB, provider SnapshotProvider, natsConn *nats.Conn) *DetectionRunner {
	return &DetectionRunner{
		db:       db,
		provider: provider,
		natsConn: natsConn,
	}
}

// loadParams maps the operator-edited settings row to detection parameters,
// creating the row with defaults on first use.
func (r *DetectionRunner) loadParams() detection.Params {
	params := detection.DefaultParams()

	var settings models.DetectionSettings
	if err := r.db.First(&settings).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			settings = models.DetectionSettings{ID: 1}
			r.db.Create(&settings)
		}
		return params
	}

	params.OverconsumptionPct = settings.OverconsumptionPct
	params.OdometerGapPct = settings.OdometerGapPct
	params.EnableOdometerCheck = settings.OdometerCheckEnabled
	params.MissingFuelLiters = settings.MissingFuelLiters
	params.PhotoTimeWindowHours = settings.PhotoTimeWindowHours
	params.PhotoDistanceKm = settings.PhotoDistanceKm
	params.ImmobilizationHours = settings.ImmobilizationHours
	params.RollingWindowDays = settings.RollingWindowDays
	return params
}

// RunOnce performs a single detection pass. Serialized: concurrent callers
// queue behind the mutex.
func (r *DetectionRunner) RunOnce() (*RunResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	started := time.Now()
	params := r.loadParams()

	snap, err := r.provider.Snapshot(params.RollingWindowDays, started)
	if err != nil {
		return nil, fmt.Errorf("snapshot load failed: %w", err)
	}

	alerts := detection.Run(snap, params, started)

	inserted, duplicates := 0, 0
	for i := range alerts {
		alert := alerts[i]
		alert.Hash = alert.DedupHash()

		var count int64
		r.db.Model(&models.Alert{}).Where("hash = ?", alert.Hash).Count(&count)
		if count > 0 {
			duplicates++
			continue
		}

		if err := r.db.Create(&alert).Error; err != nil {
			log.Printf("⚠️ Failed to insert alert for vehicle %d: %v", alert.VehicleID, err)
			continue
		}
		inserted++
		r.publish(&alert)
	}

	result := &RunResult{
		RanAt:      started,
		Duration:   time.Since(started).String(),
		Evaluated:  len(alerts),
		Inserted:   inserted,
		Duplicates: duplicates,
	}
	r.lastRun = result

	log.Printf("🔍 Detection pass: %d alert(s) evaluated, %d inserted, %d duplicate(s) in %s",
		result.Evaluated, result.Inserted, result.Duplicates, result.Duration)
	return result, nil
}

// publish pushes a freshly inserted alert on the bus, subject alerts.<vehicleID>
func (r *DetectionRunner) publish(alert *models.Alert) {
	if r.natsConn == nil {
		return
	}
	payload, err := json.Marshal(alert)
	if err != nil {
		return
	}
	subject := fmt.Sprintf("alerts.%d", alert.VehicleID)
	if err := r.natsConn.Publish(subject, payload); err != nil {
		log.Printf("⚠️ Failed to publish alert on %s: %v", subject, err)
	}
}

// LastRun returns the result of the most recent pass, or nil.
func (r *DetectionRunner) LastRun() *RunResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastRun
}

// Start launches the periodic scheduler. interval <= 0 disables it.
func (r *DetectionRunner) Start(interval time.Duration, stop <-chan struct{}) {
	if interval <= 0 {
		log.Println("🔍 Periodic detection disabled")
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if _, err := r.RunOnce(); err != nil {
					log.Printf("⚠️ Scheduled detection pass failed: %v", err)
				}
			case <-stop:
				return
			}
		}
	}()
	log.Printf("🔍 Periodic detection every %s", interval)
}
