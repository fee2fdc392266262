package models

import (
	"testing"
	"time"
)

func TestAlertDedupHashStable(t *testing.T) {
	detectedAt := time.Date(2025, 6, 15, 9, 30, 0, 0, time.UTC)
	src := int64(42)

	a := Alert{VehicleID: 7, Type: AlertOverconsumption, SourceID: &src, DetectedAt: detectedAt}
	b := Alert{VehicleID: 7, Type: AlertOverconsumption, SourceID: &src, DetectedAt: detectedAt.Add(5 * time.Hour)}

	if a.DedupHash() != b.DedupHash() {
		t.Fatalf("same vehicle, type, source and day must hash identically")
	}
	if len(a.DedupHash()) != 64 {
		t.Fatalf("expected a 64-char hex digest, got %d chars", len(a.DedupHash()))
	}
}

func TestAlertDedupHashDistinguishes(t *testing.T) {
	detectedAt := time.Date(2025, 6, 15, 9, 30, 0, 0, time.UTC)
	src := int64(42)
	otherSrc := int64(43)

	base := Alert{VehicleID: 7, Type: AlertOverconsumption, SourceID: &src, DetectedAt: detectedAt}

	variants := []Alert{
		{VehicleID: 8, Type: AlertOverconsumption, SourceID: &src, DetectedAt: detectedAt},
		{VehicleID: 7, Type: AlertFuelMissing, SourceID: &src, DetectedAt: detectedAt},
		{VehicleID: 7, Type: AlertOverconsumption, SourceID: &otherSrc, DetectedAt: detectedAt},
		{VehicleID: 7, Type: AlertOverconsumption, SourceID: &src, DetectedAt: detectedAt.AddDate(0, 0, 1)},
	}
	for i, v := range variants {
		if v.DedupHash() == base.DedupHash() {
			t.Fatalf("variant %d must produce a different hash", i)
		}
	}
}

func TestAlertDedupHashNilSource(t *testing.T) {
	detectedAt := time.Date(2025, 6, 15, 9, 30, 0, 0, time.UTC)
	src := int64(42)

	withSrc := Alert{VehicleID: 7, Type: AlertImmobilization, SourceID: &src, DetectedAt: detectedAt}
	noSrc := Alert{VehicleID: 7, Type: AlertImmobilization, DetectedAt: detectedAt}

	if withSrc.DedupHash() == noSrc.DedupHash() {
		t.Fatalf("nil source must not collide with a concrete source id")
	}
}
