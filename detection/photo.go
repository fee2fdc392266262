package detection

import (
	"fmt"
	"math"

	"github.com/fleetguard/backend/models"
)

// CheckPhotoConsistency cross-checks a refuel against the EXIF metadata of
// its proof photo.
//
// Rule A: an OCR-sourced refuel with no photo at all is itself suspicious.
// Rule B: capture time too far from the declared refuel time.
// Rule C: capture location too far from the declared refuel location.
//
// B and C are reported as a single photo_suspect alert carrying the worse of
// the two relative deviations; the description names both when both trip.
func CheckPhotoConsistency(ev *models.FuelEvent, ix *Index, p Params) *models.Alert {
	eventID := ev.ID

	photo, ok := ix.Photo(ev.ID)
	if !ok {
		if ev.EntryMethod != models.EntryOCR {
			return nil
		}
		return &models.Alert{
			VehicleID:   ev.VehicleID,
			DriverID:    ev.DriverID,
			Type:        models.AlertPhotoSuspect,
			Title:       "Photo justificative manquante",
			Description: "Plein saisi par OCR sans aucune photo justificative",
			Severity:    85,
			SourceID:    &eventID,
		}
	}

	timeDevHours := math.Abs(ev.Timestamp.Sub(photo.CapturedAt).Hours())
	timeRatio := 0.0
	if p.PhotoTimeWindowHours > 0 && timeDevHours > p.PhotoTimeWindowHours {
		timeRatio = timeDevHours / p.PhotoTimeWindowHours
	}

	distKm := 0.0
	distRatio := 0.0
	if ev.Lat != nil && ev.Lng != nil && photo.Lat != nil && photo.Lng != nil {
		distKm = DistanceMeters(*ev.Lat, *ev.Lng, *photo.Lat, *photo.Lng) / 1000
		if p.PhotoDistanceKm > 0 && distKm > p.PhotoDistanceKm {
			distRatio = distKm / p.PhotoDistanceKm
		}
	}

	if timeRatio == 0 && distRatio == 0 {
		return nil
	}

	worse := timeRatio
	desc := fmt.Sprintf("Photo prise %.1f h avant/après le plein déclaré (seuil %.1f h)", timeDevHours, p.PhotoTimeWindowHours)
	if distRatio > worse {
		worse = distRatio
		desc = fmt.Sprintf("Photo prise à %.1f km du lieu de plein déclaré (seuil %.1f km)", distKm, p.PhotoDistanceKm)
	}
	if timeRatio > 0 && distRatio > 0 {
		desc = fmt.Sprintf("Photo incohérente: %.1f h d'écart (seuil %.1f h) et %.1f km du lieu déclaré (seuil %.1f km)",
			timeDevHours, p.PhotoTimeWindowHours, distKm, p.PhotoDistanceKm)
	}

	// Percent beyond the threshold of the worse check
	deviation := (worse - 1) * 100

	return &models.Alert{
		VehicleID:    ev.VehicleID,
		DriverID:     ev.DriverID,
		Type:         models.AlertPhotoSuspect,
		Title:        "Photo de plein suspecte",
		Description:  desc,
		Severity:     clampScore(40 + 20*worse),
		DeviationPct: &deviation,
		SourceID:     &eventID,
	}
}
