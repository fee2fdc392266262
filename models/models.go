package models

import (
	"crypto/sha256"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// GeofenceKind enum
type GeofenceKind string

const (
	GeofenceDepot    GeofenceKind = "depot"
	GeofenceStation  GeofenceKind = "station"
	GeofenceRiskZone GeofenceKind = "risk_zone"
)

// ReadingKind enum - moment a fuel level was measured, relative to a trip or refuel
type ReadingKind string

const (
	ReadingBeforeTrip   ReadingKind = "before_trip"
	ReadingAfterTrip    ReadingKind = "after_trip"
	ReadingBeforeRefuel ReadingKind = "before_refuel"
	ReadingAfterRefuel  ReadingKind = "after_refuel"
)

// EntryMethod enum - how a trip or refuel was captured
type EntryMethod string

const (
	EntryGPS      EntryMethod = "gps"
	EntryOCR      EntryMethod = "ocr"
	EntryManuelle EntryMethod = "manuelle"
)

// AlertType enum - detector-assigned type tags
type AlertType string

const (
	AlertRefuelOutsideZone AlertType = "plein_hors_zone"
	AlertPhotoSuspect      AlertType = "photo_suspect"
	AlertFuelMissing       AlertType = "carburant_disparu"
	AlertOverconsumption   AlertType = "surconsommation"
	AlertImmobilization    AlertType = "temps_immobilisation"
	AlertOdometerGap       AlertType = "ecart_kilometrage"
)

// AlertStatus enum
type AlertStatus string

const (
	AlertNew        AlertStatus = "new"
	AlertInProgress AlertStatus = "in_progress"
	AlertResolved   AlertStatus = "resolved"
	AlertDismissed  AlertStatus = "dismissed"
)

// JSONB type for GORM - can handle both objects and arrays
type JSONB struct {
	Data interface{} `json:"-"`
}

// NewJSONB creates a new JSONB from any value
func NewJSONB(v interface{}) JSONB {
	return JSONB{Data: v}
}

// UnmarshalJSON implements json.Unmarshaler
func (j *JSONB) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, &j.Data)
}

// MarshalJSON implements json.Marshaler
func (j JSONB) MarshalJSON() ([]byte, error) {
	if j.Data == nil {
		return []byte("null"), nil
	}
	return json.Marshal(j.Data)
}

func (j JSONB) Value() (driver.Value, error) {
	if j.Data == nil {
		return nil, nil
	}
	return json.Marshal(j.Data)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		j.Data = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, &j.Data)
}

// Vehicle model - one fleet vehicle, immutable for the duration of a detection pass
type Vehicle struct {
	ID          int64   `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	PlateNumber string  `gorm:"column:plate_number;uniqueIndex" json:"plateNumber"`
	Name        *string `gorm:"column:name" json:"name,omitempty"`

	// Rated consumption in liters per 100 km
	NominalConsumption float64 `gorm:"column:nominal_consumption" json:"nominalConsumption"`
	TankCapacity       float64 `gorm:"column:tank_capacity" json:"tankCapacity"`
	InitialFuelLevel   float64 `gorm:"column:initial_fuel_level" json:"initialFuelLevel"`

	IsActive bool    `gorm:"column:is_active;default:true;index" json:"isActive"`
	Site     *string `gorm:"column:site" json:"site,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`

	Trips      []Trip      `gorm:"foreignKey:VehicleID" json:"trips,omitempty"`
	FuelEvents []FuelEvent `gorm:"foreignKey:VehicleID" json:"fuelEvents,omitempty"`
	Alerts     []Alert     `gorm:"foreignKey:VehicleID" json:"alerts,omitempty"`
}

func (Vehicle) TableName() string {
	return "vehicles"
}

// Driver model
type Driver struct {
	ID            int64   `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	FullName      string  `gorm:"column:full_name" json:"fullName"`
	LicenseNumber *string `gorm:"column:license_number;uniqueIndex" json:"licenseNumber,omitempty"`
	IsActive      bool    `gorm:"column:is_active;default:true" json:"isActive"`

	CreatedAt time.Time `gorm:"column:created_at;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func (Driver) TableName() string {
	return "drivers"
}

// Trip model - a completed vehicle trip with its ordered GPS trace
type Trip struct {
	ID        int64    `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	VehicleID int64    `gorm:"column:vehicle_id;index" json:"vehicleId"`
	Vehicle   *Vehicle `gorm:"foreignKey:VehicleID" json:"vehicle,omitempty"`
	DriverID  *int64   `gorm:"column:driver_id;index" json:"driverId,omitempty"`
	Driver    *Driver  `gorm:"foreignKey:DriverID" json:"driver,omitempty"`

	StartTime time.Time `gorm:"column:start_time;index" json:"startTime"`
	EndTime   time.Time `gorm:"column:end_time;index" json:"endTime"`

	DistanceKm  float64     `gorm:"column:distance_km" json:"distanceKm"`
	EntryMethod EntryMethod `gorm:"column:entry_method;default:gps" json:"entryMethod"`

	Points []TripPoint `gorm:"foreignKey:TripID" json:"points,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;default:CURRENT_TIMESTAMP" json:"createdAt"`
}

func (Trip) TableName() string {
	return "trips"
}

// TripPoint model - one GPS fix; Seq starts at 1 and restarts for each trip
type TripPoint struct {
	ID        int64     `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	TripID    int64     `gorm:"column:trip_id;index" json:"tripId"`
	Seq       int       `gorm:"column:seq" json:"seq"`
	Lat       float64   `gorm:"column:lat" json:"lat"`
	Lng       float64   `gorm:"column:lng" json:"lng"`
	Timestamp time.Time `gorm:"column:timestamp" json:"timestamp"`
}

func (TripPoint) TableName() string {
	return "trip_points"
}

// FuelEvent model - a logged refuel
type FuelEvent struct {
	ID        int64    `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	VehicleID int64    `gorm:"column:vehicle_id;index" json:"vehicleId"`
	Vehicle   *Vehicle `gorm:"foreignKey:VehicleID" json:"vehicle,omitempty"`
	DriverID  *int64   `gorm:"column:driver_id;index" json:"driverId,omitempty"`
	Driver    *Driver  `gorm:"foreignKey:DriverID" json:"driver,omitempty"`

	Timestamp time.Time `gorm:"column:timestamp;index" json:"timestamp"`
	Liters    float64   `gorm:"column:liters" json:"liters"`
	UnitPrice float64   `gorm:"column:unit_price" json:"unitPrice"`
	Odometer  float64   `gorm:"column:odometer" json:"odometer"`

	StationName *string  `gorm:"column:station_name" json:"stationName,omitempty"`
	Lat         *float64 `gorm:"column:lat" json:"lat,omitempty"`
	Lng         *float64 `gorm:"column:lng" json:"lng,omitempty"`

	EntryMethod EntryMethod `gorm:"column:entry_method;default:manuelle" json:"entryMethod"`

	Photo *PhotoMetadata `gorm:"foreignKey:FuelEventID" json:"photo,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;default:CURRENT_TIMESTAMP" json:"createdAt"`
}

func (FuelEvent) TableName() string {
	return "fuel_events"
}

// FuelLevelReading model - point-in-time tank level tagged to a trip or refuel.
// An expected reading may simply not exist; detectors that need it skip silently.
type FuelLevelReading struct {
	ID        int64 `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	VehicleID int64 `gorm:"column:vehicle_id;index" json:"vehicleId"`

	Timestamp time.Time   `gorm:"column:timestamp" json:"timestamp"`
	Liters    float64     `gorm:"column:liters" json:"liters"`
	Kind      ReadingKind `gorm:"column:kind;index" json:"kind"`

	TripID      *int64 `gorm:"column:trip_id;index" json:"tripId,omitempty"`
	FuelEventID *int64 `gorm:"column:fuel_event_id;index" json:"fuelEventId,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;default:CURRENT_TIMESTAMP" json:"createdAt"`
}

func (FuelLevelReading) TableName() string {
	return "fuel_level_readings"
}

// Geofence model - circular zone used for containment checks
type Geofence struct {
	ID      int64        `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	Name    string       `gorm:"column:name" json:"name"`
	Kind    GeofenceKind `gorm:"column:kind;index" json:"kind"`
	Lat     float64      `gorm:"column:lat" json:"lat"`
	Lng     float64      `gorm:"column:lng" json:"lng"`
	RadiusM float64      `gorm:"column:radius_m" json:"radiusM"`

	IsActive bool `gorm:"column:is_active;default:true" json:"isActive"`

	CreatedAt time.Time `gorm:"column:created_at;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func (Geofence) TableName() string {
	return "geofences"
}

// PhotoMetadata model - EXIF data extracted from a refuel proof photo
type PhotoMetadata struct {
	ID          int64 `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	FuelEventID int64 `gorm:"column:fuel_event_id;uniqueIndex" json:"fuelEventId"`

	CapturedAt  time.Time `gorm:"column:captured_at" json:"capturedAt"`
	Lat         *float64  `gorm:"column:lat" json:"lat,omitempty"`
	Lng         *float64  `gorm:"column:lng" json:"lng,omitempty"`
	DeviceModel *string   `gorm:"column:device_model" json:"deviceModel,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;default:CURRENT_TIMESTAMP" json:"createdAt"`
}

func (PhotoMetadata) TableName() string {
	return "photo_metadata"
}

// Alert model - one detected anomaly
type Alert struct {
	ID        int64    `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	VehicleID int64    `gorm:"column:vehicle_id;index" json:"vehicleId"`
	Vehicle   *Vehicle `gorm:"foreignKey:VehicleID" json:"vehicle,omitempty"`
	DriverID  *int64   `gorm:"column:driver_id;index" json:"driverId,omitempty"`
	Driver    *Driver  `gorm:"foreignKey:DriverID" json:"driver,omitempty"`

	Type        AlertType `gorm:"column:type;index" json:"type"`
	Title       string    `gorm:"column:title" json:"title"`
	Description string    `gorm:"column:description" json:"description"`

	// Severity score in [0,100]
	Severity int `gorm:"column:severity" json:"severity"`

	DeviationPct  *float64 `gorm:"column:deviation_pct" json:"deviationPct,omitempty"`
	MissingLiters *float64 `gorm:"column:missing_liters" json:"missingLiters,omitempty"`

	// Detector-specific context (distances, ratios, hours) for the dashboard
	Details JSONB `gorm:"column:details;type:jsonb" json:"details"`

	// Source record behind the detection (fuel event or trip id), used for dedup
	SourceID *int64 `gorm:"column:source_id" json:"sourceId,omitempty"`

	DetectedAt time.Time   `gorm:"column:detected_at;index" json:"detectedAt"`
	Status     AlertStatus `gorm:"column:status;default:new;index" json:"status"`

	ResolvedAt     *time.Time `gorm:"column:resolved_at" json:"resolvedAt,omitempty"`
	ResolvedBy     *string    `gorm:"column:resolved_by" json:"resolvedBy,omitempty"`
	ResolutionNote *string    `gorm:"column:resolution_note" json:"resolutionNote,omitempty"`

	Hash string `gorm:"column:hash;uniqueIndex;size:64" json:"-"`

	CreatedAt time.Time `gorm:"column:created_at;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func (Alert) TableName() string {
	return "alerts"
}

// DedupHash keys an alert on (vehicle, type, source record, detection day) so
// repeated pipeline runs over unchanged data do not re-insert it.
func (a *Alert) DedupHash() string {
	var src int64
	if a.SourceID != nil {
		src = *a.SourceID
	}
	data := fmt.Sprintf("%d|%s|%d|%s", a.VehicleID, a.Type, src, a.DetectedAt.UTC().Format("2006-01-02"))
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}

// BeforeCreate fills the dedup hash if the caller did not
func (a *Alert) BeforeCreate(tx *gorm.DB) error {
	if a.Hash == "" {
		a.Hash = a.DedupHash()
	}
	return nil
}

// DetectionSettings model - single-row operator-editable threshold store
type DetectionSettings struct {
	ID int64 `gorm:"primaryKey;column:id" json:"id"`

	OverconsumptionPct   float64 `gorm:"column:overconsumption_pct;default:25" json:"overconsumptionPct"`
	OdometerGapPct       float64 `gorm:"column:odometer_gap_pct;default:10" json:"odometerGapPct"`
	OdometerCheckEnabled bool    `gorm:"column:odometer_check_enabled;default:false" json:"odometerCheckEnabled"`
	MissingFuelLiters    float64 `gorm:"column:missing_fuel_liters;default:5" json:"missingFuelLiters"`
	PhotoTimeWindowHours float64 `gorm:"column:photo_time_window_hours;default:2" json:"photoTimeWindowHours"`
	PhotoDistanceKm      float64 `gorm:"column:photo_distance_km;default:5" json:"photoDistanceKm"`
	ImmobilizationHours  float64 `gorm:"column:immobilization_hours;default:10" json:"immobilizationHours"`
	RollingWindowDays    int     `gorm:"column:rolling_window_days;default:14" json:"rollingWindowDays"`

	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func (DetectionSettings) TableName() string {
	return "detection_settings"
}
