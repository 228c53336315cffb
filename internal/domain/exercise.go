// internal/domain/exercise.go
package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BodyRegion is the coarse region of the body an exercise loads.
type BodyRegion string

const (
	BodyRegionLower BodyRegion = "lower"
	BodyRegionUpper BodyRegion = "upper"
	BodyRegionCore  BodyRegion = "core"
	BodyRegionFull  BodyRegion = "full"
)

// ImpactLevel describes joint impact of an exercise.
type ImpactLevel string

const (
	ImpactLow    ImpactLevel = "low"
	ImpactMedium ImpactLevel = "medium"
	ImpactHigh   ImpactLevel = "high"
)

// Environment is where an exercise can be performed.
type Environment string

const (
	EnvironmentGym  Environment = "gym"
	EnvironmentHome Environment = "home"
	EnvironmentAny  Environment = "any"
)

// LoggingOption is a metric a client can log against an exercise.
type LoggingOption string

const (
	LogReps     LoggingOption = "reps"
	LogTime     LoggingOption = "time"
	LogWeight   LoggingOption = "weight"
	LogRPE      LoggingOption = "RPE"
	LogDistance LoggingOption = "distance"
)

// Goal tags attached to exercises.
const (
	GoalStrength    = "strength"
	GoalHypertrophy = "hypertrophy"
	GoalFatLoss     = "fat_loss"
	GoalEndurance   = "endurance"
	GoalMobility    = "mobility"
	GoalRehab       = "rehab"
	GoalPower       = "power"
	GoalPerformance = "performance"
)

// Prescription defaults applied when the catalog line does not specify them.
const (
	DefaultSets        = 3
	DefaultRestSeconds = 60
)

// Exercise represents a single exercise definition in the library.
// The catalog parser fills every field except the persistence ones
// (ID, ImportID, CreatedAt, UpdatedAt).
type Exercise struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ImportID primitive.ObjectID `bson:"importId,omitempty" json:"importId,omitempty"` // Catalog import that produced this record

	Name            string   `bson:"name" json:"name"`
	Modality        string   `bson:"modality" json:"modality"`               // e.g., "strength", "cardio", "mobility"
	MovementPattern string   `bson:"movementPattern" json:"movementPattern"` // e.g., "squat", "horizontal push"
	PrimaryMuscles  []string `bson:"primaryMuscles" json:"primaryMuscles"`
	// Reserved; the catalog format carries no secondary muscles yet.
	SecondaryMuscles []string   `bson:"secondaryMuscles" json:"secondaryMuscles"`
	BodyRegion       BodyRegion `bson:"bodyRegion" json:"bodyRegion"`

	EquipmentCategory string  `bson:"equipmentCategory" json:"equipmentCategory"`
	EquipmentDetail   *string `bson:"equipmentDetail,omitempty" json:"equipmentDetail,omitempty"` // e.g., "Leg Press"
	Difficulty        string  `bson:"difficulty" json:"difficulty"`

	ImpactLevel    ImpactLevel     `bson:"impactLevel" json:"impactLevel"`
	Environment    Environment     `bson:"environment" json:"environment"`
	GoalTags       []string        `bson:"goalTags" json:"goalTags"`
	LoggingOptions []LoggingOption `bson:"loggingOptions" json:"loggingOptions"`

	Sets                 int  `bson:"sets" json:"sets"`
	Reps                 *int `bson:"reps,omitempty" json:"reps,omitempty"`
	RepsUpper            *int `bson:"repsUpper,omitempty" json:"repsUpper,omitempty"` // Upper bound of a rep range ("12–15")
	DurationSeconds      *int `bson:"durationSeconds,omitempty" json:"durationSeconds,omitempty"`
	DurationUpperSeconds *int `bson:"durationUpperSeconds,omitempty" json:"durationUpperSeconds,omitempty"`
	RestSeconds          int  `bson:"restSeconds" json:"restSeconds"`

	DefaultPrescription string `bson:"defaultPrescription" json:"defaultPrescription"` // Verbatim prescription text

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}
