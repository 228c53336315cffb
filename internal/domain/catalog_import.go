package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ImportSource tells where the catalog text of an import came from.
type ImportSource string

const (
	ImportSourceInline  ImportSource = "inline"  // Text posted directly in the request body or CLI
	ImportSourceStorage ImportSource = "storage" // Text file previously uploaded to object storage
)

// RejectedLine is a catalog line the parser refused, kept so curators can fix the source.
type RejectedLine struct {
	LineNumber int    `bson:"lineNumber" json:"lineNumber"`
	Line       string `bson:"line" json:"line"`
	Reason     string `bson:"reason" json:"reason"`
}

// CatalogImport stores metadata about one run of the catalog seeder.
// The exercises it produced reference it through Exercise.ImportID.
type CatalogImport struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ImportedBy  primitive.ObjectID `bson:"importedBy" json:"importedBy"`
	Source      ImportSource       `bson:"source" json:"source"`
	S3ObjectKey string             `bson:"s3ObjectKey,omitempty" json:"objectKey,omitempty"`
	TotalLines  int                `bson:"totalLines" json:"totalLines"` // Non-blank, non-comment lines
	Accepted    int                `bson:"accepted" json:"accepted"`
	Rejected    []RejectedLine     `bson:"rejected" json:"rejected"`
	StartedAt   time.Time          `bson:"startedAt" json:"startedAt"`
	CompletedAt time.Time          `bson:"completedAt" json:"completedAt"`
}
