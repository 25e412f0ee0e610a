package entities

import (
	"errors"
	"fmt"
	"strings"
)

// SyncJobID names one of the fixed synchronization job kinds.
type SyncJobID string

const (
	SyncJobProducts        SyncJobID = "products"
	SyncJobRecalls         SyncJobID = "recalls"
	SyncJobIngredients     SyncJobID = "ingredients"
	SyncJobLivestock       SyncJobID = "livestock"
	SyncJobFeedNutrition   SyncJobID = "feed-nutrition"
	SyncJobFarmSafety      SyncJobID = "farm-safety"
	SyncJobExoticProducts  SyncJobID = "exotic-products"
	SyncJobExoticNutrition SyncJobID = "exotic-nutrition"
	SyncJobExoticSafety    SyncJobID = "exotic-safety"
	SyncJobAll             SyncJobID = "all"
)

// ErrUnknownJob is returned when a job name is not part of the enumeration.
var ErrUnknownJob = errors.New("unknown sync job")

// AllSyncJobs lists every job kind in display order.
var AllSyncJobs = []SyncJobID{
	SyncJobProducts,
	SyncJobRecalls,
	SyncJobIngredients,
	SyncJobLivestock,
	SyncJobFeedNutrition,
	SyncJobFarmSafety,
	SyncJobExoticProducts,
	SyncJobExoticNutrition,
	SyncJobExoticSafety,
	SyncJobAll,
}

// ParseSyncJobID validates a raw job name.
func ParseSyncJobID(raw string) (SyncJobID, error) {
	candidate := SyncJobID(strings.ToLower(strings.TrimSpace(raw)))
	for _, id := range AllSyncJobs {
		if id == candidate {
			return id, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownJob, raw)
}

func (id SyncJobID) String() string {
	return string(id)
}

// SyncResult is the body returned by every sync endpoint.
// Optional fields are pointers so that "absent" and zero stay distinct.
type SyncResult struct {
	Message        string             `json:"message"`
	SyncedCount    *int               `json:"syncedCount,omitempty"`
	TotalProcessed *int               `json:"totalProcessed,omitempty"`
	Results        *SyncResultDetails `json:"results,omitempty"`
	Timestamp      string             `json:"timestamp"`
}

// SyncResultDetails is only populated by the "all" job.
type SyncResultDetails struct {
	Products    int      `json:"products"`
	Recalls     int      `json:"recalls"`
	Ingredients int      `json:"ingredients"`
	Errors      []string `json:"errors"`
}

// Errors returns the per-entry error list reported by the server, if any.
func (r *SyncResult) Errors() []string {
	if r == nil || r.Results == nil {
		return nil
	}
	return r.Results.Errors
}

// SyncStatus is the server-reported snapshot of synchronized data.
type SyncStatus struct {
	Database    SyncDatabaseStatus `json:"database"`
	Health      string             `json:"health"`
	LastChecked string             `json:"lastChecked"`
}

type SyncDatabaseStatus struct {
	Products    CategoryStatus `json:"products"`
	Recalls     CategoryStatus `json:"recalls"`
	Ingredients CategoryStatus `json:"ingredients"`
}

type CategoryStatus struct {
	Count    int     `json:"count"`
	LastSync *string `json:"lastSync"`
}
