package coordinator

import (
	"time"

	"github.com/pawsitivecheck/syncconsole/internal/entities"
)

const (
	// FailureTitle heads every failure notification.
	FailureTitle = "Sync Failed"

	DefaultToastDuration = 5 * time.Second
	AllToastDuration     = 8 * time.Second
)

// JobSpec describes how one job kind is dispatched and reported.
type JobSpec struct {
	ID             entities.SyncJobID
	Label          string
	Endpoint       string
	SuccessTitle   string
	FailureMessage string
	ToastDuration  time.Duration
}

var jobSpecs = map[entities.SyncJobID]JobSpec{
	entities.SyncJobProducts: {
		Label:          "Products",
		Endpoint:       "/sync/products",
		SuccessTitle:   "Products Synchronized",
		FailureMessage: "Unable to synchronize product data",
	},
	entities.SyncJobRecalls: {
		Label:          "Recalls",
		Endpoint:       "/sync/recalls",
		SuccessTitle:   "Recalls Synchronized",
		FailureMessage: "Unable to synchronize recall data",
	},
	entities.SyncJobIngredients: {
		Label:          "Ingredients",
		Endpoint:       "/sync/ingredients",
		SuccessTitle:   "Ingredients Synchronized",
		FailureMessage: "Unable to synchronize ingredient data",
	},
	entities.SyncJobLivestock: {
		Label:          "Livestock",
		Endpoint:       "/sync/livestock",
		SuccessTitle:   "Livestock Data Synchronized",
		FailureMessage: "Unable to synchronize livestock data",
	},
	entities.SyncJobFeedNutrition: {
		Label:          "Feed Nutrition",
		Endpoint:       "/sync/feed-nutrition",
		SuccessTitle:   "Feed Nutrition Synchronized",
		FailureMessage: "Unable to synchronize feed nutrition data",
	},
	entities.SyncJobFarmSafety: {
		Label:          "Farm Safety",
		Endpoint:       "/sync/farm-safety",
		SuccessTitle:   "Farm Safety Data Synchronized",
		FailureMessage: "Unable to synchronize farm safety data",
	},
	entities.SyncJobExoticProducts: {
		Label:          "Exotic Products",
		Endpoint:       "/sync/exotic-products",
		SuccessTitle:   "Exotic Products Synchronized",
		FailureMessage: "Unable to synchronize exotic product data",
	},
	entities.SyncJobExoticNutrition: {
		Label:          "Exotic Nutrition",
		Endpoint:       "/sync/exotic-nutrition",
		SuccessTitle:   "Exotic Nutrition Synchronized",
		FailureMessage: "Unable to synchronize exotic nutrition data",
	},
	entities.SyncJobExoticSafety: {
		Label:          "Exotic Safety",
		Endpoint:       "/sync/exotic-safety",
		SuccessTitle:   "Exotic Safety Data Synchronized",
		FailureMessage: "Unable to synchronize exotic safety data",
	},
	entities.SyncJobAll: {
		Label:          "Sync All",
		Endpoint:       "/sync/all",
		SuccessTitle:   "Complete Sync Finished",
		FailureMessage: "Unable to complete full synchronization",
	},
}

// Spec returns the dispatch entry for a job with the default toast durations.
func Spec(id entities.SyncJobID) (JobSpec, bool) {
	return specWithDurations(id, DefaultToastDuration, AllToastDuration)
}

// Specs returns every dispatch entry in display order.
func Specs() []JobSpec {
	specs := make([]JobSpec, 0, len(entities.AllSyncJobs))
	for _, id := range entities.AllSyncJobs {
		spec, _ := Spec(id)
		specs = append(specs, spec)
	}
	return specs
}

func specWithDurations(id entities.SyncJobID, def, all time.Duration) (JobSpec, bool) {
	spec, ok := jobSpecs[id]
	if !ok {
		return JobSpec{}, false
	}
	spec.ID = id
	spec.ToastDuration = def
	if id == entities.SyncJobAll {
		spec.ToastDuration = all
	}
	return spec, true
}
