// AngelaMos | 2026
// feature.go

package pricing

import (
	"fmt"

	"github.com/carterperez-dev/jobtracker/internal/core"
)

type Feature string

const (
	FeatureJobsPerMonth         Feature = "jobsPerMonth"
	FeatureChatAccess           Feature = "chatAccess"
	FeatureChatMessagesPerMonth Feature = "chatMessagesPerMonth"
	FeatureCalendarAccess       Feature = "calendarAccess"
	FeatureExportData           Feature = "exportData"
	FeaturePrioritySupport      Feature = "prioritySupport"
	FeatureEmailReminders       Feature = "emailReminders"
	FeatureAdvancedAnalytics    Feature = "advancedAnalytics"
	FeatureCustomBranding       Feature = "customBranding"
)

var featureNames = map[Feature]string{
	FeatureJobsPerMonth:         "Job tracking",
	FeatureChatAccess:           "Chat",
	FeatureChatMessagesPerMonth: "Chat messages",
	FeatureCalendarAccess:       "Calendar",
	FeatureExportData:           "Data export",
	FeaturePrioritySupport:      "Priority support",
	FeatureEmailReminders:       "Email reminders",
	FeatureAdvancedAnalytics:    "Advanced analytics",
	FeatureCustomBranding:       "Custom branding",
}

func ParseFeature(s string) (Feature, error) {
	f := Feature(s)
	if _, ok := featureNames[f]; !ok {
		return "", fmt.Errorf("parse feature %q: %w", s, core.ErrInvalidInput)
	}
	return f, nil
}

func (f Feature) DisplayName() string {
	if name, ok := featureNames[f]; ok {
		return name
	}
	return string(f)
}

// HasFeatureAccess reports whether tier enables feature. Quota features count
// as enabled when their limit is non-zero.
func HasFeatureAccess(tier Tier, feature Feature) bool {
	f := GetPricingConfig(tier).Features

	switch feature {
	case FeatureJobsPerMonth:
		return !f.JobsPerMonth.IsZero()
	case FeatureChatMessagesPerMonth:
		return !f.ChatMessagesPerMonth.IsZero()
	case FeatureChatAccess:
		return f.ChatAccess
	case FeatureCalendarAccess:
		return f.CalendarAccess
	case FeatureExportData:
		return f.ExportData
	case FeaturePrioritySupport:
		return f.PrioritySupport
	case FeatureEmailReminders:
		return f.EmailReminders
	case FeatureAdvancedAnalytics:
		return f.AdvancedAnalytics
	case FeatureCustomBranding:
		return f.CustomBranding
	}
	return false
}

type Resource string

const (
	ResourceJobs Resource = "jobs"
	ResourceChat Resource = "chat"
)

func ParseResource(s string) (Resource, error) {
	switch r := Resource(s); r {
	case ResourceJobs, ResourceChat:
		return r, nil
	}
	return "", fmt.Errorf("parse resource %q: %w", s, core.ErrInvalidInput)
}
