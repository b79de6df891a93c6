package session

// Feature identifiers for the practice-management dashboard.
const (
	FeatureDashboard      = "dashboard"
	FeatureAppointments   = "appointments"
	FeatureCases          = "cases"
	FeatureClients        = "clients"
	FeatureTasks          = "tasks"
	FeatureDocuments      = "documents"
	FeatureWiki           = "wiki"
	FeatureCRM            = "crm"
	FeatureHR             = "hr"
	FeatureFinance        = "finance"
	FeatureReports        = "reports"
	FeatureBillingReports = "billing_reports"
	FeatureEmailMarketing = "email_marketing"
	FeatureAnalytics      = "analytics"
)

// Nav group keys, matching the dashboard sidebar sections.
const (
	NavGroupDashboard      = "dashboard"
	NavGroupCases          = "cases"
	NavGroupCRM            = "crm"
	NavGroupHR             = "hr"
	NavGroupFinance        = "finance"
	NavGroupDocuments      = "documents"
	NavGroupWiki           = "wiki"
	NavGroupReports        = "reports"
	NavGroupBillingReports = "billing_reports"
	NavGroupEmailMarketing = "email_marketing"
	NavGroupAnalytics      = "analytics"
)

var (
	anySignedIn = []UserState{
		StateUnverifiedFree, StateUnverifiedTrial,
		StateVerifiedFree, StateVerifiedTrial,
		StateVerifiedPaid, StatePastDue,
	}
	verifiedOnly = []UserState{
		StateVerifiedFree, StateVerifiedTrial, StateVerifiedPaid, StatePastDue,
	}
	paidOnly = []UserState{StateVerifiedPaid}
)

// DefaultAccessPolicy is the dashboard's access table. Reading and basic
// CRUD stay open to every signed-in user; anything that sends email or
// touches money wants a verified address; billing reports, marketing, and
// analytics need a subscription in good standing.
func DefaultAccessPolicy() AccessPolicy {
	return AccessPolicy{
		Features: map[string][]UserState{
			FeatureDashboard:      anySignedIn,
			FeatureAppointments:   anySignedIn,
			FeatureCases:          anySignedIn,
			FeatureClients:        anySignedIn,
			FeatureTasks:          anySignedIn,
			FeatureDocuments:      anySignedIn,
			FeatureWiki:           anySignedIn,
			FeatureCRM:            verifiedOnly,
			FeatureHR:             verifiedOnly,
			FeatureFinance:        verifiedOnly,
			FeatureReports:        verifiedOnly,
			FeatureBillingReports: paidOnly,
			FeatureEmailMarketing: paidOnly,
			FeatureAnalytics:      paidOnly,
		},
		UnverifiedBlockedNavGroups: []string{
			NavGroupCRM,
			NavGroupHR,
			NavGroupFinance,
			NavGroupReports,
			NavGroupBillingReports,
			NavGroupEmailMarketing,
			NavGroupAnalytics,
		},
		UnsubscribedBlockedNavGroups: []string{
			NavGroupBillingReports,
			NavGroupEmailMarketing,
			NavGroupAnalytics,
		},
		BlockedRoutePrefixes: []string{
			"/dashboard/crm",
			"/dashboard/hr",
			"/dashboard/finance",
			"/dashboard/reports",
		},
	}
}
