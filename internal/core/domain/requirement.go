package domain

import "sort"

// Requirement status values. Submissions default to StatusPending when the
// payload carries no status.
const (
	StatusPending  = "Pending"
	StatusApproved = "Approved"
	StatusRejected = "Rejected"
	StatusOnHold   = "On Hold"
)

// RequirementRequiredFields is the field set every submission must carry.
// A full-form submission from the intake UI always provides all of them.
var RequirementRequiredFields = []string{
	"date",
	"projectTitle",
	"requestorName",
	"requestorPhone",
	"requestorEmail",
	"department",
	"sponsorName",
	"sponsorPhone",
	"sponsorEmail",
	"description",
	"dependencies",
	"requestedEndDate",
	"estimatedBudget",
	"priority",
	"projectType",
	"technicalRequirements",
	"businessJustification",
	"riskAssessment",
}

// requirementAllowedFields is the complete writable field set for partial
// updates: every required field plus status. System-managed fields (_id,
// created_at, updated_at) are never client-writable.
var requirementAllowedFields = buildFieldSet(append([]string{"status"}, RequirementRequiredFields...))

// RequirementFilterFields lists the fields a caller may exact-match on when
// listing requirements.
var RequirementFilterFields = map[string]bool{
	"status":     true,
	"priority":   true,
	"department": true,
}

// ValidateNewRequirement checks that all required fields are present,
// returning a ValidationError naming exactly the absent ones.
func ValidateNewRequirement(fields map[string]any) error {
	var missing []string
	for _, f := range RequirementRequiredFields {
		if _, ok := fields[f]; !ok {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return NewMissingFieldsError(missing...)
	}
	return nil
}

// ValidateRequirementUpdate enforces the allow-list policy for partial
// updates: every supplied key must belong to the writable field set.
func ValidateRequirementUpdate(fields map[string]any) error {
	var unknown []string
	for k := range fields {
		if !requirementAllowedFields[k] {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return NewUnknownFieldsError(unknown...)
	}
	return nil
}

func buildFieldSet(fields []string) map[string]bool {
	set := make(map[string]bool, len(fields))
	for _, f := range fields {
		set[f] = true
	}
	return set
}
