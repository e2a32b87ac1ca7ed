package models

// Plan is a company's subscription tier. It governs how many distinct users
// the company may initiate contact with per calendar month.
type Plan string

const (
	PlanFree       Plan = "free"
	PlanPro        Plan = "pro"
	PlanEnterprise Plan = "enterprise"
)

// contactLimits is the authoritative per-plan limit table. A limit of 0 means
// unlimited; enforcement code must treat 0 as no limit.
var contactLimits = map[Plan]int{
	PlanFree:       1,
	PlanPro:        100,
	PlanEnterprise: 0,
}

// ContactLimit returns the monthly distinct-user contact limit for the plan.
// The second return is false for unknown plan keys.
func ContactLimit(p Plan) (int, bool) {
	limit, ok := contactLimits[p]
	return limit, ok
}
