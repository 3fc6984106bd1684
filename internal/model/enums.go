package model

import "fmt"

// Role is the role of a user account.
type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RoleMember Role = "MEMBER"
)

// Roles lists every role.
var Roles = []Role{RoleAdmin, RoleMember}

// LeadSource is where a lead came from.
type LeadSource string

const (
	SourceWeb      LeadSource = "WEB"
	SourceReferral LeadSource = "REFERRAL"
	SourceEvent    LeadSource = "EVENT"
	SourceOther    LeadSource = "OTHER"
)

// LeadSources lists every lead source.
var LeadSources = []LeadSource{SourceWeb, SourceReferral, SourceEvent, SourceOther}

// LeadStatus is the qualification state of a lead.
type LeadStatus string

const (
	StatusNew       LeadStatus = "NEW"
	StatusQualified LeadStatus = "QUALIFIED"
	StatusLost      LeadStatus = "LOST"
)

// LeadStatuses lists every lead status.
var LeadStatuses = []LeadStatus{StatusNew, StatusQualified, StatusLost}

// Stage is the position of a deal in the sales pipeline.
type Stage string

const (
	StageProspecting Stage = "PROSPECTING"
	StageProposal    Stage = "PROPOSAL"
	StageNegotiation Stage = "NEGOTIATION"
	StageWon         Stage = "WON"
	StageLost        Stage = "LOST"
)

// Stages lists every stage in pipeline order.
var Stages = []Stage{StageProspecting, StageProposal, StageNegotiation, StageWon, StageLost}

// ActivityType is the kind of an activity.
type ActivityType string

const (
	ActivityNote  ActivityType = "NOTE"
	ActivityTask  ActivityType = "TASK"
	ActivityCall  ActivityType = "CALL"
	ActivityEmail ActivityType = "EMAIL"
)

// ActivityTypes lists every activity type.
var ActivityTypes = []ActivityType{ActivityNote, ActivityTask, ActivityCall, ActivityEmail}

// ParseRole parses s into a Role.
func ParseRole(s string) (Role, error) {
	return parseEnum(s, Roles, "role")
}

// ParseLeadSource parses s into a LeadSource.
func ParseLeadSource(s string) (LeadSource, error) {
	return parseEnum(s, LeadSources, "lead source")
}

// ParseLeadStatus parses s into a LeadStatus.
func ParseLeadStatus(s string) (LeadStatus, error) {
	return parseEnum(s, LeadStatuses, "lead status")
}

// ParseStage parses s into a Stage.
func ParseStage(s string) (Stage, error) {
	return parseEnum(s, Stages, "stage")
}

// ParseActivityType parses s into an ActivityType.
func ParseActivityType(s string) (ActivityType, error) {
	return parseEnum(s, ActivityTypes, "activity type")
}

// Matching is exact: enum values are case sensitive on the wire.
func parseEnum[T ~string](s string, values []T, name string) (T, error) {
	for _, v := range values {
		if string(v) == s {
			return v, nil
		}
	}
	var zero T
	return zero, fmt.Errorf("invalid %s %q", name, s)
}
