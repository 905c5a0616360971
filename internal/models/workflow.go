package models

// WorkflowSchemaVersion guards the shape of persisted workflow state.
// Bump when a field is added or renamed.
const WorkflowSchemaVersion = 1

// WorkflowState is the cross-page hand-off a signed-in user accumulates
// while moving through a segment: the organization picked on the listing
// page, the last registered worker profile, the last disability profile.
// It lives next to the session and is cleared with it on logout.
type WorkflowState struct {
	SchemaVersion     int                `json:"schema_version"`
	SelectedOrg       string             `json:"selected_org,omitempty"`
	WorkerProfile     *DailyWorker       `json:"worker_profile,omitempty"`
	DisabilityProfile *DisabilityProfile `json:"disability_profile,omitempty"`
}

// NewWorkflowState returns an empty state at the current schema version
func NewWorkflowState() *WorkflowState {
	return &WorkflowState{SchemaVersion: WorkflowSchemaVersion}
}
