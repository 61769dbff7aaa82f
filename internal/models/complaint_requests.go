package models

// CreateComplaintRequest is the student submission payload. The attachment
// travels separately as multipart content.
type CreateComplaintRequest struct {
	Subject     string `json:"subject" validate:"required,max=200"`
	Type        string `json:"type" validate:"required,max=100"`
	Description string `json:"description" validate:"required"`
}

// UpdateStatusRequest changes a complaint's lifecycle status.
type UpdateStatusRequest struct {
	Status ComplaintStatus `json:"status" validate:"required"`
}

// AssignComplaintRequest binds a complaint to a staff member. A null staff id
// clears the assignment.
type AssignComplaintRequest struct {
	StaffID *string `json:"staff_id"`
}

// AddCommentRequest appends an admin note to a complaint thread.
type AddCommentRequest struct {
	Body string `json:"body" validate:"required,max=2000"`
}

// UpdateSettingsRequest carries a batch of key/value settings.
type UpdateSettingsRequest struct {
	Settings map[string]string `json:"settings" validate:"required,min=1"`
}
