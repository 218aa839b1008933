package crm

// Task status values.
const (
	TaskTodo       = "TODO"
	TaskInProgress = "IN_PROGRESS"
	TaskDone       = "DONE"
	TaskCanceled   = "CANCELED"
)

// Task priority values.
const (
	PriorityLow    = "LOW"
	PriorityMedium = "MEDIUM"
	PriorityHigh   = "HIGH"
)

// Account is a company record.
type Account struct {
	ID             string `json:"id"`
	OrganizationID string `json:"organizationId"`
	Name           string `json:"name"`
	Domain         string `json:"domain,omitempty"`
	Industry       string `json:"industry,omitempty"`
	Size           string `json:"size,omitempty"`
	Website        string `json:"website,omitempty"`
	Phone          string `json:"phone,omitempty"`
	OwnerID        string `json:"ownerId,omitempty"`
	CreatedAt      string `json:"createdAt"`
	UpdatedAt      string `json:"updatedAt"`
}

// Contact is a person record, optionally linked to an account.
type Contact struct {
	ID             string `json:"id"`
	OrganizationID string `json:"organizationId"`
	AccountID      string `json:"accountId,omitempty"`
	OwnerID        string `json:"ownerId,omitempty"`
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName,omitempty"`
	Email          string `json:"email,omitempty"`
	Phone          string `json:"phone,omitempty"`
	Title          string `json:"title,omitempty"`
	CreatedAt      string `json:"createdAt"`
	UpdatedAt      string `json:"updatedAt"`
}

// PipelineStage is one step of the deal pipeline.
type PipelineStage struct {
	ID             string `json:"id"`
	OrganizationID string `json:"organizationId"`
	Name           string `json:"name"`
	Order          int    `json:"order"`
	Probability    int    `json:"probability"`
	CreatedAt      string `json:"createdAt"`
	UpdatedAt      string `json:"updatedAt"`
}

// Deal is an opportunity moving through the pipeline. Amount is the backend's
// decimal serialized as a string.
type Deal struct {
	ID             string `json:"id"`
	OrganizationID string `json:"organizationId"`
	AccountID      string `json:"accountId,omitempty"`
	ContactID      string `json:"contactId,omitempty"`
	OwnerID        string `json:"ownerId,omitempty"`
	StageID        string `json:"stageId"`
	Name           string `json:"name"`
	Amount         string `json:"amount,omitempty"`
	Currency       string `json:"currency,omitempty"`
	Status         string `json:"status"`
	ExpectedClose  string `json:"expectedClose,omitempty"`
	Probability    int    `json:"probability,omitempty"`
	CreatedAt      string `json:"createdAt"`
	UpdatedAt      string `json:"updatedAt"`
}

// Task is a to-do item, optionally linked to an account, contact, or deal.
type Task struct {
	ID             string `json:"id"`
	OrganizationID string `json:"organizationId"`
	Title          string `json:"title"`
	Description    string `json:"description,omitempty"`
	Status         string `json:"status"`
	Priority       string `json:"priority"`
	DueDate        string `json:"dueDate,omitempty"`
	OwnerID        string `json:"ownerId,omitempty"`
	AccountID      string `json:"accountId,omitempty"`
	ContactID      string `json:"contactId,omitempty"`
	DealID         string `json:"dealId,omitempty"`
	CreatedByID    string `json:"createdById,omitempty"`
	CreatedAt      string `json:"createdAt"`
	UpdatedAt      string `json:"updatedAt"`
}
