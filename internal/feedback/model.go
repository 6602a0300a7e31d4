package feedback

import (
	"time"

	"github.com/google/uuid"
)

// Feedback snapshots the product id and name at creation time, the same
// way order items do; later catalog edits leave it untouched.
type Feedback struct {
	ID                  uuid.UUID
	CustomerName        string
	CustomerPhoneNumber string
	Content             string
	ProductID           uuid.UUID
	ProductName         string
	CreatedAt           time.Time
}

type CreateFeedbackInput struct {
	CustomerName        string
	CustomerPhoneNumber string
	Content             string
	ProductName         string
}

type FeedbackListResult struct {
	Items      []*Feedback
	TotalCount int64
	Page       int32
	Size       int32
}
