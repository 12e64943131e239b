package shared

// RejectionReason categorizes why a sell command was not applied
type RejectionReason string

const (
	RejectionReasonInvalidRequest       RejectionReason = "INVALID_REQUEST"
	RejectionReasonItemNotFound         RejectionReason = "ITEM_NOT_FOUND"
	RejectionReasonInsufficientStock    RejectionReason = "INSUFFICIENT_STOCK"
	RejectionReasonDuplicateTransaction RejectionReason = "DUPLICATE_TRANSACTION"
	RejectionReasonUnknownError         RejectionReason = "UNKNOWN_ERROR"
)

// OutboxStatus defines projection publishing states
type OutboxStatus string

const (
	OutboxStatusPending         OutboxStatus = "PENDING"
	OutboxStatusProcessed       OutboxStatus = "PROCESSED"
	OutboxStatusFailedToPublish OutboxStatus = "FAILED_TO_PUBLISH"
)
