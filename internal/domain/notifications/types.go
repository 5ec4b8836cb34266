package notifications

const (
	TypeReviewAssigned     = "review_assigned"
	TypeReviewSubmitted    = "review_submitted"
	TypeReviewAcknowledged = "review_acknowledged"
	TypeAccountInvited     = "account_invited"
)
