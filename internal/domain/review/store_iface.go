package review

import "context"

// StoreAPI is the persistence surface the service depends on.
type StoreAPI interface {
	HRAdminID(ctx context.Context) (int64, error)
	DepartmentRosters(ctx context.Context, departmentIDs []int64) ([]DepartmentRoster, error)
	// CreateCycle persists the cycle, its department links and the fanned-out
	// reviews in a single transaction.
	CreateCycle(ctx context.Context, input CycleInput, specs []ReviewSpec) (int64, error)
	ListCycles(ctx context.Context) ([]Cycle, error)
	ReviewerQueue(ctx context.Context, userID int64) ([]ReviewerQueueItem, error)
	RevieweeQueue(ctx context.Context, userID int64) ([]RevieweeQueueItem, error)
	ReviewDetail(ctx context.Context, reviewID int64) (Detail, error)
	ReviewHeader(ctx context.Context, reviewID int64) (header, error)
	QuestionTypes(ctx context.Context, templateID int64) (map[int64]string, error)
	// CompleteReview updates the review and replaces its answers in a single
	// transaction.
	CompleteReview(ctx context.Context, reviewID int64, overallComments, aiSummary string, answers []AnswerInput) error
	AcknowledgeReview(ctx context.Context, reviewID int64, comments string) error
}
