package review

import "time"

type CycleInput struct {
	Name               string
	StartDate          time.Time
	EndDate            time.Time
	StaffTemplateID    int64
	DeptHeadTemplateID int64
	DepartmentIDs      []int64
}

type Cycle struct {
	ID                 int64     `json:"cycleId"`
	Name               string    `json:"cycleName"`
	StartDate          time.Time `json:"startDate"`
	EndDate            time.Time `json:"endDate"`
	StaffTemplateID    int64     `json:"templateId"`
	DeptHeadTemplateID int64     `json:"deptHeadTemplateId"`
	CreatedAt          time.Time `json:"createdAt"`
}

// DepartmentRoster is the fan-out view of one participating department: its
// head (if any) and the staff assigned to it at cycle-creation time.
type DepartmentRoster struct {
	DepartmentID int64
	HeadUserID   *int64
	StaffIDs     []int64
}

// ReviewSpec is one review row the fan-out will create.
type ReviewSpec struct {
	RevieweeID int64
	ReviewerID int64
	TemplateID int64
}

type Review struct {
	ID                      int64      `json:"reviewId"`
	CycleID                 int64      `json:"cycleId"`
	RevieweeID              int64      `json:"revieweeId"`
	ReviewerID              int64      `json:"reviewerId"`
	TemplateID              int64      `json:"templateId"`
	Status                  Status     `json:"status"`
	OverallComments         *string    `json:"overallComments"`
	AISummary               *string    `json:"aiSummary"`
	AcknowledgementComments *string    `json:"acknowledgementComments"`
	SubmittedAt             *time.Time `json:"submittedAt"`
	AcknowledgedAt          *time.Time `json:"acknowledgedAt"`
	ReviewerName            string     `json:"reviewerName"`
	RevieweeName            string     `json:"revieweeName"`
	CycleName               string     `json:"cycleName"`
	TemplateName            string     `json:"templateName"`
}

type ReviewerQueueItem struct {
	ReviewID       int64      `json:"reviewId"`
	Status         Status     `json:"status"`
	SubmittedAt    *time.Time `json:"submittedAt"`
	RevieweeName   string     `json:"revieweeName"`
	RevieweeRole   string     `json:"revieweeRole"`
	DepartmentName *string    `json:"departmentName"`
	CycleName      string     `json:"cycleName"`
	StartDate      time.Time  `json:"startDate"`
	EndDate        time.Time  `json:"endDate"`
	TemplateName   string     `json:"templateName"`
}

type RevieweeQueueItem struct {
	ReviewID       int64      `json:"reviewId"`
	Status         Status     `json:"status"`
	SubmittedAt    *time.Time `json:"submittedAt"`
	AcknowledgedAt *time.Time `json:"acknowledgedAt"`
	ReviewerName   string     `json:"reviewerName"`
	CycleName      string     `json:"cycleName"`
	StartDate      time.Time  `json:"startDate"`
	EndDate        time.Time  `json:"endDate"`
	TemplateName   string     `json:"templateName"`
}

type Question struct {
	ID           int64  `json:"questionId"`
	TemplateID   int64  `json:"templateId"`
	QuestionText string `json:"questionText"`
	QuestionType string `json:"questionType"`
	DisplayOrder int    `json:"displayOrder"`
}

// AnswerInput uses the wire field names the SPA submits.
type AnswerInput struct {
	QuestionID   int64   `json:"QuestionID"`
	AnswerText   *string `json:"AnswerText,omitempty"`
	AnswerRating *int    `json:"AnswerRating,omitempty"`
}

type Answer struct {
	ID           int64   `json:"answerId"`
	ReviewID     int64   `json:"reviewId"`
	QuestionID   int64   `json:"questionId"`
	AnswerText   *string `json:"answerText"`
	AnswerRating *int    `json:"answerRating"`
}

type Detail struct {
	Review    Review     `json:"review"`
	Questions []Question `json:"questions"`
	Answers   []Answer   `json:"answers"`
}

// header is the slice of a review Submit and Acknowledge operate on.
type header struct {
	ID           int64
	Status       Status
	TemplateID   int64
	RevieweeID   int64
	ReviewerID   int64
	RevieweeName string
}
