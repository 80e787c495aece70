package models

import "time"

// Question choice type constants
const (
	ChoiceTypeSingle   = "single"
	ChoiceTypeMultiple = "multiple"
)

// Condition type constants
const (
	ConditionShow = "show"
	ConditionHide = "hide"
)

// Request types

type RegisterUserRequest struct {
	Username string `json:"username"`
}

type CreatePollRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type AddQuestionRequest struct {
	Text       string `json:"text"`
	ChoiceType string `json:"choice_type"`
	Default    bool   `json:"default"`
}

type AddChoiceRequest struct {
	Text string `json:"text"`
}

type AddConditionRequest struct {
	QuestionID    int64  `json:"question_id"`
	ChoiceID      int64  `json:"choice_id"`
	ConditionType string `json:"condition_type"`
}

// Response types

type RegisterUserResponse struct {
	UserID string `json:"user_id"`
	Token  string `json:"token"`
}

type MeResponse struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Joined   string `json:"joined"`
}

type CreatePollResponse struct {
	PollID    int64  `json:"poll_id"`
	AuthorKey string `json:"author_key"`
}

type AddQuestionResponse struct {
	QuestionID int64 `json:"question_id"`
}

type AddChoiceResponse struct {
	ChoiceID int64 `json:"choice_id"`
}

type AddConditionResponse struct {
	ConditionID int64 `json:"condition_id"`
}

type PublishPollResponse struct {
	PollID  int64 `json:"poll_id"`
	Visible bool  `json:"visible"`
}

// ReadinessResponse carries the accumulated reasons a poll cannot be
// made visible. Empty Violations means the poll is ready.
type ReadinessResponse struct {
	Ready      bool     `json:"ready"`
	Violations []string `json:"violations,omitempty"`
}

type PollListItem struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Created     string `json:"created"` // humanized, e.g. "3 days ago"
}

type PollListResponse struct {
	Done  bool           `json:"done"`
	Polls []PollListItem `json:"polls"`
}

// QuestionView is what the presentation layer needs to render one
// question form. Message is set on the re-ask path.
type QuestionView struct {
	Question Question `json:"question"`
	Choices  []Choice `json:"choices"`
	Message  string   `json:"message,omitempty"`
}

type QuestionWithChoices struct {
	Question Question `json:"question"`
	Choices  []Choice `json:"choices"`
}

// PollAdminView is the author's view of a draft or visible poll,
// including the current readiness verdict.
type PollAdminView struct {
	Poll       Poll                  `json:"poll"`
	Questions  []QuestionWithChoices `json:"questions"`
	Conditions []Condition           `json:"conditions"`
	Readiness  ReadinessResponse     `json:"readiness"`
}

type AnsweredQuestion struct {
	QuestionID int64   `json:"question_id"`
	Text       string  `json:"text"`
	ChoiceIDs  []int64 `json:"choice_ids"`
}

type PollResultResponse struct {
	PollName  string             `json:"poll_name"`
	Questions []AnsweredQuestion `json:"questions"`
	Started   string             `json:"started"` // humanized
}

// Domain types

type UserAccount struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Token     string    `json:"-"` // Never expose in JSON
	CreatedAt time.Time `json:"created_at"`
}

type Poll struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Visibility  bool      `json:"visibility"`
	CreatedAt   time.Time `json:"created_at"`
}

// Question order within a poll is ascending ID.
type Question struct {
	ID         int64  `json:"id"`
	PollID     int64  `json:"poll_id"`
	Text       string `json:"text"`
	ChoiceType string `json:"choice_type"`
	Default    bool   `json:"default"`
}

type Choice struct {
	ID         int64  `json:"id"`
	QuestionID int64  `json:"question_id"`
	Text       string `json:"text"`
}

// Condition means: if the user picked ChoiceID (on an earlier question),
// apply ConditionType to QuestionID. Unique per (question, choice) pair.
type Condition struct {
	ID            int64  `json:"id"`
	QuestionID    int64  `json:"question_id"`
	ChoiceID      int64  `json:"choice_id"`
	ConditionType string `json:"condition_type"`
}

type PollResult struct {
	ID        int64     `json:"id"`
	PollID    int64     `json:"poll_id"`
	UserID    string    `json:"-"` // Never expose in JSON
	IPHash    *string   `json:"-"` // Never expose in JSON
	CreatedAt time.Time `json:"created_at"`
}

type Answer struct {
	ID           int64     `json:"id"`
	PollResultID int64     `json:"poll_result_id"`
	ChoiceID     int64     `json:"choice_id"`
	CreatedAt    time.Time `json:"created_at"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
