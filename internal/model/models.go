package model

import (
	"time"

	"github.com/google/uuid"
)

// User represents a PrepCall user
type User struct {
	ID          uuid.UUID `json:"id"`
	FirebaseUID string    `json:"-"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Question is one generated interview question. Immutable once generated;
// the voice-setup and interview stages consume it read-only.
type Question struct {
	ID                  int      `json:"id"`
	Question            string   `json:"question"`
	Type                string   `json:"type"`
	Category            string   `json:"category"`
	Difficulty          string   `json:"difficulty"`
	ExpectedDuration    string   `json:"expectedDuration"`
	FollowUpSuggestions []string `json:"followUpSuggestions"`
}

// Session tracks one candidate's journey from intake to interview completion
type Session struct {
	ID     uuid.UUID `json:"id"`
	UserID uuid.UUID `json:"userId"`

	// Intake
	ResumeContent         string `json:"resumeContent,omitempty"`
	ResumeFileURL         string `json:"resumeFileUrl,omitempty"`
	JobDescriptionContent string `json:"jobDescriptionContent,omitempty"`
	JobDescriptionFileURL string `json:"jobDescriptionFileUrl,omitempty"`

	// ATS analysis. The report and parsed resume are raw JSON blobs,
	// their shape is whatever the model produced.
	ATSScore         int    `json:"atsScore,omitempty"`
	ATSReport        []byte `json:"atsReport,omitempty"`
	ParsedResumeData []byte `json:"parsedResumeData,omitempty"`

	// Interview configuration
	AIModel           string `json:"aiModel,omitempty"`
	InterviewType     string `json:"interviewType,omitempty"`
	Difficulty        string `json:"difficulty,omitempty"`
	InterviewDuration int    `json:"interviewDuration,omitempty"`

	Status             string     `json:"status"`
	GeneratedQuestions []Question `json:"generatedQuestions,omitempty"`
	AssistantID        string     `json:"assistantId,omitempty"`
	CallID             string     `json:"callId,omitempty"`

	// Outcome
	OverallScore       int      `json:"overallScore,omitempty"`
	TechnicalScore     int      `json:"technicalScore,omitempty"`
	CommunicationScore int      `json:"communicationScore,omitempty"`
	ConfidenceScore    int      `json:"confidenceScore,omitempty"`
	FeedbackData       []byte   `json:"feedbackData,omitempty"`
	ImprovementAreas   []string `json:"improvementAreas,omitempty"`
	Strengths          []string `json:"strengths,omitempty"`

	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// Draft carries intake data between the resume-upload and job-description
// steps before a durable session exists. Stored in Redis with a TTL.
type Draft struct {
	ID                    string    `json:"id"`
	UserID                string    `json:"userId"`
	ResumeContent         string    `json:"resumeContent,omitempty"`
	ResumeFileURL         string    `json:"resumeFileUrl,omitempty"`
	ResumeFileName        string    `json:"resumeFileName,omitempty"`
	JobDescriptionContent string    `json:"jobDescriptionContent,omitempty"`
	JobDescriptionFileURL string    `json:"jobDescriptionFileUrl,omitempty"`
	CreatedAt             time.Time `json:"createdAt"`
}

// InterviewConfig is the validated configuration for a mock interview
type InterviewConfig struct {
	AIModel    string `json:"aiModel"`
	Type       string `json:"type"`
	Difficulty string `json:"difficulty"`
	Duration   int    `json:"duration"` // minutes
}

// Interview type constants
const (
	TypeTechnical  = "technical"
	TypeBehavioral = "behavioral"
	TypeMixed      = "mixed"
	TypeHR         = "hr"
)

func ValidInterviewType(t string) bool {
	switch t {
	case TypeTechnical, TypeBehavioral, TypeMixed, TypeHR:
		return true
	}
	return false
}

// Difficulty constants
const (
	DifficultyBeginner     = "beginner"
	DifficultyIntermediate = "intermediate"
	DifficultyAdvanced     = "advanced"
)

func ValidDifficulty(d string) bool {
	switch d {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
		return true
	}
	return false
}

// AI model selector constants. Unknown values fall back to ModelChatGPT at
// the point of use.
const (
	ModelChatGPT  = "chatgpt"
	ModelGemini   = "gemini"
	ModelDeepSeek = "deepseek"
)

// Allowed interview durations in minutes
var ValidDurations = []int{15, 30, 45, 60, 75, 90}

func ValidDuration(d int) bool {
	for _, v := range ValidDurations {
		if d == v {
			return true
		}
	}
	return false
}

// QuestionCount maps an interview duration to the number of questions to
// generate, roughly five minutes per question.
func QuestionCount(duration int) int {
	if duration <= 0 {
		return 1
	}
	return (duration + 4) / 5
}
