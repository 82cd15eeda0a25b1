package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yourusername/prepcall-api/internal/model"
)

type SessionRepo struct {
	pool *pgxpool.Pool
}

func NewSessionRepo(pool *pgxpool.Pool) *SessionRepo {
	return &SessionRepo{pool: pool}
}

const sessionColumns = `
	id, user_id, resume_content, resume_file_url,
	job_description_content, job_description_file_url,
	ats_score, ats_report, parsed_resume_data,
	ai_model, interview_type, difficulty, interview_duration,
	status, generated_questions, assistant_id, call_id,
	overall_score, technical_score, communication_score, confidence_score,
	feedback_data, improvement_areas, strengths,
	created_at, updated_at, completed_at`

// Create inserts a new session at intake time
func (r *SessionRepo) Create(ctx context.Context, s *model.Session) (*model.Session, error) {
	status := s.Status
	if status == "" {
		status = model.StatusUploading
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO interview_sessions (user_id, resume_content, resume_file_url,
		                                job_description_content, job_description_file_url, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+sessionColumns,
		s.UserID, s.ResumeContent, s.ResumeFileURL,
		s.JobDescriptionContent, s.JobDescriptionFileURL, status,
	)

	created, err := scanSession(row)
	if err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}
	return created, nil
}

// FindByID returns a session owned by the given user
func (r *SessionRepo) FindByID(ctx context.Context, id, userID uuid.UUID) (*model.Session, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+sessionColumns+`
		FROM interview_sessions
		WHERE id = $1 AND user_id = $2
	`, id, userID)

	s, err := scanSession(row)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding session: %w", err)
	}
	return s, nil
}

// ListByUser returns a user's sessions, most recent first
func (r *SessionRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Session, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+sessionColumns+`
		FROM interview_sessions
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	defer rows.Close()

	var sessions []model.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning session row: %w", err)
		}
		sessions = append(sessions, *s)
	}

	return sessions, nil
}

// UpdateStatus advances a session's status. The transition is validated at
// the point of mutation: skipping or reversing a stage is rejected with
// ErrInvalidTransition, and the write is guarded against a concurrent
// status change.
func (r *SessionRepo) UpdateStatus(ctx context.Context, id, userID uuid.UUID, newStatus string) error {
	if !model.ValidStatus(newStatus) {
		return fmt.Errorf("unknown status %q", newStatus)
	}

	current, err := r.currentStatus(ctx, id, userID)
	if err != nil {
		return err
	}

	if !model.CanTransition(current, newStatus) {
		return &model.ErrInvalidTransition{From: current, To: newStatus}
	}
	if current == newStatus {
		return nil
	}

	result, err := r.pool.Exec(ctx, `
		UPDATE interview_sessions
		SET status = $1, updated_at = now()
		WHERE id = $2 AND user_id = $3 AND status = $4
	`, newStatus, id, userID, current)
	if err != nil {
		return fmt.Errorf("updating status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("session status changed concurrently")
	}
	return nil
}

// SetATSResult stores the analysis output and moves the session to
// ats_ready
func (r *SessionRepo) SetATSResult(ctx context.Context, id, userID uuid.UUID, score int, report, parsedResume []byte, resumeText, jobDescriptionText string) error {
	if err := r.ensureTransition(ctx, id, userID, model.StatusATSReady); err != nil {
		return err
	}

	result, err := r.pool.Exec(ctx, `
		UPDATE interview_sessions
		SET ats_score = $1, ats_report = $2, parsed_resume_data = $3,
		    resume_content = COALESCE(NULLIF($4, ''), resume_content),
		    job_description_content = COALESCE(NULLIF($5, ''), job_description_content),
		    status = $6, updated_at = now()
		WHERE id = $7 AND user_id = $8
	`, score, report, parsedResume, resumeText, jobDescriptionText, model.StatusATSReady, id, userID)
	if err != nil {
		return fmt.Errorf("storing ATS result: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("session not found")
	}
	return nil
}

// SetConfig stores the interview configuration and moves the session to
// configured
func (r *SessionRepo) SetConfig(ctx context.Context, id, userID uuid.UUID, cfg model.InterviewConfig) error {
	if err := r.ensureTransition(ctx, id, userID, model.StatusConfigured); err != nil {
		return err
	}

	result, err := r.pool.Exec(ctx, `
		UPDATE interview_sessions
		SET ai_model = $1, interview_type = $2, difficulty = $3,
		    interview_duration = $4, status = $5, updated_at = now()
		WHERE id = $6 AND user_id = $7
	`, cfg.AIModel, cfg.Type, cfg.Difficulty, cfg.Duration, model.StatusConfigured, id, userID)
	if err != nil {
		return fmt.Errorf("storing interview config: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("session not found")
	}
	return nil
}

// SetQuestions stores generated questions plus the voice assistant id and
// moves the session to interview_ready
func (r *SessionRepo) SetQuestions(ctx context.Context, id, userID uuid.UUID, questions []model.Question, assistantID string) error {
	if err := r.ensureTransition(ctx, id, userID, model.StatusInterviewReady); err != nil {
		return err
	}

	questionsJSON, err := json.Marshal(questions)
	if err != nil {
		return fmt.Errorf("marshaling questions: %w", err)
	}

	result, err := r.pool.Exec(ctx, `
		UPDATE interview_sessions
		SET generated_questions = $1, assistant_id = $2, status = $3, updated_at = now()
		WHERE id = $4 AND user_id = $5
	`, questionsJSON, assistantID, model.StatusInterviewReady, id, userID)
	if err != nil {
		return fmt.Errorf("storing questions: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("session not found")
	}
	return nil
}

// Outcome carries the completion scores and feedback
type Outcome struct {
	OverallScore       int
	TechnicalScore     int
	CommunicationScore int
	ConfidenceScore    int
	FeedbackData       []byte
	ImprovementAreas   []string
	Strengths          []string
}

// Complete finalizes a session with its outcome
func (r *SessionRepo) Complete(ctx context.Context, id, userID uuid.UUID, out Outcome) error {
	if err := r.ensureTransition(ctx, id, userID, model.StatusCompleted); err != nil {
		return err
	}

	result, err := r.pool.Exec(ctx, `
		UPDATE interview_sessions
		SET overall_score = $1, technical_score = $2, communication_score = $3,
		    confidence_score = $4, feedback_data = $5, improvement_areas = $6,
		    strengths = $7, status = $8, completed_at = now(), updated_at = now()
		WHERE id = $9 AND user_id = $10
	`, out.OverallScore, out.TechnicalScore, out.CommunicationScore,
		out.ConfidenceScore, out.FeedbackData, out.ImprovementAreas,
		out.Strengths, model.StatusCompleted, id, userID)
	if err != nil {
		return fmt.Errorf("completing session: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("session not found")
	}
	return nil
}

// SetCallID records the live call identifier once the interview starts
func (r *SessionRepo) SetCallID(ctx context.Context, id, userID uuid.UUID, callID string) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE interview_sessions
		SET call_id = $1, updated_at = now()
		WHERE id = $2 AND user_id = $3
	`, callID, id, userID)
	if err != nil {
		return fmt.Errorf("storing call id: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("session not found")
	}
	return nil
}

// ── Helpers ──────────────────────────────────────────

func (r *SessionRepo) currentStatus(ctx context.Context, id, userID uuid.UUID) (string, error) {
	var status string
	err := r.pool.QueryRow(ctx, `
		SELECT status FROM interview_sessions WHERE id = $1 AND user_id = $2
	`, id, userID).Scan(&status)
	if err == pgx.ErrNoRows {
		return "", fmt.Errorf("session not found")
	}
	if err != nil {
		return "", fmt.Errorf("reading session status: %w", err)
	}
	return status, nil
}

func (r *SessionRepo) ensureTransition(ctx context.Context, id, userID uuid.UUID, to string) error {
	current, err := r.currentStatus(ctx, id, userID)
	if err != nil {
		return err
	}
	if !model.CanTransition(current, to) {
		return &model.ErrInvalidTransition{From: current, To: to}
	}
	return nil
}

// scanSession works for both QueryRow and rows.Next
func scanSession(row pgx.Row) (*model.Session, error) {
	var s model.Session
	var questionsJSON []byte
	var completedAt *time.Time

	err := row.Scan(
		&s.ID, &s.UserID, &s.ResumeContent, &s.ResumeFileURL,
		&s.JobDescriptionContent, &s.JobDescriptionFileURL,
		&s.ATSScore, &s.ATSReport, &s.ParsedResumeData,
		&s.AIModel, &s.InterviewType, &s.Difficulty, &s.InterviewDuration,
		&s.Status, &questionsJSON, &s.AssistantID, &s.CallID,
		&s.OverallScore, &s.TechnicalScore, &s.CommunicationScore, &s.ConfidenceScore,
		&s.FeedbackData, &s.ImprovementAreas, &s.Strengths,
		&s.CreatedAt, &s.UpdatedAt, &completedAt,
	)
	if err != nil {
		return nil, err
	}

	s.CompletedAt = completedAt
	if len(questionsJSON) > 0 {
		if err := json.Unmarshal(questionsJSON, &s.GeneratedQuestions); err != nil {
			return nil, fmt.Errorf("unmarshaling questions: %w", err)
		}
	}
	return &s, nil
}
