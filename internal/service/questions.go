package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/yourusername/prepcall-api/internal/model"
)

// QuestionsResult tags generated questions with their provenance
type QuestionsResult struct {
	Questions   []model.Question `json:"questions"`
	Fallback    bool             `json:"fallback"`
	RawResponse string           `json:"rawResponse,omitempty"`
}

type questionsEnvelope struct {
	Questions []model.Question `json:"questions"`
}

var questionsSchema = mustSchema(`{
	"type": "object",
	"required": ["questions"],
	"properties": {
		"questions": {
			"type": "array",
			"minItems": 1,
			"items": {
				"type": "object",
				"required": ["question"]
			}
		}
	}
}`)

const questionsPromptTemplate = `
You are an expert interviewer creating a %s level %s interview. Generate exactly %d interview questions.

CANDIDATE'S RESUME:
%s

JOB DESCRIPTION:
%s

INTERVIEW SPECIFICATIONS:
- Type: %s
- Difficulty: %s
- Duration: %d minutes
- Questions needed: %d

QUESTION TYPES BASED ON INTERVIEW TYPE:
%s

DIFFICULTY LEVEL GUIDELINES:
%s

Generate exactly %d questions in JSON format:
{
  "questions": [
    {
      "id": 1,
      "question": "Your question here",
      "type": "technical|behavioral|situational|general",
      "expectedDuration": "2-5 minutes",
      "difficulty": "%s",
      "category": "relevant skill/topic",
      "followUpSuggestions": ["potential follow-up question 1", "potential follow-up question 2"]
    }
  ]
}

IMPORTANT REQUIREMENTS:
1. Make questions specific to the candidate's background and the job requirements
2. Ensure questions are appropriate for the difficulty level
3. Include a mix of question types appropriate for this interview type
4. Each question should be clear, concise, and open-ended
5. Include follow-up suggestions for deeper exploration
6. Avoid yes/no questions
7. Ensure questions can realistically be answered in the expected duration

Respond with ONLY the JSON object, no markdown and no explanation.`

// GenerateQuestions produces the interview question list for a configured
// session. The question count is derived from the duration (about five
// minutes per question). A malformed model reply yields the fallback
// question bank, tagged.
func (c *LLMClient) GenerateQuestions(ctx context.Context, resumeText, jobDescriptionText string, cfg model.InterviewConfig) (*QuestionsResult, error) {
	if resumeText == "" || jobDescriptionText == "" {
		return nil, fmt.Errorf("resume and job description are required")
	}

	interviewType := cfg.Type
	if !model.ValidInterviewType(interviewType) {
		interviewType = model.TypeMixed
	}
	difficulty := cfg.Difficulty
	if !model.ValidDifficulty(difficulty) {
		difficulty = model.DifficultyIntermediate
	}
	duration := cfg.Duration
	if duration <= 0 {
		duration = 60
	}
	count := model.QuestionCount(duration)

	prompt := fmt.Sprintf(questionsPromptTemplate,
		difficulty, interviewType, count,
		resumeText, jobDescriptionText,
		interviewType, difficulty, duration, count,
		questionTypeGuidelines(interviewType),
		difficultyGuidelines(difficulty),
		count, difficulty,
	)

	var envelope questionsEnvelope
	err := c.completeJSON(ctx, chatParams{
		selector:    cfg.AIModel,
		user:        prompt,
		temperature: 0.7,
		maxTokens:   2000,
	}, questionsSchema, &envelope)
	if err != nil {
		log.Warn().Err(err).Str("type", interviewType).Msg("Question reply unusable, substituting fallback bank")
		return &QuestionsResult{
			Questions:   fallbackQuestions(interviewType, count, difficulty),
			Fallback:    true,
			RawResponse: err.Error(),
		}, nil
	}

	return &QuestionsResult{Questions: envelope.Questions}, nil
}

func questionTypeGuidelines(interviewType string) string {
	switch interviewType {
	case model.TypeTechnical:
		return `- 70% Technical/Problem-solving questions
- 20% Experience-based technical questions
- 10% Communication and teamwork in technical contexts
- Include coding problems, system design, or technical concepts
- Ask about specific technologies mentioned in resume/job description`
	case model.TypeBehavioral:
		return `- 60% Behavioral questions using STAR method
- 25% Situational/hypothetical scenarios
- 15% Cultural fit and motivation questions
- Focus on past experiences and how they handled situations
- Explore leadership, teamwork, conflict resolution`
	case model.TypeMixed:
		return `- 40% Technical questions
- 40% Behavioral questions
- 20% Situational and general questions
- Balance technical competency with soft skills assessment
- Include both problem-solving and experience-based questions`
	case model.TypeHR:
		return `- 50% Cultural fit and company alignment
- 30% Career goals and motivation
- 20% General background and communication
- Focus on personality, work style, and company fit
- Explore career aspirations and work preferences`
	default:
		return "Create a balanced mix of technical and behavioral questions."
	}
}

func difficultyGuidelines(difficulty string) string {
	switch difficulty {
	case model.DifficultyBeginner:
		return `- Focus on fundamental concepts and basic applications
- Ask about learning experiences and growth mindset
- Include entry-level scenarios and simple problem-solving
- Avoid complex system design or advanced technical concepts
- Encourage explanation of basic principles`
	case model.DifficultyIntermediate:
		return `- Mix of fundamental and intermediate concepts
- Include real-world application scenarios
- Ask about past project experiences and decision-making
- Include some challenging but not expert-level problems
- Balance theory with practical experience`
	case model.DifficultyAdvanced:
		return `- Focus on complex problem-solving and system thinking
- Include architecture and design decisions
- Ask about leadership, mentoring, and strategic thinking
- Include challenging technical problems and trade-offs
- Explore expertise depth and breadth`
	default:
		return "Adjust question complexity to match the candidate level."
	}
}

// fallbackQuestionBank holds canned questions per interview type, used when
// the model reply cannot be parsed
var fallbackQuestionBank = map[string][]string{
	model.TypeTechnical: {
		"Tell me about a challenging technical problem you solved recently.",
		"How do you approach debugging a complex issue?",
		"Describe your experience with the main technologies mentioned in the job description.",
		"Walk me through your development process for a typical project.",
		"How do you stay updated with new technologies and best practices?",
	},
	model.TypeBehavioral: {
		"Tell me about a time when you had to work with a difficult team member.",
		"Describe a situation where you had to meet a tight deadline.",
		"Give me an example of when you had to learn something new quickly.",
		"Tell me about a time when you made a mistake and how you handled it.",
		"Describe a project you're particularly proud of and why.",
	},
	model.TypeMixed: {
		"Tell me about a technical project that required significant collaboration.",
		"How do you handle conflicting requirements from different stakeholders?",
		"Describe a time when you had to make a technical decision with incomplete information.",
		"Tell me about a time when you had to explain a complex technical concept to a non-technical person.",
		"How do you balance technical debt with feature development?",
	},
	model.TypeHR: {
		"What interests you most about this role and our company?",
		"Where do you see yourself in your career in 5 years?",
		"What kind of work environment do you thrive in?",
		"Tell me about your greatest professional achievement.",
		"Why are you looking to make a change from your current position?",
	},
}

func fallbackQuestions(interviewType string, count int, difficulty string) []model.Question {
	bank, ok := fallbackQuestionBank[interviewType]
	if !ok {
		bank = fallbackQuestionBank[model.TypeMixed]
	}
	if count > len(bank) {
		count = len(bank)
	}

	questions := make([]model.Question, 0, count)
	for i := 0; i < count; i++ {
		questions = append(questions, model.Question{
			ID:               i + 1,
			Question:         bank[i],
			Type:             interviewType,
			Category:         "general",
			Difficulty:       difficulty,
			ExpectedDuration: "3-5 minutes",
			FollowUpSuggestions: []string{
				"Can you provide more specific details about that?",
				"What would you do differently if you faced a similar situation again?",
			},
		})
	}
	return questions
}
