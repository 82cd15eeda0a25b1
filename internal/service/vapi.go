package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/yourusername/prepcall-api/internal/model"
)

// AssistantSetup is the result of preparing a voice interview. Managed mode
// fills AssistantID; inline mode fills InlineConfig and PublicKey so the
// client can start the call itself.
type AssistantSetup struct {
	AssistantID   string          `json:"assistantId,omitempty"`
	PhoneNumberID string          `json:"phoneNumberId,omitempty"`
	InlineConfig  json.RawMessage `json:"inlineConfig,omitempty"`
	PublicKey     string          `json:"publicKey,omitempty"`
}

// VoiceProvider prepares a voice-agent session for an interview. The two
// implementations cover the platform's two integration styles: a
// server-created assistant and an inline client-side configuration.
type VoiceProvider interface {
	PrepareInterview(ctx context.Context, sessionID string, questions []model.Question, cfg model.InterviewConfig) (*AssistantSetup, error)
}

// ── Managed provider (server-side assistant) ──────────

// VapiClient wraps the Vapi REST API
type VapiClient struct {
	privateKey    string
	phoneNumberID string
	baseURL       string
	client        *http.Client
}

func NewVapiClient(privateKey, phoneNumberID, baseURL string) *VapiClient {
	return &VapiClient{
		privateKey:    privateKey,
		phoneNumberID: phoneNumberID,
		baseURL:       baseURL,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// assistantPayload is the Vapi assistant creation body
type assistantPayload struct {
	Name                  string         `json:"name"`
	Model                 assistantModel `json:"model"`
	Voice                 assistantVoice `json:"voice"`
	FirstMessage          string         `json:"firstMessage"`
	EndCallMessage        string         `json:"endCallMessage"`
	EndCallPhrases        []string       `json:"endCallPhrases"`
	RecordingEnabled      bool           `json:"recordingEnabled"`
	MaxDurationSeconds    int            `json:"maxDurationSeconds"`
	SilenceTimeoutSeconds int            `json:"silenceTimeoutSeconds"`
	ClientMessages        []string       `json:"clientMessages"`
	ServerMessages        []string       `json:"serverMessages"`
	Metadata              map[string]any `json:"metadata"`
}

type assistantModel struct {
	Provider     string  `json:"provider"`
	Model        string  `json:"model"`
	Temperature  float64 `json:"temperature,omitempty"`
	MaxTokens    int     `json:"maxTokens,omitempty"`
	SystemPrompt string  `json:"systemPrompt,omitempty"`
}

type assistantVoice struct {
	Provider string `json:"provider"`
	VoiceID  string `json:"voiceId"`
}

type assistantResponse struct {
	ID string `json:"id"`
}

// PrepareInterview creates a Vapi assistant loaded with the interview
// script and returns its id.
func (c *VapiClient) PrepareInterview(ctx context.Context, sessionID string, questions []model.Question, cfg model.InterviewConfig) (*AssistantSetup, error) {
	if c.privateKey == "" {
		return nil, fmt.Errorf("voice platform private key not configured")
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("questions are required")
	}

	payload := assistantPayload{
		Name: "Interview Assistant - Session " + sessionID,
		Model: assistantModel{
			Provider:     "openai",
			Model:        "gpt-4o-mini",
			Temperature:  0.7,
			MaxTokens:    500,
			SystemPrompt: BuildInterviewScript(questions, cfg),
		},
		Voice: assistantVoice{
			Provider: "11labs",
			VoiceID:  "burt",
		},
		FirstMessage:   WelcomeMessage(cfg),
		EndCallMessage: "Thank you for completing the interview. You'll receive detailed feedback shortly. Have a great day!",
		EndCallPhrases: []string{
			"end interview", "finish interview", "that's all", "we're done", "goodbye",
		},
		RecordingEnabled:      true,
		MaxDurationSeconds:    (cfg.Duration + 5) * 60, // buffer past the nominal duration
		SilenceTimeoutSeconds: 30,
		ClientMessages: []string{
			"transcript", "hang", "function-call", "speech-update", "metadata", "conversation-update",
		},
		ServerMessages: []string{
			"end-of-call-report", "status-update", "hang", "function-call",
		},
		Metadata: map[string]any{
			"sessionId":     sessionID,
			"interviewType": cfg.Type,
			"difficulty":    cfg.Difficulty,
			"questionCount": len(questions),
		},
	}

	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshaling assistant payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/assistant", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.privateKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling voice platform: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("voice platform returned %d: %s", resp.StatusCode, string(body))
	}

	var assistant assistantResponse
	if err := json.Unmarshal(body, &assistant); err != nil {
		return nil, fmt.Errorf("parsing assistant response: %w", err)
	}

	log.Info().
		Str("assistantId", assistant.ID).
		Str("sessionId", sessionID).
		Int("questions", len(questions)).
		Msg("Voice assistant created")

	return &AssistantSetup{
		AssistantID:   assistant.ID,
		PhoneNumberID: c.phoneNumberID,
	}, nil
}

// ── Inline provider (client-side assistant config) ────

// InlineVoiceProvider returns an assistant configuration the browser starts
// directly with the platform's web SDK instead of a server-created
// assistant.
type InlineVoiceProvider struct {
	publicKey string
}

func NewInlineVoiceProvider(publicKey string) *InlineVoiceProvider {
	return &InlineVoiceProvider{publicKey: publicKey}
}

// inlineAssistantConfig mirrors the web SDK's start() argument
type inlineAssistantConfig struct {
	Name         string         `json:"name"`
	Model        inlineModel    `json:"model"`
	Voice        assistantVoice `json:"voice"`
	FirstMessage string         `json:"firstMessage"`
	Transcriber  transcriber    `json:"transcriber"`
}

type inlineModel struct {
	Provider string        `json:"provider"`
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type transcriber struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
	Language string `json:"language"`
}

func (p *InlineVoiceProvider) PrepareInterview(ctx context.Context, sessionID string, questions []model.Question, cfg model.InterviewConfig) (*AssistantSetup, error) {
	if p.publicKey == "" {
		return nil, fmt.Errorf("voice platform public key not configured")
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("questions are required")
	}

	config := inlineAssistantConfig{
		Name: "Interview Assistant",
		Model: inlineModel{
			Provider: "openai",
			Model:    "gpt-4o-mini",
			Messages: []chatMessage{
				{Role: "system", Content: BuildInterviewScript(questions, cfg)},
			},
		},
		Voice:        assistantVoice{Provider: "11labs", VoiceID: "burt"},
		FirstMessage: WelcomeMessage(cfg),
		Transcriber:  transcriber{Provider: "deepgram", Model: "nova-2", Language: "en"},
	}

	raw, err := json.Marshal(config)
	if err != nil {
		return nil, fmt.Errorf("marshaling inline config: %w", err)
	}

	return &AssistantSetup{
		InlineConfig: raw,
		PublicKey:    p.publicKey,
	}, nil
}

// ── Script builders ───────────────────────────────────

// BuildInterviewScript renders the system prompt that drives the voice
// assistant through the generated questions.
func BuildInterviewScript(questions []model.Question, cfg model.InterviewConfig) string {
	var list strings.Builder
	for i, q := range questions {
		fmt.Fprintf(&list, "%d. %s (Expected duration: %s)\n", i+1, q.Question, q.ExpectedDuration)
	}

	perQuestion := cfg.Duration
	if len(questions) > 0 {
		perQuestion = cfg.Duration / len(questions)
	}

	return fmt.Sprintf(`You are a professional interview assistant conducting a %s interview at %s level.

INTERVIEW CONFIGURATION:
- Type: %s
- Difficulty: %s
- Duration: %d minutes
- Number of questions: %d

INTERVIEW QUESTIONS TO ASK:
%s
INSTRUCTIONS:
1. Be professional, friendly, and encouraging
2. Ask questions one at a time in the order provided
3. Listen carefully to the candidate's responses
4. Ask natural follow-up questions when appropriate
5. Keep track of time and pace the interview accordingly
6. If a candidate's answer is too brief, politely ask for more details
7. If a candidate goes off-topic, gently redirect them
8. Provide brief acknowledgments like "That's interesting" or "I see" between questions
9. Give the candidate a chance to ask questions at the end
10. Keep responses concise and focused on gathering information

BEHAVIORAL GUIDELINES:
- Maintain a warm but professional tone
- Show genuine interest in their responses
- Be patient if they need a moment to think
- Encourage them if they seem nervous
- Stay neutral and avoid expressing strong opinions about their answers

TIMING:
- Aim for approximately %d minutes per question
- Give a gentle time warning if needed
- Save 2-3 minutes at the end for their questions

Remember: your role is to facilitate a positive interview experience while gathering comprehensive information about the candidate's qualifications and fit for the role.`,
		cfg.Type, cfg.Difficulty,
		cfg.Type, cfg.Difficulty, cfg.Duration, len(questions),
		list.String(), perQuestion)
}

// WelcomeMessage is the assistant's opening line
func WelcomeMessage(cfg model.InterviewConfig) string {
	return fmt.Sprintf(`Hello! Welcome to your %s interview. I'm your AI interview assistant, and I'll be conducting your %d-minute interview session today.

Before we begin, please make sure you're in a quiet environment with a good internet connection. You can speak naturally - I'll be listening and asking you questions about your background and experience.

Are you ready to get started with the first question?`, cfg.Type, cfg.Duration)
}
