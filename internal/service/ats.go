package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/yourusername/prepcall-api/internal/model"
)

// ── ATS report types ──────────────────────────────────

type SectionScore struct {
	Score       int      `json:"score"`
	Feedback    string   `json:"feedback"`
	Suggestions []string `json:"suggestions"`
}

type KeywordMatches struct {
	Found   []string `json:"found"`
	Missing []string `json:"missing"`
}

// ATSReport is the structured compatibility report between a resume and a
// job description
type ATSReport struct {
	OverallScore              int                     `json:"overallScore"`
	MatchPercentage           int                     `json:"matchPercentage"`
	KeywordMatches            KeywordMatches          `json:"keywordMatches"`
	Sections                  map[string]SectionScore `json:"sections"`
	Strengths                 []string                `json:"strengths"`
	ImprovementAreas          []string                `json:"improvementAreas"`
	Recommendations           []string                `json:"recommendations"`
	EstimatedATSCompatibility string                  `json:"estimatedATSCompatibility"`
	Summary                   string                  `json:"summary"`
}

// ATSResult tags the report with its provenance so callers can tell real
// model output from the substituted fallback.
type ATSResult struct {
	Report      ATSReport `json:"report"`
	Fallback    bool      `json:"fallback"`
	RawResponse string    `json:"rawResponse,omitempty"`
}

// atsReportSchema rejects model replies missing the two scores the rest of
// the journey depends on
var atsReportSchema = mustSchema(`{
	"type": "object",
	"required": ["overallScore", "matchPercentage"],
	"properties": {
		"overallScore": {"type": "number", "minimum": 0, "maximum": 100},
		"matchPercentage": {"type": "number", "minimum": 0, "maximum": 100}
	}
}`)

const atsPromptTemplate = `
Analyze the following resume against the job description to generate a comprehensive ATS (Applicant Tracking System) report.

RESUME:
%s

JOB DESCRIPTION:
%s

Please provide a detailed ATS analysis in the following JSON format:

{
  "overallScore": <number 0-100>,
  "matchPercentage": <number 0-100>,
  "keywordMatches": {
    "found": ["keyword1", "keyword2"],
    "missing": ["keyword3", "keyword4"]
  },
  "sections": {
    "skills": { "score": <number 0-100>, "feedback": "detailed feedback", "suggestions": ["suggestion1", "suggestion2"] },
    "experience": { "score": <number 0-100>, "feedback": "detailed feedback", "suggestions": ["suggestion1", "suggestion2"] },
    "education": { "score": <number 0-100>, "feedback": "detailed feedback", "suggestions": ["suggestion1", "suggestion2"] },
    "formatting": { "score": <number 0-100>, "feedback": "detailed feedback", "suggestions": ["suggestion1", "suggestion2"] }
  },
  "strengths": ["strength1", "strength2"],
  "improvementAreas": ["area1", "area2"],
  "recommendations": ["recommendation1", "recommendation2"],
  "estimatedATSCompatibility": "<High/Medium/Low>",
  "summary": "Overall summary of the resume's performance against this job description"
}

Focus on:
1. Keyword matching between resume and job requirements
2. Skills alignment
3. Experience relevance
4. Education requirements
5. ATS-friendly formatting
6. Missing critical elements
7. Actionable improvement suggestions

Respond with ONLY the JSON object, no markdown and no explanation.`

// GenerateATSReport scores a resume against a job description. On a
// malformed model reply it substitutes a plausible placeholder report and
// tags the result as fallback rather than failing the journey.
func (c *LLMClient) GenerateATSReport(ctx context.Context, resumeText, jobDescriptionText string) (*ATSResult, error) {
	prompt := fmt.Sprintf(atsPromptTemplate, resumeText, jobDescriptionText)

	var report ATSReport
	err := c.completeJSON(ctx, chatParams{
		selector:    model.ModelDeepSeek,
		user:        prompt,
		temperature: 0.3,
		maxTokens:   2000,
	}, atsReportSchema, &report)
	if err != nil {
		log.Warn().Err(err).Msg("ATS report reply unusable, substituting fallback")
		return &ATSResult{
			Report:      fallbackATSReport(),
			Fallback:    true,
			RawResponse: err.Error(),
		}, nil
	}

	return &ATSResult{Report: report}, nil
}

// fallbackATSReport is the placeholder served when the model reply cannot
// be parsed. Values are deliberately mid-range.
func fallbackATSReport() ATSReport {
	return ATSReport{
		OverallScore:    75,
		MatchPercentage: 70,
		KeywordMatches: KeywordMatches{
			Found:   []string{"JavaScript", "React", "Node.js"},
			Missing: []string{"Python", "AWS", "Docker"},
		},
		Sections: map[string]SectionScore{
			"skills":     {Score: 80, Feedback: "Good technical skills demonstrated", Suggestions: []string{"Add cloud platform experience"}},
			"experience": {Score: 75, Feedback: "Relevant work experience", Suggestions: []string{"Quantify achievements with numbers"}},
			"education":  {Score: 70, Feedback: "Educational background is adequate", Suggestions: []string{"Consider additional certifications"}},
			"formatting": {Score: 85, Feedback: "Well-formatted resume", Suggestions: []string{"Use consistent bullet points"}},
		},
		Strengths:                 []string{"Strong technical background", "Good project experience"},
		ImprovementAreas:          []string{"Add more quantified achievements", "Include cloud platform skills"},
		Recommendations:           []string{"Add metrics to demonstrate impact", "Include relevant certifications"},
		EstimatedATSCompatibility: "Medium",
		Summary:                   "Resume shows good potential but could benefit from more specific achievements and technical keywords.",
	}
}

// ── Resume structure parsing ──────────────────────────

type PersonalInfo struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Location  string `json:"location"`
	LinkedIn  string `json:"linkedIn"`
	Portfolio string `json:"portfolio"`
}

type SkillGroups struct {
	Technical []string `json:"technical"`
	Soft      []string `json:"soft"`
	Tools     []string `json:"tools"`
	Languages []string `json:"languages"`
}

type ResumeExperience struct {
	Title            string   `json:"title"`
	Company          string   `json:"company"`
	Duration         string   `json:"duration"`
	Location         string   `json:"location"`
	Responsibilities []string `json:"responsibilities"`
	Achievements     []string `json:"achievements"`
}

type ResumeEducation struct {
	Degree          string   `json:"degree"`
	Institution     string   `json:"institution"`
	Year            string   `json:"year"`
	GPA             string   `json:"gpa"`
	RelevantCourses []string `json:"relevantCourses"`
}

type ResumeProject struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Technologies []string `json:"technologies"`
	URL          string   `json:"url"`
}

type ResumeCertification struct {
	Name   string `json:"name"`
	Issuer string `json:"issuer"`
	Date   string `json:"date"`
}

// ParsedResume is the structured form of a resume extracted by the model
type ParsedResume struct {
	PersonalInfo   PersonalInfo          `json:"personalInfo"`
	Summary        string                `json:"summary"`
	Skills         SkillGroups           `json:"skills"`
	Experience     []ResumeExperience    `json:"experience"`
	Education      []ResumeEducation     `json:"education"`
	Projects       []ResumeProject       `json:"projects"`
	Certifications []ResumeCertification `json:"certifications"`
	Awards         []string              `json:"awards"`
	Publications   []string              `json:"publications"`
}

// ParsedResumeResult tags provenance like ATSResult
type ParsedResumeResult struct {
	Resume      ParsedResume `json:"resume"`
	Fallback    bool         `json:"fallback"`
	RawResponse string       `json:"rawResponse,omitempty"`
}

var parsedResumeSchema = mustSchema(`{
	"type": "object",
	"required": ["personalInfo"],
	"properties": {
		"personalInfo": {"type": "object"}
	}
}`)

const parseResumePromptTemplate = `
Parse the following resume and extract structured information in JSON format:

RESUME:
%s

Extract and structure it as:

{
  "personalInfo": { "name": "Full Name", "email": "email@example.com", "phone": "phone number", "location": "city, state/country", "linkedIn": "linkedin profile", "portfolio": "portfolio/website url" },
  "summary": "Professional summary or objective",
  "skills": { "technical": ["skill1"], "soft": ["skill1"], "tools": ["tool1"], "languages": ["language1"] },
  "experience": [{ "title": "Job Title", "company": "Company Name", "duration": "Start Date - End Date", "location": "Location", "responsibilities": ["r1"], "achievements": ["a1"] }],
  "education": [{ "degree": "Degree Type", "institution": "Institution Name", "year": "Graduation Year", "gpa": "GPA if mentioned", "relevantCourses": ["course1"] }],
  "projects": [{ "name": "Project Name", "description": "Project Description", "technologies": ["tech1"], "url": "project url if available" }],
  "certifications": [{ "name": "Certification Name", "issuer": "Issuing Organization", "date": "Date Obtained" }],
  "awards": ["award1"],
  "publications": ["publication1"]
}

If any section is not found in the resume, use empty arrays or empty strings.
Respond with ONLY the JSON object, no markdown and no explanation.`

// ParseResumeStructure extracts structured resume data. Same fallback
// policy as GenerateATSReport.
func (c *LLMClient) ParseResumeStructure(ctx context.Context, resumeText string) (*ParsedResumeResult, error) {
	prompt := fmt.Sprintf(parseResumePromptTemplate, resumeText)

	var parsed ParsedResume
	err := c.completeJSON(ctx, chatParams{
		selector:    model.ModelDeepSeek,
		user:        prompt,
		temperature: 0.2,
		maxTokens:   1500,
	}, parsedResumeSchema, &parsed)
	if err != nil {
		log.Warn().Err(err).Msg("Resume parse reply unusable, substituting fallback")
		return &ParsedResumeResult{
			Resume: ParsedResume{
				PersonalInfo: PersonalInfo{Name: "Resume Owner"},
				Summary:      "Professional summary not extracted",
			},
			Fallback:    true,
			RawResponse: err.Error(),
		}, nil
	}

	return &ParsedResumeResult{Resume: parsed}, nil
}
