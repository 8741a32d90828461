package prompt

import (
	_ "embed"
	"encoding/json"
	"strings"
)

// Mode selects the instruction template.
type Mode string

const (
	ModeBasic    Mode = "basic"
	ModeDetailed Mode = "detailed"
)

// ParseMode maps a requested analysis type onto a Mode. Anything other than
// basic or detailed is unspecified and returns the empty Mode.
func ParseMode(raw string) Mode {
	switch {
	case strings.EqualFold(strings.TrimSpace(raw), string(ModeDetailed)):
		return ModeDetailed
	case strings.EqualFold(strings.TrimSpace(raw), string(ModeBasic)):
		return ModeBasic
	}
	return ""
}

// SystemInstruction frames the model for every request in this package.
const SystemInstruction = "You are an expert resume analyzer and career coach. You evaluate resumes the way experienced recruiters and applicant tracking systems do. Respond only with JSON that matches the provided schema."

var (
	//go:embed prompts/basic.txt
	basicTemplate string
	//go:embed prompts/detailed.txt
	detailedTemplate string
	//go:embed prompts/suggestions.txt
	suggestionsTemplate string
	//go:embed prompts/optimize.txt
	optimizeTemplate string
)

// JobContext is the optional target-job information supplied with a resume.
type JobContext struct {
	Title       string
	Company     string
	Location    string
	Description string
	Kind        Mode
}

// Prompt is a complete model request: instruction text and the schema the
// response must satisfy.
type Prompt struct {
	Mode        Mode
	System      string
	Instruction string
	Schema      *Schema
}

// SelectMode returns basic when there is no job description or the caller
// explicitly asked for basic. An unspecified kind with a description is
// detailed.
func SelectMode(kind Mode, description string) Mode {
	if kind == ModeBasic || strings.TrimSpace(description) == "" {
		return ModeBasic
	}
	return ModeDetailed
}

// Build renders the instruction for the selected mode. Basic prompts carry no
// job fields.
func Build(resumeText string, job JobContext) Prompt {
	mode := SelectMode(job.Kind, job.Description)

	var instruction string
	if mode == ModeDetailed {
		instruction = strings.NewReplacer(
			"{{JOB_TITLE}}", orNotSpecified(job.Title),
			"{{COMPANY}}", orNotSpecified(job.Company),
			"{{LOCATION}}", orNotSpecified(job.Location),
			"{{JOB_DESCRIPTION}}", strings.TrimSpace(job.Description),
			"{{RESUME_TEXT}}", resumeText,
		).Replace(detailedTemplate)
	} else {
		instruction = strings.NewReplacer("{{RESUME_TEXT}}", resumeText).Replace(basicTemplate)
	}

	return Prompt{
		Mode:        mode,
		System:      SystemInstruction,
		Instruction: instruction,
		Schema:      ResultSchema(mode),
	}
}

// Preferences steer tailored suggestions.
type Preferences struct {
	EmphasizeKeywords    bool `json:"emphasizeKeywords"`
	QuantifyAchievements bool `json:"quantifyAchievements"`
	ImproveFormatting    bool `json:"improveFormatting"`
	TailorSummary        bool `json:"tailorSummary"`
}

// SuggestionsInput feeds BuildSuggestions.
type SuggestionsInput struct {
	ResumeText     string
	PriorResult    json.RawMessage
	JobDescription string
	TargetRole     string
	Preferences    Preferences
}

// BuildSuggestions asks for categorized, tailored edits to a resume. Without
// resume text the prior scoring result is the only evidence.
func BuildSuggestions(in SuggestionsInput) Prompt {
	resume := strings.TrimSpace(in.ResumeText)
	if resume == "" {
		resume = "(resume text unavailable; rely on the prior analysis)"
	}
	instruction := strings.NewReplacer(
		"{{RESUME_TEXT}}", resume,
		"{{PRIOR_RESULT}}", string(in.PriorResult),
		"{{JOB_DESCRIPTION}}", orNotSpecified(in.JobDescription),
		"{{TARGET_ROLE}}", orNotSpecified(in.TargetRole),
		"{{PREFERENCES}}", describePreferences(in.Preferences),
	).Replace(suggestionsTemplate)
	return Prompt{Mode: ModeDetailed, System: SystemInstruction, Instruction: instruction, Schema: SuggestionsSchema()}
}

// AcceptedSuggestion is one edit the user chose to apply.
type AcceptedSuggestion struct {
	Category    string `json:"category"`
	Title       string `json:"title"`
	Description string `json:"description"`
	After       string `json:"after,omitempty"`
}

// OptimizationInput feeds BuildOptimization.
type OptimizationInput struct {
	ResumeText     string
	OriginalScores json.RawMessage
	Accepted       []AcceptedSuggestion
	JobDescription string
	TargetRole     string
	Preferences    Preferences
}

// BuildOptimization asks the model to re-score the resume as if the accepted
// edits had been applied.
func BuildOptimization(in OptimizationInput) Prompt {
	accepted, _ := json.MarshalIndent(in.Accepted, "", "  ")
	resume := strings.TrimSpace(in.ResumeText)
	if resume == "" {
		resume = "(resume text unavailable; start from the original scores)"
	}
	instruction := strings.NewReplacer(
		"{{RESUME_TEXT}}", resume,
		"{{ORIGINAL_SCORES}}", string(in.OriginalScores),
		"{{ACCEPTED}}", string(accepted),
		"{{JOB_DESCRIPTION}}", orNotSpecified(in.JobDescription),
		"{{TARGET_ROLE}}", orNotSpecified(in.TargetRole),
		"{{PREFERENCES}}", describePreferences(in.Preferences),
	).Replace(optimizeTemplate)
	return Prompt{Mode: ModeBasic, System: SystemInstruction, Instruction: instruction, Schema: ScoresSchema()}
}

func describePreferences(p Preferences) string {
	var out []string
	if p.EmphasizeKeywords {
		out = append(out, "- Emphasize keywords from the job description")
	}
	if p.QuantifyAchievements {
		out = append(out, "- Quantify achievements with concrete numbers")
	}
	if p.ImproveFormatting {
		out = append(out, "- Improve formatting and structure")
	}
	if p.TailorSummary {
		out = append(out, "- Tailor the professional summary to the target role")
	}
	if len(out) == 0 {
		return "- No specific preferences"
	}
	return strings.Join(out, "\n")
}

func orNotSpecified(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return "Not specified"
	}
	return s
}
