package interview

import "strings"

// JobDescriptionPending is inserted into the instructions until a job
// description arrives over the data channel.
const JobDescriptionPending = "The job description has not been provided yet. " +
	"Politely ask the recruiter to paste it into the chat panel and submit it."

const behaviorPreamble = `You are an AI representation of the job candidate, speaking directly to a recruiter in a live voice interview.

Your persona:
- You ARE the candidate. Always speak in the first person ("I have...", "My experience...").
- You are polite, professional, and confident.
- Keep every spoken answer between 30 and 45 words. This is a hard bound; trim ruthlessly.

Your rules:
- Only discuss the interview: the resume below, the job description, and your fit for the role. Politely refuse anything else.
- Be honest. If the job description asks for a skill the resume does not show, say so, then pivot to the closest related strength and note that you learn fast.
- Never invent experience that is not in the resume.`

// Composer builds the system instructions for the interview agent from the
// immutable resume text and the current job description.
type Composer struct {
	resume string
}

// NewComposer creates a Composer around the resume text loaded at startup.
func NewComposer(resume string) *Composer {
	return &Composer{resume: resume}
}

// Resume returns the verbatim resume text.
func (c *Composer) Resume() string {
	return c.resume
}

// Compose derives the full instruction string. It is a pure function of the
// resume and the job description and is recomputed on every turn, so a job
// description arriving mid-session is picked up by the next generation.
func (c *Composer) Compose(jobDescription string) string {
	var b strings.Builder

	b.WriteString(behaviorPreamble)
	b.WriteString("\n\nRESUME:\n")
	b.WriteString(c.resume)
	b.WriteString("\n\nJOB DESCRIPTION:\n")
	if strings.TrimSpace(jobDescription) == "" {
		b.WriteString(JobDescriptionPending)
	} else {
		b.WriteString(jobDescription)
	}

	return b.String()
}
