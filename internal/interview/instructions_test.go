package interview

import (
	"strings"
	"testing"
)

const testResume = `Jane Doe
Senior Backend Engineer

Experience:
- 5 years building Go services
- Kafka, Postgres, Kubernetes`

func TestComposeIncludesResumeVerbatim(t *testing.T) {
	composer := NewComposer(testResume)

	instructions := composer.Compose("")
	if !strings.Contains(instructions, testResume) {
		t.Error("Instructions should contain the literal resume text")
	}
}

func TestComposeWithoutJobDescription(t *testing.T) {
	composer := NewComposer(testResume)

	instructions := composer.Compose("")
	if !strings.Contains(instructions, JobDescriptionPending) {
		t.Error("Instructions should note the job description is pending")
	}
}

func TestComposeWithJobDescription(t *testing.T) {
	composer := NewComposer(testResume)
	jd := "We are hiring a Go engineer with Kafka experience."

	instructions := composer.Compose(jd)
	if !strings.Contains(instructions, jd) {
		t.Error("Instructions should contain the job description")
	}
	if strings.Contains(instructions, JobDescriptionPending) {
		t.Error("Pending placeholder should be gone once a JD is present")
	}
}

func TestComposeIncludesBehaviorBounds(t *testing.T) {
	instructions := NewComposer(testResume).Compose("")

	for _, want := range []string{"30 and 45 words", "first person", "refuse"} {
		if !strings.Contains(instructions, want) {
			t.Errorf("Instructions missing expected preamble fragment %q", want)
		}
	}
}

func TestStateLastWriteWins(t *testing.T) {
	state := NewState()

	if state.HasJobDescription() {
		t.Error("Fresh state should have no job description")
	}

	state.SetJobDescription("A")
	state.SetJobDescription("B")

	if got := state.JobDescription(); got != "B" {
		t.Errorf("Expected last write to win, got %q", got)
	}
}

func TestStateFeedsComposer(t *testing.T) {
	composer := NewComposer(testResume)
	state := NewState()

	state.SetJobDescription("X")
	if !strings.Contains(composer.Compose(state.JobDescription()), "X") {
		t.Error("Instructions should reflect the stored job description")
	}
}
