package gemini

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/jobsift/jobsift/internal/ai"
	"github.com/jobsift/jobsift/internal/candidate"
)

func researchQueue(n int) []candidate.Candidate {
	queue := make([]candidate.Candidate, 0, n)
	for i := 0; i < n; i++ {
		queue = append(queue, candidate.Candidate{
			ID:      fmt.Sprintf("adzuna-co%d-ux", i),
			Title:   "UX Designer",
			Company: fmt.Sprintf("Co%d", i),
		})
	}
	return queue
}

func TestResearchBatches(t *testing.T) {
	queue := researchQueue(10)

	stub := &stubGenerator{responses: []string{
		`[{"id": "adzuna-co0-ux", "company": "Co0", "is_recruiter": false}]`,
		`[{"id": "adzuna-co4-ux", "company": "Co4", "expired": true}]`,
		`[{"id": "adzuna-co9-ux", "company": "Co9", "is_recruiter": true}]`,
	}}
	inv := NewInvestigator(stub, 4, zap.NewNop())

	results, err := inv.Research(context.Background(), queue)
	if err != nil {
		t.Fatalf("research: %v", err)
	}

	if len(stub.calls) != 3 {
		t.Fatalf("10 candidates at batch size 4 need 3 calls, got %d", len(stub.calls))
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if !results[2].IsRecruiter {
		t.Fatalf("recruiter verdict lost: %+v", results[2])
	}

	// Each prompt carries only its own batch.
	if strings.Contains(stub.calls[0], "adzuna-co4-ux") {
		t.Fatalf("first prompt must not include second-batch candidates")
	}
	if !strings.Contains(stub.calls[1], "adzuna-co4-ux") {
		t.Fatalf("second prompt must include its own candidates")
	}
}

func TestResearchDropsHallucinatedIDs(t *testing.T) {
	queue := researchQueue(2)

	stub := &stubGenerator{responses: []string{`[
		{"id": "adzuna-co0-ux", "company": "Co0"},
		{"id": "made-up-id", "company": "Phantom Corp", "is_recruiter": true}
	]`}}
	inv := NewInvestigator(stub, 8, zap.NewNop())

	results, err := inv.Research(context.Background(), queue)
	if err != nil {
		t.Fatalf("research: %v", err)
	}
	if len(results) != 1 || results[0].ID != "adzuna-co0-ux" {
		t.Fatalf("hallucinated id must be dropped, got %+v", results)
	}
}

func TestResearchRetriesMalformedBatch(t *testing.T) {
	queue := researchQueue(1)

	stub := &stubGenerator{responses: []string{
		"Let me think about that...",
		`[{"id": "adzuna-co0-ux", "company": "Co0"}]`,
	}}
	inv := NewInvestigator(stub, 8, zap.NewNop())

	results, err := inv.Research(context.Background(), queue)
	if err != nil {
		t.Fatalf("research after retry: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if len(stub.calls) != 2 || !strings.HasSuffix(stub.calls[1], strictJSONInstruction) {
		t.Fatalf("expected one strict retry, got %d calls", len(stub.calls))
	}
}

func TestResearchAllInvalidNeedsIntervention(t *testing.T) {
	queue := researchQueue(2)

	stub := &stubGenerator{responses: []string{`[{"id": "not-in-queue"}]`}}
	inv := NewInvestigator(stub, 8, zap.NewNop())

	_, err := inv.Research(context.Background(), queue)
	if !ai.IsNeedsIntervention(err) {
		t.Fatalf("expected needs-intervention when nothing valid came back, got %v", err)
	}
}

func TestResearchEmptyQueue(t *testing.T) {
	stub := &stubGenerator{}
	inv := NewInvestigator(stub, 8, zap.NewNop())

	results, err := inv.Research(context.Background(), nil)
	if err != nil {
		t.Fatalf("empty queue must be a no-op: %v", err)
	}
	if results != nil || len(stub.calls) != 0 {
		t.Fatalf("expected no calls and no results, got %d calls", len(stub.calls))
	}
}
