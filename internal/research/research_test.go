package research

import (
	"os"
	"testing"

	"go.uber.org/zap"

	"github.com/jobsift/jobsift/internal/ai"
	"github.com/jobsift/jobsift/internal/candidate"
	"github.com/jobsift/jobsift/internal/config"
	"github.com/jobsift/jobsift/internal/dedupe"
)

func testService(t *testing.T) (*Service, *candidate.FileStore) {
	t.Helper()
	files := candidate.NewFileStore(t.TempDir())
	params := config.Defaults()
	params.Sources = []string{"adzuna", "reed"}
	return NewService(files, params, zap.NewNop()), files
}

func TestPlanQueue(t *testing.T) {
	svc, files := testService(t)

	adzuna := []candidate.Candidate{
		{ID: "a1", Title: "Senior UX Designer", Company: "Acme", Source: "adzuna", Suitability: 14},
		{ID: "a2", Title: "UX Designer", Company: "Globex", Source: "adzuna", Suitability: 8},
		{ID: "a3", Title: "Product Designer", Company: "Initech", Source: "adzuna", Suitability: 12,
			Type: candidate.TypeRecruiter},
		{ID: "a4", Title: "UX Researcher", Company: "Umbrella", Source: "adzuna", Suitability: 13},
	}
	reed := []candidate.Candidate{
		{ID: "r1", Title: "Senior UX Designer (Remote)", Company: "Acme Ltd", Source: "reed", Suitability: 11},
	}
	if err := files.Save("adzuna", adzuna); err != nil {
		t.Fatalf("save adzuna: %v", err)
	}
	if err := files.Save("reed", reed); err != nil {
		t.Fatalf("save reed: %v", err)
	}

	existing := dedupe.NewIndex([]candidate.Candidate{
		{ID: "a4", Title: "UX Researcher", Company: "Umbrella", Source: "adzuna"},
	})

	stats, err := svc.PlanQueue(existing)
	if err != nil {
		t.Fatalf("plan queue: %v", err)
	}

	if stats.Loaded != 5 {
		t.Fatalf("expected 5 loaded, got %d", stats.Loaded)
	}
	if stats.Unique != 4 {
		t.Fatalf("expected 4 unique after dedupe, got %d", stats.Unique)
	}
	if stats.New != 3 {
		t.Fatalf("expected 3 new, got %d", stats.New)
	}
	if stats.Queued != 1 {
		t.Fatalf("expected 1 queued, got %d", stats.Queued)
	}
	if stats.Skipped != 2 {
		t.Fatalf("expected 2 skipped, got %d", stats.Skipped)
	}

	queue, err := svc.LoadQueue()
	if err != nil {
		t.Fatalf("load queue: %v", err)
	}
	if len(queue) != 1 || queue[0].ID != "a1" {
		t.Fatalf("expected only the Acme candidate queued, got %+v", queue)
	}
}

func TestPlanQueueWritesEmptyQueue(t *testing.T) {
	svc, files := testService(t)

	stats, err := svc.PlanQueue(dedupe.NewIndex(nil))
	if err != nil {
		t.Fatalf("plan queue: %v", err)
	}
	if stats.Queued != 0 {
		t.Fatalf("expected nothing queued, got %d", stats.Queued)
	}

	if _, err := os.Stat(files.Path(QueueName)); err != nil {
		t.Fatalf("queue file must exist even when empty: %v", err)
	}
	queue, err := svc.LoadQueue()
	if err != nil {
		t.Fatalf("load queue: %v", err)
	}
	if len(queue) != 0 {
		t.Fatalf("expected empty queue, got %d", len(queue))
	}
}

func TestLoadQueueMissingNeedsIntervention(t *testing.T) {
	svc, _ := testService(t)

	_, err := svc.LoadQueue()
	if !ai.IsNeedsIntervention(err) {
		t.Fatalf("expected needs-intervention for missing queue, got %v", err)
	}
}

func TestResultsRoundTrip(t *testing.T) {
	svc, _ := testService(t)

	in := []ai.ResearchResult{
		{ID: "a1", Company: "Acme", DirectJobURL: "https://acme.example.com/jobs/1"},
	}
	if err := svc.SaveResults(in); err != nil {
		t.Fatalf("save results: %v", err)
	}

	out, err := svc.LoadResults()
	if err != nil {
		t.Fatalf("load results: %v", err)
	}
	if len(out) != 1 || out[0].ID != "a1" {
		t.Fatalf("unexpected results: %+v", out)
	}
}

func TestMergeResults(t *testing.T) {
	svc, files := testService(t)

	if err := files.Save("adzuna", []candidate.Candidate{
		{ID: "a1", Title: "Senior UX Designer", Company: "Acme", Source: "adzuna", Suitability: 14},
		{ID: "a2", Title: "UX Designer", Company: "Globex", Source: "adzuna", Suitability: 12},
	}); err != nil {
		t.Fatalf("save adzuna: %v", err)
	}
	if err := files.Save("reed", []candidate.Candidate{
		{ID: "r1", Title: "Product Designer", Company: "Initech", Source: "reed", Suitability: 11},
	}); err != nil {
		t.Fatalf("save reed: %v", err)
	}

	results := []ai.ResearchResult{
		{ID: "a1", Company: "Acme", DirectJobURL: "https://acme.example.com/jobs/1"},
		{ID: "a2", Company: "Globex", IsRecruiter: true, Expired: true,
			RedFlags: []candidate.RedFlag{{Type: "layoffs", Severity: "high", Summary: "recent layoffs"}}},
		{ID: "hallucinated", Company: "Nowhere"},
	}

	stats, err := svc.MergeResults(results)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}

	if stats.Updated != 2 {
		t.Fatalf("expected 2 updated, got %d", stats.Updated)
	}
	if stats.URLs != 1 || stats.Recruiters != 1 || stats.RedFlags != 1 || stats.Expired != 1 {
		t.Fatalf("unexpected merge stats: %+v", stats)
	}

	adzuna, _, err := files.Load("adzuna")
	if err != nil {
		t.Fatalf("reload adzuna: %v", err)
	}
	byID := make(map[string]candidate.Candidate, len(adzuna))
	for _, c := range adzuna {
		byID[c.ID] = c
	}
	if byID["a1"].DirectJobURL != "https://acme.example.com/jobs/1" {
		t.Fatalf("direct url not applied: %+v", byID["a1"])
	}
	if byID["a2"].Type != candidate.TypeRecruiter || !byID["a2"].Expired {
		t.Fatalf("recruiter flip or expiry not applied: %+v", byID["a2"])
	}
	if len(byID["a2"].RedFlags) != 1 {
		t.Fatalf("red flags not applied: %+v", byID["a2"])
	}
}

func TestMergeResultsLeavesUntouchedFilesAlone(t *testing.T) {
	svc, files := testService(t)

	if err := files.Save("adzuna", []candidate.Candidate{
		{ID: "a1", Title: "Senior UX Designer", Company: "Acme", Source: "adzuna"},
	}); err != nil {
		t.Fatalf("save adzuna: %v", err)
	}
	before, err := os.ReadFile(files.Path("reed"))
	if err == nil {
		t.Fatalf("fixture error: reed file should not exist, got %d bytes", len(before))
	}

	stats, err := svc.MergeResults([]ai.ResearchResult{{ID: "nobody", Company: "Nowhere"}})
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if stats.Updated != 0 {
		t.Fatalf("expected no updates, got %d", stats.Updated)
	}
	if _, err := os.Stat(files.Path("reed")); !os.IsNotExist(err) {
		t.Fatalf("merge must not create files for untouched sources")
	}
}
