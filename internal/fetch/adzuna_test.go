package fetch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
)

func adzunaFixture() adzunaResponse {
	var job adzunaJob
	job.Title = "Senior UX Designer"
	job.Company.DisplayName = "Acme"
	job.Location.DisplayName = "Manchester, Greater Manchester"
	job.Location.Area = []string{"UK", "North West England", "Greater Manchester"}
	job.Description = "User research and prototyping for an ecommerce platform."
	job.RedirectURL = "https://adzuna.example.com/redirect/1"
	job.SalaryMin = 60000
	job.SalaryMax = 70000
	job.Created = "2026-01-28T00:00:00Z"
	return adzunaResponse{Results: []adzunaJob{job}}
}

func TestAdzunaFetch(t *testing.T) {
	var queries []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("app_id") != "test-id" || q.Get("app_key") != "test-key" {
			t.Errorf("credentials missing from query: %v", q)
		}
		queries = append(queries, q.Get("what")+"|"+q.Get("where"))
		json.NewEncoder(w).Encode(adzunaFixture())
	}))
	defer server.Close()

	// Two queries returning the same job exercise the redirect-url dedupe.
	a := NewAdzuna("test-id", "test-key", []AdzunaQuery{
		{What: "ux designer", Where: "manchester"},
		{What: "product designer", Where: "manchester"},
	}, zap.NewNop())
	a.APIURL = server.URL

	raw, err := a.Fetch(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}

	if len(queries) != 2 {
		t.Fatalf("expected 2 api calls, got %d", len(queries))
	}
	if len(raw) != 1 {
		t.Fatalf("expected 1 candidate after redirect dedupe, got %d", len(raw))
	}

	c := raw[0]
	if c.Title != "Senior UX Designer" || c.Company != "Acme" {
		t.Fatalf("unexpected mapping: %+v", c)
	}
	if c.Salary != "£60000-70000" {
		t.Fatalf("unexpected salary mapping: %q", c.Salary)
	}
	if c.URL != "https://adzuna.example.com/redirect/1" {
		t.Fatalf("redirect url lost: %q", c.URL)
	}
	if c.Remote {
		t.Fatalf("no remote area listed, candidate must not be remote")
	}
}

func TestAdzunaFetchBadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusForbidden)
	}))
	defer server.Close()

	a := NewAdzuna("test-id", "test-key", []AdzunaQuery{{What: "ux designer", Where: "uk"}}, zap.NewNop())
	a.APIURL = server.URL

	if _, err := a.Fetch(context.Background()); err == nil {
		t.Fatalf("expected error on non-200 response")
	}
}
