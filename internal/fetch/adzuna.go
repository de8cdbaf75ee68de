package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jobsift/jobsift/internal/candidate"
)

const adzunaAPIURL = "https://api.adzuna.com/v1/api/jobs/gb/search/1"

// AdzunaQuery is one search against the Adzuna API.
type AdzunaQuery struct {
	What  string `mapstructure:"what"`
	Where string `mapstructure:"where"`
}

// Adzuna fetches postings from the Adzuna job board.
type Adzuna struct {
	appID      string
	appKey     string
	queries    []AdzunaQuery
	logger     *zap.Logger
	HTTPClient *http.Client
	APIURL     string
}

func NewAdzuna(appID, appKey string, queries []AdzunaQuery, logger *zap.Logger) *Adzuna {
	if len(queries) == 0 {
		queries = []AdzunaQuery{
			{What: "ux designer", Where: "manchester"},
			{What: "product designer", Where: "manchester"},
			{What: "ux designer", Where: "uk"},
			{What: "product designer", Where: "uk"},
		}
	}
	return &Adzuna{
		appID:      appID,
		appKey:     appKey,
		queries:    queries,
		logger:     logger,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		APIURL:     adzunaAPIURL,
	}
}

func (a *Adzuna) Name() string { return "adzuna" }

type adzunaJob struct {
	Title   string `json:"title"`
	Company struct {
		DisplayName string `json:"display_name"`
	} `json:"company"`
	Location struct {
		DisplayName string   `json:"display_name"`
		Area        []string `json:"area"`
	} `json:"location"`
	Description string  `json:"description"`
	RedirectURL string  `json:"redirect_url"`
	SalaryMin   float64 `json:"salary_min"`
	SalaryMax   float64 `json:"salary_max"`
	Created     string  `json:"created"`
}

type adzunaResponse struct {
	Results []adzunaJob `json:"results"`
}

// Fetch runs every configured query and maps results to the raw candidate
// shape. Results are deduped by redirect URL across queries; the pipeline
// dedupe handles the rest.
func (a *Adzuna) Fetch(ctx context.Context) ([]candidate.Candidate, error) {
	seen := make(map[string]struct{})
	var raw []candidate.Candidate

	for _, query := range a.queries {
		jobs, err := a.search(ctx, query)
		if err != nil {
			return nil, fmt.Errorf("adzuna search %q in %q: %w", query.What, query.Where, err)
		}
		a.logger.Debug("adzuna query finished",
			zap.String("what", query.What),
			zap.String("where", query.Where),
			zap.Int("found", len(jobs)),
		)

		for _, job := range jobs {
			if _, dup := seen[job.RedirectURL]; dup {
				continue
			}
			seen[job.RedirectURL] = struct{}{}
			raw = append(raw, a.toCandidate(job))
		}
	}

	return raw, nil
}

func (a *Adzuna) search(ctx context.Context, query AdzunaQuery) ([]adzunaJob, error) {
	q := url.Values{}
	q.Set("app_id", a.appID)
	q.Set("app_key", a.appKey)
	q.Set("results_per_page", "50")
	q.Set("what", query.What)
	q.Set("where", query.Where)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.APIURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.URL.RawQuery = q.Encode()

	resp, err := a.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bad status: %s", resp.Status)
	}

	var parsed adzunaResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, err
	}
	return parsed.Results, nil
}

func (a *Adzuna) toCandidate(job adzunaJob) candidate.Candidate {
	remote := false
	for _, area := range job.Location.Area {
		if strings.Contains(area, "Remote") {
			remote = true
			break
		}
	}

	salary := ""
	if job.SalaryMin > 0 && job.SalaryMax > 0 {
		salary = fmt.Sprintf("£%.0f-%.0f", job.SalaryMin, job.SalaryMax)
	}

	description := job.Description
	if len(description) > 200 {
		description = description[:200]
	}

	return candidate.Candidate{
		Title:       job.Title,
		Company:     job.Company.DisplayName,
		Location:    job.Location.DisplayName,
		URL:         job.RedirectURL,
		Remote:      remote,
		Salary:      salary,
		Description: description,
		PostedAt:    job.Created,
	}
}
