package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/jobsift/jobsift/internal/candidate"
)

const (
	reedSearchURL = "https://www.reed.co.uk/api/1.0/search"
	reedJobURL    = "https://www.reed.co.uk/api/1.0/jobs"
)

// ReedQuery is one search against the Reed API.
type ReedQuery struct {
	Keywords string `mapstructure:"keywords"`
	Location string `mapstructure:"location"`
}

// Reed fetches postings from the Reed job board. Full descriptions need a
// per-job detail request, so those are rate limited to stay polite.
type Reed struct {
	apiKey     string
	queries    []ReedQuery
	logger     *zap.Logger
	limiter    *rate.Limiter
	HTTPClient *http.Client
	SearchURL  string
	JobURL     string
}

func NewReed(apiKey string, queries []ReedQuery, logger *zap.Logger) *Reed {
	if len(queries) == 0 {
		queries = []ReedQuery{
			{Keywords: "ux designer", Location: "Manchester"},
			{Keywords: "product designer", Location: "Manchester"},
			{Keywords: "ux designer", Location: "Remote"},
			{Keywords: "product designer", Location: "Remote"},
		}
	}
	return &Reed{
		apiKey:  apiKey,
		queries: queries,
		logger:  logger,
		// Fixed inter-request delay; fetch volume is small and
		// sequential per source, a token bucket would be overkill.
		limiter:    rate.NewLimiter(rate.Every(100*time.Millisecond), 1),
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		SearchURL:  reedSearchURL,
		JobURL:     reedJobURL,
	}
}

func (r *Reed) Name() string { return "reed" }

type reedJob struct {
	JobID         int     `json:"jobId"`
	JobTitle      string  `json:"jobTitle"`
	EmployerName  string  `json:"employerName"`
	LocationName  string  `json:"locationName"`
	MinimumSalary float64 `json:"minimumSalary"`
	MaximumSalary float64 `json:"maximumSalary"`
	Date          string  `json:"date"`
	JobURL        string  `json:"jobUrl"`
}

type reedSearchResponse struct {
	Results []reedJob `json:"results"`
}

type reedJobDetail struct {
	JobDescription string `json:"jobDescription"`
}

func (r *Reed) Fetch(ctx context.Context) ([]candidate.Candidate, error) {
	seen := make(map[int]struct{})
	var jobs []reedJob

	for _, query := range r.queries {
		found, err := r.search(ctx, query)
		if err != nil {
			return nil, fmt.Errorf("reed search %q in %q: %w", query.Keywords, query.Location, err)
		}
		r.logger.Debug("reed query finished",
			zap.String("keywords", query.Keywords),
			zap.String("location", query.Location),
			zap.Int("found", len(found)),
		)

		for _, job := range found {
			if _, dup := seen[job.JobID]; dup {
				continue
			}
			seen[job.JobID] = struct{}{}
			jobs = append(jobs, job)
		}
	}

	raw := make([]candidate.Candidate, 0, len(jobs))
	for _, job := range jobs {
		if err := r.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		detail, err := r.jobDetail(ctx, job.JobID)
		if err != nil {
			// Detail fetches fail individually; the listing data is
			// not worth keeping without a description to judge.
			r.logger.Debug("reed detail fetch failed",
				zap.Int("job_id", job.JobID),
				zap.Error(err),
			)
			continue
		}

		raw = append(raw, r.toCandidate(job, detail.JobDescription))
	}

	return raw, nil
}

func (r *Reed) search(ctx context.Context, query ReedQuery) ([]reedJob, error) {
	q := url.Values{}
	q.Set("keywords", query.Keywords)
	q.Set("locationName", query.Location)
	q.Set("distanceFromLocation", "30")
	q.Set("resultsToTake", "100")

	var parsed reedSearchResponse
	if err := r.getJSON(ctx, r.SearchURL, q, &parsed); err != nil {
		return nil, err
	}
	return parsed.Results, nil
}

func (r *Reed) jobDetail(ctx context.Context, jobID int) (*reedJobDetail, error) {
	var detail reedJobDetail
	if err := r.getJSON(ctx, r.JobURL+"/"+strconv.Itoa(jobID), nil, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

func (r *Reed) getJSON(ctx context.Context, endpoint string, q url.Values, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}

	// Reed uses basic auth with the API key as username and no password.
	req.SetBasicAuth(r.apiKey, "")
	req.Header.Set("Content-Type", "application/json")
	if q != nil {
		req.URL.RawQuery = q.Encode()
	}

	resp, err := r.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("bad status: %s", resp.Status)
	}

	return json.NewDecoder(resp.Body).Decode(target)
}

func (r *Reed) toCandidate(job reedJob, description string) candidate.Candidate {
	salary := ""
	if job.MinimumSalary > 0 && job.MaximumSalary > 0 {
		salary = fmt.Sprintf("£%.0f-%.0f", job.MinimumSalary, job.MaximumSalary)
	}

	if len(description) > 200 {
		description = description[:200]
	}

	return candidate.Candidate{
		Title:       job.JobTitle,
		Company:     job.EmployerName,
		Location:    job.LocationName,
		URL:         job.JobURL,
		Remote:      strings.Contains(strings.ToLower(job.LocationName), "remote"),
		Salary:      salary,
		Description: description,
		PostedAt:    job.Date,
	}
}
