// Package config holds the pipeline parameters. The struct is built once
// at process start and threaded into the scorer, filter and sync instead of
// reading the environment at use sites.
package config

// Params are the tunable thresholds of the ingestion pipeline.
type Params struct {
	// ScoreCutoff is the minimum suitability required for a candidate to
	// be persisted.
	ScoreCutoff int `mapstructure:"score-cutoff"`
	// ResearchThreshold is the minimum suitability for a new candidate to
	// be queued for company research.
	ResearchThreshold int `mapstructure:"research-threshold"`
	// MinSalary is the salary floor; candidates whose parsed maximum does
	// not exceed it are dropped.
	MinSalary float64 `mapstructure:"min-salary"`
	// MaxAgeDays is the acceptance window: postings older than this are
	// rejected as stale before they ever reach storage.
	MaxAgeDays int `mapstructure:"max-age-days"`
	// StaleAfterDays is the retention window for the staleness sweep over
	// rows already in storage.
	StaleAfterDays int `mapstructure:"stale-after-days"`
	// GhostAfterDays is how long an application may sit awaiting a reply
	// before it is auto-ghosted.
	GhostAfterDays int `mapstructure:"ghost-after-days"`
	// Metro is the target metro area; Country the home country for remote
	// roles.
	Metro   string `mapstructure:"metro"`
	Country string `mapstructure:"country"`
	// EmployerDenylist removes disallowed employer categories by name
	// fragment.
	EmployerDenylist []string `mapstructure:"employer-denylist"`
	// Sources lists the candidate files considered by filter and sync.
	Sources []string `mapstructure:"sources"`

	CandidatesDir string `mapstructure:"candidates-dir"`
	RunsDir       string `mapstructure:"runs-dir"`
}

// Defaults mirror the original dashboard's operating point.
func Defaults() Params {
	return Params{
		ScoreCutoff:       12,
		ResearchThreshold: 10,
		MinSalary:         50000,
		MaxAgeDays:        14,
		StaleAfterDays:    30,
		GhostAfterDays:    30,
		Metro:             "manchester",
		Country:           "uk",
		EmployerDenylist:  []string{"bet365", "flutter", "entain", "paddy power", "betfair"},
		Sources:           []string{"linkedin", "uiuxjobsboard", "workinstartups", "indeed", "adzuna", "reed"},
		CandidatesDir:     "candidates",
		RunsDir:           "runs",
	}
}

// Merge fills zero-valued fields from Defaults so a partial config file
// still yields a runnable pipeline.
func (p Params) Merge() Params {
	def := Defaults()
	if p.ScoreCutoff == 0 {
		p.ScoreCutoff = def.ScoreCutoff
	}
	if p.ResearchThreshold == 0 {
		p.ResearchThreshold = def.ResearchThreshold
	}
	if p.MinSalary == 0 {
		p.MinSalary = def.MinSalary
	}
	if p.MaxAgeDays == 0 {
		p.MaxAgeDays = def.MaxAgeDays
	}
	if p.StaleAfterDays == 0 {
		p.StaleAfterDays = def.StaleAfterDays
	}
	if p.GhostAfterDays == 0 {
		p.GhostAfterDays = def.GhostAfterDays
	}
	if p.Metro == "" {
		p.Metro = def.Metro
	}
	if p.Country == "" {
		p.Country = def.Country
	}
	if p.EmployerDenylist == nil {
		p.EmployerDenylist = def.EmployerDenylist
	}
	if len(p.Sources) == 0 {
		p.Sources = def.Sources
	}
	if p.CandidatesDir == "" {
		p.CandidatesDir = def.CandidatesDir
	}
	if p.RunsDir == "" {
		p.RunsDir = def.RunsDir
	}
	return p
}
