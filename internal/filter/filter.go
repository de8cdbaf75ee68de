// Package filter applies the hard acceptance rules a candidate must pass
// before it is considered for persistence. Rules are an explicit ordered
// table; the first match wins and its reason is returned. Reason codes feed
// logging and drop counters only, never downstream branching.
package filter

import (
	"strings"
	"time"

	"github.com/jobsift/jobsift/internal/candidate"
	"github.com/jobsift/jobsift/internal/config"
)

// Exclusion reasons, in business-priority order.
const (
	ReasonLocation      = "location"
	ReasonOverseas      = "overseas-remote"
	ReasonStale         = "stale"
	ReasonContract      = "contract"
	ReasonEngineering   = "engineering"
	ReasonPhysical      = "physical-product"
	ReasonProductMgr    = "product-manager"
	ReasonSales         = "sales"
	ReasonLead          = "lead"
	ReasonUIFocus       = "ui-focus"
	ReasonDenylisted    = "denylisted-employer"
	ReasonLowSalary     = "low-salary"
	ReasonWrongDesigner = "wrong-designer-type"
	ReasonNotDesignRole = "not-ux-product-designer"
)

var (
	contractKeywords = []string{"contract", "freelance", "part time", "part-time"}

	engineeringKeywords = []string{
		"engineer", "developer", "dev ", " dev", "backend", "frontend",
		"full stack", "fullstack", "software", "python", "java", ".net",
		"react ", "angular", "node", "qa ", "test", "devops",
	}

	physicalKeywords = []string{"cad", "mechanical", "footwear", "materials"}

	salesKeywords = []string{"sales", "account manager", "business development", "bd "}

	wrongDesignerKeywords = []string{"service designer", "digital designer", "content designer"}

	acceptedTitles = []string{
		"ux designer", "user experience designer", "product designer",
		"ux researcher", "ux/ui designer", "interaction designer",
	}

	// Terms for the UI-emphasis ratio heuristic.
	uiSignals = []string{"visual design", "ui design", "pixel", "photoshop", "illustrator", "graphic design", "branding"}
	uxSignals = []string{"user research", "usability", "wireframe", "user testing", "user journey", "information architecture"}

	// Remote roles outside the home country are excluded even when the
	// listing says remote.
	overseasMarkers = []string{
		"united states", "usa", "canada", "germany", "france", "spain",
		"netherlands", "poland", "india", "australia", "singapore",
	}
)

// rule pairs a reason with its predicate. The table is evaluated in order.
type rule struct {
	reason string
	match  func(c candidate.Candidate, title, desc string) bool
}

// Filter evaluates the acceptance chain for one candidate.
type Filter struct {
	params config.Params
	now    func() time.Time
	rules  []rule
}

func New(params config.Params) *Filter {
	f := &Filter{params: params, now: time.Now}
	f.rules = []rule{
		{ReasonLocation, f.badLocation},
		{ReasonOverseas, f.remoteOverseas},
		{ReasonStale, f.tooOld},
		{ReasonContract, matchAny(contractKeywords, inTitleOrDesc)},
		{ReasonEngineering, matchAny(engineeringKeywords, inTitle)},
		{ReasonPhysical, matchAny(physicalKeywords, inTitle)},
		{ReasonProductMgr, matchAny([]string{"product manager", "product owner"}, inTitle)},
		{ReasonSales, matchAny(salesKeywords, inTitle)},
		{ReasonLead, matchAny([]string{"lead", "principal", "head of"}, inTitle)},
		{ReasonUIFocus, uiEmphasis},
		{ReasonDenylisted, f.denylistedEmployer},
		{ReasonLowSalary, f.belowSalaryFloor},
		{ReasonWrongDesigner, matchAny(wrongDesignerKeywords, inTitle)},
		{ReasonNotDesignRole, notAcceptedTitle},
	}
	return f
}

// ShouldExclude returns the first matching exclusion reason, or "" when the
// candidate passes every rule.
func (f *Filter) ShouldExclude(c candidate.Candidate) string {
	title := strings.ToLower(c.Title)
	desc := strings.ToLower(c.Description)
	for _, r := range f.rules {
		if r.match(c, title, desc) {
			return r.reason
		}
	}
	return ""
}

type scope int

const (
	inTitle scope = iota
	inTitleOrDesc
)

func matchAny(keywords []string, where scope) func(candidate.Candidate, string, string) bool {
	return func(_ candidate.Candidate, title, desc string) bool {
		for _, k := range keywords {
			if strings.Contains(title, k) {
				return true
			}
			if where == inTitleOrDesc && strings.Contains(desc, k) {
				return true
			}
		}
		return false
	}
}

func (f *Filter) badLocation(c candidate.Candidate, _, _ string) bool {
	loc := strings.ToLower(strings.TrimSpace(c.Location))
	if loc == "" {
		// Unknown location is judged by the remaining rules.
		return false
	}
	if strings.Contains(loc, strings.ToLower(f.params.Metro)) {
		return false
	}
	if c.Remote || strings.Contains(loc, "remote") || strings.Contains(loc, strings.ToLower(f.params.Country)) {
		return false
	}
	return true
}

func (f *Filter) remoteOverseas(c candidate.Candidate, _, _ string) bool {
	loc := strings.ToLower(c.Location)
	if !c.Remote && !strings.Contains(loc, "remote") {
		return false
	}
	for _, marker := range overseasMarkers {
		if strings.Contains(loc, marker) {
			return true
		}
	}
	return false
}

func (f *Filter) tooOld(c candidate.Candidate, _, _ string) bool {
	if posted, ok := c.PostedTime(); ok {
		days := int(f.now().Sub(posted).Hours() / 24)
		return days > f.params.MaxAgeDays
	}
	return c.Freshness == candidate.FreshnessStale
}

// uiEmphasis flags roles that are really UI positions: either the title
// says so outright, or the description leans on UI craft with no UX signal
// at all (at least 3 UI terms and 0 UX terms).
func uiEmphasis(_ candidate.Candidate, title, desc string) bool {
	if strings.HasPrefix(title, "ui ") || strings.HasPrefix(title, "ui/ux") {
		return true
	}

	uiHits := 0
	for _, signal := range uiSignals {
		if strings.Contains(desc, signal) {
			uiHits++
		}
	}
	if uiHits < 3 {
		return false
	}
	for _, signal := range uxSignals {
		if strings.Contains(desc, signal) {
			return false
		}
	}
	return true
}

func (f *Filter) denylistedEmployer(c candidate.Candidate, _, _ string) bool {
	company := strings.ToLower(c.Company)
	for _, blocked := range f.params.EmployerDenylist {
		if strings.Contains(company, strings.ToLower(blocked)) {
			return true
		}
	}
	return false
}

func (f *Filter) belowSalaryFloor(c candidate.Candidate, _, _ string) bool {
	return c.MaxSalary() <= f.params.MinSalary
}

func notAcceptedTitle(_ candidate.Candidate, title, _ string) bool {
	for _, accepted := range acceptedTitles {
		if strings.Contains(title, accepted) {
			return false
		}
	}
	return true
}
