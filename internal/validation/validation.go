package validation

import (
	"discdb/internal/contribution"
)

// Severity decides whether a failing result blocks submission.
type Severity string

const (
	SeverityError    Severity = "error"
	SeverityAdvisory Severity = "advisory"
)

// Result is the outcome of one rule. An empty Messages slice means the rule
// passed.
type Result struct {
	Rule     string
	Severity Severity
	Messages []string
}

// Passed reports whether the rule found nothing.
func (r Result) Passed() bool {
	return len(r.Messages) == 0
}

// Blocking reports whether the result prevents submission.
func (r Result) Blocking() bool {
	return r.Severity == SeverityError && !r.Passed()
}

// Validator is one independently testable rule.
type Validator interface {
	Name() string
	Validate(c *contribution.Contribution) Result
}

// Report collects the results of a pipeline run in rule order.
type Report struct {
	Results []Result
}

// Eligible reports whether no error-severity rule failed.
func (r Report) Eligible() bool {
	for _, res := range r.Results {
		if res.Blocking() {
			return false
		}
	}
	return true
}

// ByName maps rule names to their results.
func (r Report) ByName() map[string]Result {
	out := make(map[string]Result, len(r.Results))
	for _, res := range r.Results {
		out[res.Rule] = res
	}
	return out
}

// Failures returns "rule: message" strings for every blocking finding.
func (r Report) Failures() []string {
	var out []string
	for _, res := range r.Results {
		if !res.Blocking() {
			continue
		}
		for _, msg := range res.Messages {
			out = append(out, res.Rule+": "+msg)
		}
	}
	return out
}

// Advisories returns "rule: message" strings for advisory findings.
func (r Report) Advisories() []string {
	var out []string
	for _, res := range r.Results {
		if res.Severity != SeverityAdvisory {
			continue
		}
		for _, msg := range res.Messages {
			out = append(out, res.Rule+": "+msg)
		}
	}
	return out
}

// Pipeline runs validators in the order they were given.
type Pipeline struct {
	validators []Validator
}

// NewPipeline builds a pipeline over validators.
func NewPipeline(validators ...Validator) *Pipeline {
	return &Pipeline{validators: append([]Validator(nil), validators...)}
}

// Default returns the standard rule set in its fixed order.
func Default() *Pipeline {
	return NewPipeline(
		RequiredFields{},
		FrontImage{},
		DiscCompleteness{},
		DuplicateAdvisory{},
		DiscFormats{},
		ItemMetadata{},
	)
}

// Names lists the rule names in run order.
func (p *Pipeline) Names() []string {
	names := make([]string, 0, len(p.validators))
	for _, v := range p.validators {
		names = append(names, v.Name())
	}
	return names
}

// Run applies every rule to c. c is not modified.
func (p *Pipeline) Run(c *contribution.Contribution) Report {
	report := Report{Results: make([]Result, 0, len(p.validators))}
	for _, v := range p.validators {
		res := v.Validate(c)
		if res.Rule == "" {
			res.Rule = v.Name()
		}
		if res.Severity == "" {
			res.Severity = SeverityError
		}
		report.Results = append(report.Results, res)
	}
	return report
}

// Eligible implements contribution.Guard.
func (p *Pipeline) Eligible(c *contribution.Contribution) (bool, []string) {
	report := p.Run(c)
	return report.Eligible(), report.Failures()
}
