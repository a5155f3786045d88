package generator

import (
	"fmt"
	"slices"
	"time"
)

// CampaignInput describes one form submission. It is not modified after submission.
type CampaignInput struct {
	ProductName        string `json:"product_name"`
	ProductDescription string `json:"product_description"`
	Problem            string `json:"problem"`
	USP                string `json:"usp"`
	AgeGroup           string `json:"age_group"`
	Gender             string `json:"gender"`
	Goal               string `json:"goal"`
	Tone               string `json:"tone"`
}

// Option sets offered by the form.
var (
	AgeGroups = []string{"18-24", "25-34", "35-44", "45-54", "55+"}
	Genders   = []string{"All Genders", "Male", "Female", "Non-binary"}
	Goals     = []string{"Lead Generation", "Sales", "Brand Awareness", "Website Visits"}
	Tones     = []string{"Friendly", "Professional", "Fun"}
)

// ValidateOptions checks the select fields against their option sets. Free-text
// fields are not checked.
func (in CampaignInput) ValidateOptions() error {
	checks := []struct {
		field string
		value string
		set   []string
	}{
		{"age_group", in.AgeGroup, AgeGroups},
		{"gender", in.Gender, Genders},
		{"goal", in.Goal, Goals},
		{"tone", in.Tone, Tones},
	}
	for _, c := range checks {
		if !slices.Contains(c.set, c.value) {
			return fmt.Errorf("invalid %s %q", c.field, c.value)
		}
	}
	return nil
}

var platforms = []string{"Facebook", "Instagram", "LinkedIn", "Google Ads"}

// Platforms returns the fixed platform order. Callers get a copy.
func Platforms() []string {
	return slices.Clone(platforms)
}

// CallRecord is one observed invocation of the ad tool.
type CallRecord struct {
	Function string `json:"function"`
	Platform string `json:"platform"`
	Time     string `json:"time"`
}

// PlatformResult is the generated copy for one platform.
type PlatformResult struct {
	Platform string `json:"platform"`
	Text     string `json:"text"`
}

// Results keeps generated copy in insertion order.
type Results struct {
	items []PlatformResult
}

func (r *Results) set(platform, text string) {
	for i := range r.items {
		if r.items[i].Platform == platform {
			r.items[i].Text = text
			return
		}
	}
	r.items = append(r.items, PlatformResult{Platform: platform, Text: text})
}

// Get returns the copy for platform.
func (r *Results) Get(platform string) (string, bool) {
	for _, it := range r.items {
		if it.Platform == platform {
			return it.Text, true
		}
	}
	return "", false
}

// Len reports how many platforms have copy.
func (r *Results) Len() int { return len(r.items) }

// Platforms lists the keys in insertion order.
func (r *Results) Platforms() []string {
	out := make([]string, 0, len(r.items))
	for _, it := range r.items {
		out = append(out, it.Platform)
	}
	return out
}

// Items returns a copy of all entries in order.
func (r *Results) Items() []PlatformResult {
	return slices.Clone(r.items)
}

// Run is a completed generation. Only fully successful runs are ever constructed.
type Run struct {
	ID         string
	Input      CampaignInput
	Context    string
	Calls      []CallRecord
	Results    *Results
	StartedAt  time.Time
	FinishedAt time.Time
}
