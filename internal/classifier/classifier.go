// Package classifier maps a free-text dental concern to a specialization
// label using an ordered keyword table. The first matching rule wins.
package classifier

import (
	"strings"

	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/models"
)

type Rule struct {
	Keywords []string
	Label    string
}

var DefaultRules = []Rule{
	{Keywords: []string{"root", "canal", "filling", "nerve", "endodontic"}, Label: "Endodontics"},
	{Keywords: []string{"brace", "align", "straighten", "crooked", "orthodontic"}, Label: "Orthodontics"},
	{Keywords: []string{"child", "kid", "pediatric", "baby", "pedodontic"}, Label: "Pediatric Dentistry"},
	{Keywords: []string{"crown", "bridge", "denture", "implant", "prosthodontic"}, Label: "Prosthodontics"},
	{Keywords: []string{"gum", "bleeding", "periodontal"}, Label: "Periodontics"},
	{Keywords: []string{"implant", "screw", "fixing"}, Label: "Implantology"},
	{Keywords: []string{"surgery", "extraction", "wisdom", "oral surgeon"}, Label: "Oral & Maxillofacial Surgery"},
}

type Classifier struct {
	rules        []Rule
	defaultLabel string
}

func New(rules []Rule, defaultLabel string) *Classifier {
	normalized := make([]Rule, 0, len(rules))
	for _, r := range rules {
		kws := make([]string, 0, len(r.Keywords))
		for _, kw := range r.Keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw != "" {
				kws = append(kws, kw)
			}
		}
		if len(kws) == 0 || strings.TrimSpace(r.Label) == "" {
			continue
		}
		normalized = append(normalized, Rule{Keywords: kws, Label: r.Label})
	}
	if defaultLabel == "" {
		defaultLabel = models.DefaultSpecialization
	}
	return &Classifier{rules: normalized, defaultLabel: defaultLabel}
}

func Default() *Classifier {
	return New(DefaultRules, models.DefaultSpecialization)
}

func (c *Classifier) Classify(text string) string {
	text = strings.ToLower(text)
	for _, r := range c.rules {
		for _, kw := range r.Keywords {
			if strings.Contains(text, kw) {
				return r.Label
			}
		}
	}
	return c.defaultLabel
}

// Labels lists every label the classifier can produce, default last.
func (c *Classifier) Labels() []string {
	seen := make(map[string]bool, len(c.rules)+1)
	out := make([]string, 0, len(c.rules)+1)
	for _, r := range c.rules {
		if !seen[r.Label] {
			seen[r.Label] = true
			out = append(out, r.Label)
		}
	}
	if !seen[c.defaultLabel] {
		out = append(out, c.defaultLabel)
	}
	return out
}
