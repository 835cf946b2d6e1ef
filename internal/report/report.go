// Package report renders drafted innovation reports as plain text,
// Markdown and printable HTML.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/HendryAvila/triz-master/internal/ai"
	"github.com/HendryAvila/triz-master/internal/catalog"
	"github.com/HendryAvila/triz-master/internal/history"
)

// Feasibility is the coarse feasibility band of a solution.
type Feasibility string

const (
	FeasibilityHigh   Feasibility = "high"
	FeasibilityMedium Feasibility = "medium"
	FeasibilityLow    Feasibility = "low"
)

// ClassifyFeasibility maps the model's free-text feasibility to a band.
// Matching is a case-insensitive substring test in either locale; anything
// unrecognized is low.
func ClassifyFeasibility(s string) Feasibility {
	l := strings.ToLower(s)
	switch {
	case strings.Contains(l, "high") || strings.Contains(l, "عالية"):
		return FeasibilityHigh
	case strings.Contains(l, "medium") || strings.Contains(l, "متوسطة"):
		return FeasibilityMedium
	default:
		return FeasibilityLow
	}
}

// Label returns the localized badge text.
func (f Feasibility) Label(loc catalog.Locale) string {
	return labelsFor(loc).feasibility[f]
}

type labels struct {
	title        string
	analysis     string
	solutions    string
	actionPlan   string
	description  string
	principle    string
	feasibility  map[Feasibility]string
	feasibilityH string
	problem      string
	contradict   string
	improving    string
	worsening    string
	principles   string
	noPrinciples string
	created      string
}

var localized = map[catalog.Locale]labels{
	catalog.English: {
		title:        "TRIZ Innovation Report",
		analysis:     "Analysis",
		solutions:    "Proposed Solutions",
		actionPlan:   "Action Plan",
		description:  "Description",
		principle:    "Principle",
		feasibilityH: "Feasibility",
		feasibility: map[Feasibility]string{
			FeasibilityHigh:   "High feasibility",
			FeasibilityMedium: "Medium feasibility",
			FeasibilityLow:    "Low feasibility",
		},
		problem:      "Problem",
		contradict:   "Technical Contradiction",
		improving:    "Improving",
		worsening:    "Worsening",
		principles:   "Inventive Principles",
		noPrinciples: "No known or inferable principle for this contradiction.",
		created:      "Created",
	},
	catalog.Arabic: {
		title:        "تقرير الابتكار وفق منهجية TRIZ",
		analysis:     "التحليل",
		solutions:    "الحلول المقترحة",
		actionPlan:   "خطة العمل",
		description:  "الوصف",
		principle:    "المبدأ",
		feasibilityH: "الجدوى",
		feasibility: map[Feasibility]string{
			FeasibilityHigh:   "جدوى عالية",
			FeasibilityMedium: "جدوى متوسطة",
			FeasibilityLow:    "جدوى منخفضة",
		},
		problem:      "المشكلة",
		contradict:   "التناقض التقني",
		improving:    "المعيار المُحسَّن",
		worsening:    "المعيار المتأثر سلباً",
		principles:   "المبادئ الابتكارية",
		noPrinciples: "لا توجد مبادئ معروفة أو مستنتجة لهذا التناقض.",
		created:      "التاريخ",
	},
}

func labelsFor(loc catalog.Locale) labels {
	if l, ok := localized[loc]; ok {
		return l
	}
	return localized[catalog.DefaultLocale]
}

// Text renders the plain-text layout used when copying a whole report.
func Text(r *ai.Report, loc catalog.Locale) string {
	if r == nil {
		return ""
	}
	l := labelsFor(loc)

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", l.title)
	fmt.Fprintf(&b, "%s:\n%s\n\n", l.analysis, r.Introduction)
	fmt.Fprintf(&b, "%s:\n", l.solutions)
	for i, s := range r.Solutions {
		fmt.Fprintf(&b, "%d. %s\n%s: %s\n%s: %s\n%s: %s\n\n",
			i+1, s.Title,
			l.description, s.Description,
			l.principle, s.PrincipleApplied,
			l.feasibilityH, s.Feasibility)
	}
	fmt.Fprintf(&b, "%s:\n", l.actionPlan)
	for _, step := range r.NextSteps {
		fmt.Fprintf(&b, "- %s\n", step)
	}
	return b.String()
}

// Document is everything a full report page shows.
type Document struct {
	Problem     string
	Locale      catalog.Locale
	CreatedAt   time.Time
	Improving   *catalog.Parameter
	Worsening   *catalog.Parameter
	Explanation string
	Principles  []catalog.Principle
	Report      *ai.Report
}

// NewDocument resolves a saved session's ids against the catalog. Ids the
// catalog does not hold are left out.
func NewDocument(c *catalog.Catalog, s history.Session) Document {
	d := Document{
		Problem:     s.Problem,
		Locale:      s.Locale,
		CreatedAt:   s.CreatedAt,
		Explanation: s.Explanation,
		Report:      s.Draft,
	}
	if s.ImprovingID != nil {
		if p, ok := c.Parameter(*s.ImprovingID); ok {
			d.Improving = &p
		}
	}
	if s.WorseningID != nil {
		if p, ok := c.Parameter(*s.WorseningID); ok {
			d.Worsening = &p
		}
	}
	for _, id := range s.Principles {
		if p, ok := c.Principle(id); ok {
			d.Principles = append(d.Principles, p)
		}
	}
	return d
}
