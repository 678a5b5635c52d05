package services

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"propertyedge/models"
	"propertyedge/utils"
	"propertyedge/valuation"
)

type InsightService struct {
	logger *utils.Logger
}

func NewInsightService(logger *utils.Logger) *InsightService {
	return &InsightService{logger: logger}
}

// Generate summarises stored analyses. Ties for best score go to the
// earlier entry, which for a newest-first history is the most recent.
func (s *InsightService) Generate(summaries []models.AnalysisSummary) *models.InsightReport {
	report := &models.InsightReport{
		LabelCounts: make(map[string]int),
	}

	if len(summaries) == 0 {
		return report
	}

	report.TotalAnalyses = len(summaries)

	var total int
	var mids []float64
	for i := range summaries {
		a := &summaries[i]
		if a.Label != nil {
			report.LabelCounts[*a.Label]++
		}
		if a.FairValueMid != nil {
			mids = append(mids, float64(*a.FairValueMid))
		}
		if a.Score == nil {
			continue
		}
		report.ScoredAnalyses++
		total += *a.Score
		if report.BestScored == nil || *a.Score > *report.BestScored.Score {
			best := *a
			report.BestScored = &best
		}
	}

	if report.ScoredAnalyses > 0 {
		report.AverageScore = round2(float64(total) / float64(report.ScoredAnalyses))
	}
	if m, ok := valuation.Median(mids); ok {
		report.MedianFairValue = &m
	}

	s.logger.Debug("[insights] %d analyses, %d scored", report.TotalAnalyses, report.ScoredAnalyses)
	return report
}

func (s *InsightService) Print(w io.Writer, r *models.InsightReport) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n", sep)
	fmt.Fprintf(w, "\033[1;35m  📊 PROPERTYEDGE HISTORY INSIGHTS\033[0m\n")
	fmt.Fprintf(w, "\033[1;35m%s\033[0m\n\n", sep)

	// Overview
	fmt.Fprintf(w, "\033[1;33m  Overview\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	fmt.Fprintf(w, "  Analyses stored : \033[1m%d\033[0m\n", r.TotalAnalyses)
	fmt.Fprintf(w, "  With a score    : \033[1m%d\033[0m\n", r.ScoredAnalyses)
	fmt.Fprintln(w)

	// Scores
	fmt.Fprintf(w, "\033[1;33m  Scores\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	if r.ScoredAnalyses > 0 {
		fmt.Fprintf(w, "  Average score     : \033[1;32m%.2f\033[0m / 100\n", r.AverageScore)
	} else {
		fmt.Fprintf(w, "  No scored analyses yet\n")
	}
	if r.MedianFairValue != nil {
		fmt.Fprintf(w, "  Median fair value : \033[1;32m%s\033[0m\n",
			valuation.FormatPounds(int(math.Round(*r.MedianFairValue))))
	}
	fmt.Fprintln(w)

	// Best scored
	if b := r.BestScored; b != nil {
		fmt.Fprintf(w, "\033[1;33m  Best Scored Listing\033[0m\n")
		fmt.Fprintf(w, "  %s\n", thin)
		fmt.Fprintf(w, "  #%d  property %s\n", b.ID, b.PropertyID)
		fmt.Fprintf(w, "  %s\n", truncate(b.URL, 50))
		label := ""
		if b.Label != nil {
			label = " — " + *b.Label
		}
		fmt.Fprintf(w, "  Score : \033[1;32m%d\033[0m%s\n", *b.Score, label)
		fmt.Fprintln(w)
	}

	// Labels
	fmt.Fprintf(w, "\033[1;33m  Analyses by Label\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	if len(r.LabelCounts) == 0 {
		fmt.Fprintf(w, "  No labelled analyses\n")
	} else {
		type labelCount struct {
			label string
			count int
		}
		var labels []labelCount
		for label, cnt := range r.LabelCounts {
			labels = append(labels, labelCount{label, cnt})
		}
		sort.Slice(labels, func(i, j int) bool {
			if labels[i].count != labels[j].count {
				return labels[i].count > labels[j].count
			}
			return labels[i].label < labels[j].label
		})
		for _, lc := range labels {
			bar := strings.Repeat("█", lc.count)
			fmt.Fprintf(w, "  %-40s %s (%d)\n", truncate(lc.label, 38), bar, lc.count)
		}
	}

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n\n", sep)
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
