package services

import (
	"bytes"
	"strconv"
	"testing"

	"propertyedge/models"
)

func summary(id int64, score *int, label string, mid *int) models.AnalysisSummary {
	s := models.AnalysisSummary{
		ID:           id,
		URL:          "https://www.rightmove.co.uk/properties/" + strconv.FormatInt(id, 10),
		PropertyID:   "p" + strconv.FormatInt(id, 10),
		Score:        score,
		FairValueMid: mid,
	}
	if label != "" {
		s.Label = &label
	}
	return s
}

func sampleSummaries() []models.AnalysisSummary {
	return []models.AnalysisSummary{
		summary(5, intPtr(57), models.LabelOverpriced, intPtr(325000)),
		summary(4, intPtr(81), models.LabelReasonable, intPtr(300000)),
		summary(3, nil, "", nil),
		summary(2, intPtr(81), models.LabelReasonable, intPtr(410000)),
		summary(1, intPtr(44), models.LabelOverpriced, intPtr(250000)),
	}
}

func TestInsightCounts(t *testing.T) {
	svc := NewInsightService(newTestLogger())
	r := svc.Generate(sampleSummaries())
	if r.TotalAnalyses != 5 {
		t.Errorf("TotalAnalyses: got %d, want 5", r.TotalAnalyses)
	}
	if r.ScoredAnalyses != 4 {
		t.Errorf("ScoredAnalyses: got %d, want 4", r.ScoredAnalyses)
	}
}

func TestInsightAverageScore(t *testing.T) {
	svc := NewInsightService(newTestLogger())
	r := svc.Generate(sampleSummaries())
	wantAvg := 65.75
	if r.AverageScore != wantAvg {
		t.Errorf("AverageScore: got %.2f, want %.2f", r.AverageScore, wantAvg)
	}
}

func TestInsightBestScored(t *testing.T) {
	svc := NewInsightService(newTestLogger())
	r := svc.Generate(sampleSummaries())
	if r.BestScored == nil {
		t.Fatal("BestScored should not be nil")
	}
	if r.BestScored.ID != 4 {
		t.Errorf("BestScored: got #%d, want #4 (the more recent of the tied 81s)", r.BestScored.ID)
	}
}

func TestInsightMedianFairValue(t *testing.T) {
	svc := NewInsightService(newTestLogger())
	r := svc.Generate(sampleSummaries())
	if r.MedianFairValue == nil {
		t.Fatal("MedianFairValue should not be nil")
	}
	if *r.MedianFairValue != 312500 {
		t.Errorf("MedianFairValue: got %.1f, want 312500", *r.MedianFairValue)
	}
}

func TestInsightLabelGrouping(t *testing.T) {
	svc := NewInsightService(newTestLogger())
	r := svc.Generate(sampleSummaries())
	if r.LabelCounts[models.LabelOverpriced] != 2 {
		t.Errorf("overpriced count: got %d, want 2", r.LabelCounts[models.LabelOverpriced])
	}
	if r.LabelCounts[models.LabelReasonable] != 2 {
		t.Errorf("reasonable count: got %d, want 2", r.LabelCounts[models.LabelReasonable])
	}
}

func TestInsightEmptyInput(t *testing.T) {
	svc := NewInsightService(newTestLogger())
	r := svc.Generate(nil)
	if r.TotalAnalyses != 0 || r.BestScored != nil || r.MedianFairValue != nil {
		t.Errorf("expected an empty report for empty input, got %+v", r)
	}
}

func TestInsightPrint(t *testing.T) {
	svc := NewInsightService(newTestLogger())
	var buf bytes.Buffer
	svc.Print(&buf, svc.Generate(sampleSummaries()))
	out := buf.String()

	for _, want := range []string{"Analyses stored : \033[1m5", "65.75", "£312,500", "#4  property p4", models.LabelReasonable} {
		if !bytes.Contains(buf.Bytes(), []byte(want)) {
			t.Errorf("Print output missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	svc.Print(&buf, svc.Generate(nil))
	if !bytes.Contains(buf.Bytes(), []byte("No scored analyses yet")) {
		t.Errorf("empty Print output missing placeholder:\n%s", buf.String())
	}
}
