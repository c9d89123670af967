package application

import (
	"context"
	"strings"

	"github.com/abx15/JanSankalp-AI-sub002/internal/domain"
)

// FindNearbyDuplicates returns open complaints of the same category inside
// the duplicate radius around (lat, lng).
func (s *Service) FindNearbyDuplicates(ctx context.Context, lat, lng float64, category string) ([]domain.Complaint, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		return nil, domain.ErrInvalidInput
	}
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return nil, domain.ErrInvalidInput
	}
	box := domain.NearbyBox(lat, lng, s.cfg.DuplicateRadiusMeters)
	rows, err := s.complaints.FindOpenInBox(ctx, category, box)
	if err != nil {
		return nil, err
	}
	out := rows[:0]
	for _, c := range rows {
		if c.Status == domain.StatusResolved || c.Category != category || !box.Contains(c.Latitude, c.Longitude) {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

// duplicateDensity counts nearby open complaints other than self.
func (s *Service) duplicateDensity(ctx context.Context, self domain.Complaint, category string) (int, error) {
	nearby, err := s.FindNearbyDuplicates(ctx, self.Latitude, self.Longitude, category)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, c := range nearby {
		if c.ID != self.ID {
			n++
		}
	}
	return n, nil
}

// verdictSeverity combines the classifier label with local signals. The
// result never drops below the label's own mapping.
func verdictSeverity(c domain.Complaint, analysis domain.ComplaintAnalysis, density int) int {
	labelSeverity := domain.SeverityFromLabel(analysis.Severity)
	sentiment := 0.0
	if analysis.Sentiment != nil {
		sentiment = *analysis.Sentiment
	}
	keywords := domain.KeywordWeight(c.Title + " " + c.Description + " " + analysis.Reasoning)
	scored := domain.ComputeSeverity(float64(labelSeverity), sentiment, keywords, density)
	return domain.ClampSeverity(max(labelSeverity, scored))
}
