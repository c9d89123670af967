package domain

import (
	"math"
	"strings"
)

const (
	weightAISeverity = 0.40
	weightSentiment  = 0.20
	weightKeywords   = 0.25
	weightDensity    = 0.15

	densitySaturation = 5.0
	keywordStep       = 0.4

	// scaled scores snap to this many steps per unit before the ceiling
	scoreGrid = 1e12

	// DuplicateRadiusMeters bounds the nearby-duplicate search box.
	DuplicateRadiusMeters = 200.0
	metersPerDegree       = 111000.0
)

var urgencyKeywords = []string{
	"emergency",
	"danger",
	"flooding",
	"broken wire",
	"accident",
	"hospital",
	"blocking road",
}

// ComputeSeverity combines classifier and local signals into a 1..5 severity.
// Rounding is by ceiling so borderline scores go up. The scaled score is
// first snapped to 12 decimal places so summation noise such as
// 0.4+0.2 = 0.6000000000000001 does not bump an exact integer; any real
// excess above an integer of 1e-12 or more still rounds up.
func ComputeSeverity(aiSeverity, sentiment, keywordWeight float64, duplicateDensity int) int {
	aiSeverity = clampFloat(aiSeverity, 0, MaxSeverity)
	sentiment = clampFloat(sentiment, 0, 1)
	keywordWeight = clampFloat(keywordWeight, 0, 1)
	density := math.Min(math.Max(float64(duplicateDensity), 0)/densitySaturation, 1)

	raw := weightAISeverity*(aiSeverity/MaxSeverity) +
		weightSentiment*sentiment +
		weightKeywords*keywordWeight +
		weightDensity*density

	scaled := math.Round(raw*MaxSeverity*scoreGrid) / scoreGrid
	return ClampSeverity(int(math.Ceil(scaled)))
}

// KeywordWeight scores urgency wording. Each distinct keyword present adds
// 0.4, capped at 1.
func KeywordWeight(text string) float64 {
	lower := strings.ToLower(text)
	matches := 0
	for _, kw := range urgencyKeywords {
		if strings.Contains(lower, kw) {
			matches++
		}
	}
	return math.Min(float64(matches)*keywordStep, 1)
}

// SeverityFromLabel maps the classifier's categorical label onto 1..5.
func SeverityFromLabel(label string) int {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "critical":
		return 5
	case "high":
		return 4
	case "medium":
		return 3
	default:
		return 2
	}
}

type BoundingBox struct {
	MinLat float64
	MaxLat float64
	MinLng float64
	MaxLng float64
}

func (b BoundingBox) Contains(lat, lng float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lng >= b.MinLng && lng <= b.MaxLng
}

// NearbyBox approximates a radiusMeters circle around (lat, lng) with a box.
func NearbyBox(lat, lng, radiusMeters float64) BoundingBox {
	latDelta := radiusMeters / metersPerDegree
	cosLat := math.Cos(lat * math.Pi / 180)
	lngDelta := 180.0
	if cosLat > 1e-6 {
		lngDelta = radiusMeters / (metersPerDegree * cosLat)
	}
	return BoundingBox{
		MinLat: lat - latDelta,
		MaxLat: lat + latDelta,
		MinLng: lng - lngDelta,
		MaxLng: lng + lngDelta,
	}
}

func clampFloat(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}
