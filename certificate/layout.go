package certificate

import (
	"fmt"
	"strings"
	"time"
)

// Canvas dimensions of a rendered certificate
const (
	Width  = 1200
	Height = 800
)

// Signature box, centered horizontally at signatureY
const (
	signatureY      = 660
	signatureWidth  = 200
	signatureHeight = 80
)

const (
	textMargin  = 60
	minFontSize = 12
)

// DefaultVariant is the template variant that does not print the certifying
// body
const DefaultVariant = ""

// Input is everything needed to render one certificate
type Input struct {
	LicenseNumber string

	FirstName  string
	LastName   string
	Department string
	Company    string

	TrainingID   uint
	TrainingName string
	StartsAt     time.Time
	EndsAt       time.Time
	Location     string

	Variant        string
	CertifyingBody string
	SignatoryName  string
	RoleLabel      string

	// Template and Signature are encoded images; both are optional
	Template  []byte
	Signature []byte
}

// textBlock is one centered line of the layout, y is the baseline offset
// from the top.
type textBlock struct {
	name string
	font Font
	size float64
	y    float64
	text func(Input) string
}

var layout = []textBlock{
	{
		name: "title",
		font: FontBold,
		size: 54,
		y:    120,
		text: func(Input) string { return "CERTIFICATE OF COMPLETION" },
	},
	{
		name: "certifying_body",
		font: FontItalic,
		size: 22,
		y:    160,
		text: func(in Input) string {
			if in.Variant == DefaultVariant {
				return ""
			}
			return strings.TrimSpace(in.CertifyingBody)
		},
	},
	{
		name: "license",
		font: FontRegular,
		size: 18,
		y:    200,
		text: func(in Input) string {
			if in.LicenseNumber == "" {
				return ""
			}
			return "No. " + in.LicenseNumber
		},
	},
	{
		name: "preamble",
		font: FontItalic,
		size: 24,
		y:    260,
		text: func(Input) string { return "This is to certify that" },
	},
	{
		name: "name",
		font: FontBold,
		size: 48,
		y:    330,
		text: func(in Input) string { return FormatName(in.FirstName, in.LastName) },
	},
	{
		name: "department",
		font: FontRegular,
		size: 22,
		y:    370,
		text: func(in Input) string { return joinNonEmpty(", ", in.Department, in.Company) },
	},
	{
		name: "completion",
		font: FontItalic,
		size: 24,
		y:    430,
		text: func(Input) string { return "has successfully completed the training" },
	},
	{
		name: "course",
		font: FontBold,
		size: 36,
		y:    490,
		text: func(in Input) string { return TrainingName(in.TrainingName, in.TrainingID) },
	},
	{
		name: "schedule",
		font: FontRegular,
		size: 20,
		y:    530,
		text: func(in Input) string {
			return joinNonEmpty(", ", formatSchedule(in.StartsAt, in.EndsAt), strings.TrimSpace(in.Location))
		},
	},
	{
		name: "signatory",
		font: FontBold,
		size: 22,
		y:    600,
		text: func(in Input) string { return strings.TrimSpace(in.SignatoryName) },
	},
	{
		name: "role",
		font: FontRegular,
		size: 18,
		y:    730,
		text: func(in Input) string { return strings.TrimSpace(in.RoleLabel) },
	},
}

// Lines returns the non-empty text blocks of the layout by block name
func Lines(in Input) map[string]string {
	lines := make(map[string]string, len(layout))
	for _, b := range layout {
		if t := b.text(in); t != "" {
			lines[b.name] = t
		}
	}
	return lines
}

const dateLayout = "2 January 2006"

func formatSchedule(start, end time.Time) string {
	switch {
	case start.IsZero():
		return ""
	case end.IsZero(), sameDay(start, end):
		return start.Format(dateLayout)
	default:
		return fmt.Sprintf("%s - %s", start.Format(dateLayout), end.Format(dateLayout))
	}
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func joinNonEmpty(sep string, parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, sep)
}
