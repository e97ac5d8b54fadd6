package certificate

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// LicensePattern matches every license number produced by a LicenseGenerator
var LicensePattern = regexp.MustCompile(`^[A-Z0-9-]+$`)

// DefaultLicensePrefix is used when a LicenseGenerator has no prefix set
const DefaultLicensePrefix = "CERT"

// LicenseGenerator mints license numbers of the form
// <prefix>-T<training>-P<participant>-<base36 unix millis>-<12 random hex>.
// The ids allow a manual correlation back to the enrollment; uniqueness comes
// from the timestamp together with the random suffix.
type LicenseGenerator struct {
	Prefix string
}

// Generate returns a new license number
func (g LicenseGenerator) Generate(trainingID, participantID uint, ts time.Time) string {
	prefix := sanitizeLicensePart(g.Prefix)
	if prefix == "" {
		prefix = DefaultLicensePrefix
	}
	random := strings.ReplaceAll(uuid.NewString(), "-", "")
	return strings.ToUpper(
		fmt.Sprintf(
			"%s-T%d-P%d-%s-%s",
			prefix, trainingID, participantID,
			strconv.FormatInt(ts.UnixMilli(), 36),
			random[len(random)-12:],
		),
	)
}

func sanitizeLicensePart(s string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(s) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
