package version

import (
	_ "embed" // for go:embed
	"strconv"
	"strings"
)

// VERSION holds the server's version
//
//go:embed VERSION
var VERSION string

// Version segments
var (
	MAJOR int
	MINOR int
	FIX   int
	PRE   int
)

func init() {
	VERSION = strings.TrimSpace(VERSION)
	MAJOR, MINOR, FIX, PRE = parse(VERSION)
}

// parse splits a version of the form major.minor.fix[-prN]
func parse(v string) (major, minor, fix, pre int) {
	core, preRelease, _ := strings.Cut(v, "-")
	parts := strings.SplitN(core, ".", 3)
	segments := make([]int, 3)
	for i, p := range parts {
		segments[i], _ = strconv.Atoi(p)
	}
	if preRelease != "" {
		pre, _ = strconv.Atoi(strings.TrimPrefix(preRelease, "pr"))
	}
	return segments[0], segments[1], segments[2], pre
}

// UserAgent returns the product token sent in outgoing requests and
// response headers
func UserAgent() string {
	return "certhouse/" + VERSION
}
