package version

// Version is the release of statemap. Overridden at build time with
// -ldflags "-X statemap/internal/version.Version=...".
var Version = "1.0.0-dev"

// Changes lists the user-visible changes of this release.
var Changes = []string{
	"States mode keeps its colours between runs in a JSON palette cache.",
	"Owners without a political colour are painted as water.",
	"Numeric modes write a legend next to the map.",
	"Added the dockyards mode and strategic region support (--regions).",
}
