// Package constants contains application-wide constants to avoid magic numbers and strings.
package constants

import "time"

// Application defaults
const (
	DefaultPort        = "8080"
	DefaultDataDir     = "./data"
	DefaultDBFile      = "arkive.db"
	DefaultArchiveDir  = "archive"
	DefaultConcurrency = 2
	DefaultHTTPTimeout = 30 * time.Second
)

// Capture deadlines. A subprocess still running past its deadline is killed
// and the job fails.
const (
	MonolithTimeLimit = 5 * time.Minute
	YtdlpTimeLimit    = 10 * time.Minute
)

// YtdlpMaxFilesize caps a single video download.
const YtdlpMaxFilesize = "5.0G"

// DefaultMaxResolution is the yt-dlp format height cap when the user does not
// pick one.
const DefaultMaxResolution = "1080"

// Session handling
const (
	SessionCookieName = "ARKIVE_SESSION_COOKIE"
	SessionMaxAge     = 7 * 24 * time.Hour
)

// JobGracePeriod is how long a terminal job stays in the registry so that
// polling clients observe the final status at least once.
const JobGracePeriod = 3 * time.Second

// CaptureOption maps a form field name to the CLI flag it stands for. Flags
// reach the subprocess argv only through this table.
type CaptureOption struct {
	Flag  string
	Label string
}

// MonolithOptions is the allow-list of webpage capture options.
var MonolithOptions = map[string]CaptureOption{
	"no-audio":        {Flag: "-a", Label: "No Audio"},
	"no-css":          {Flag: "-c", Label: "No CSS"},
	"no-frames":       {Flag: "-f", Label: "No Frames/iframes"},
	"no-custom-fonts": {Flag: "-F", Label: "No Custom Fonts"},
	"no-images":       {Flag: "-i", Label: "No Images"},
	"isolate":         {Flag: "-I", Label: "Isolate Page"},
	"no-javascript":   {Flag: "-j", Label: "No JavaScript"},
	"no-metadata":     {Flag: "-M", Label: "No Metadata"},
	"unwrap-noscript": {Flag: "-n", Label: "Unwrap noscript tags"},
	"no-video":        {Flag: "-v", Label: "No Video"},
}

// YtdlpOptions is the allow-list of video capture options. Empty for now; the
// fixed argv in the capture package covers the baseline flags.
var YtdlpOptions = map[string]CaptureOption{}

// MediaExtensions are the audio/video extensions recognized by the archive
// walk and the is_media flag.
var MediaExtensions = map[string]bool{
	".mp4":  true,
	".webm": true,
	".mkv":  true,
	".mp3":  true,
	".m4a":  true,
	".flac": true,
	".ogg":  true,
	".opus": true,
	".wav":  true,
}

// FilterOptions returns the CLI flags for the checked form fields, keeping
// only keys the table knows about. Unknown keys are silently dropped.
func FilterOptions(checked []string, table map[string]CaptureOption) []string {
	var flags []string
	for _, key := range checked {
		if opt, ok := table[key]; ok {
			flags = append(flags, opt.Flag)
		}
	}
	return flags
}
