package queryfarmer

const (
	// Name names the CLI, its config file and the HTTP user agent.
	Name = "queryfarmer"

	Description = "Token-preserving translation service with a bounded TTL cache"

	Version = "0.1.0"
)

// Release builds set these with -ldflags "-X".
var (
	GitCommit = ""
	BuildDate = ""
)

// FullVersion returns Version, suffixed with the short commit when known.
func FullVersion() string {
	commit := GitCommit
	if commit == "" {
		return Version
	}
	if len(commit) > 7 {
		commit = commit[:7]
	}
	return Version + "+" + commit
}

// UserAgent is sent by the REST providers.
func UserAgent() string {
	return Name + "/" + FullVersion()
}
