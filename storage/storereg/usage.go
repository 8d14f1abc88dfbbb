package storereg

// Usage restricts which programs should accept a given backend. Backends
// are linked at build time; Usage lets one registry serve both the CLI and
// the daemon without exposing daemon-only backends to the CLI.
type Usage uint8

const (
	// UsageCLI marks backends for short-lived CLI programs (raforge).
	UsageCLI Usage = 1 << iota
	// UsageDaemon marks backends for long-running daemons (raforged).
	UsageDaemon
)

func (u Usage) allows(want Usage) bool { return u&want != 0 }
