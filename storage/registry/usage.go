package registry

// Usage restricts which programs should accept a given backend.
type Usage uint8

const (
	// UsageCLI marks backends available to the revstore CLI.
	UsageCLI Usage = 1 << iota
	// UsageDaemon marks backends available to revstored.
	UsageDaemon
)

func (u Usage) allows(want Usage) bool { return u&want != 0 }
