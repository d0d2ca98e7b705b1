package version

var (
	version   string
	commit    string
	buildTime string
)

// Version returns the client version, set at build time.
func Version() string {
	if version == "" {
		version = "dev"
	}

	return version
}

// Commit returns the git commit the binary was built from.
func Commit() string {
	return commit
}

// BuildTime returns the time the binary was built.
func BuildTime() string {
	return buildTime
}
