package config

// Set from the root command's persistent flags.
var (
	Dev     bool
	LogPath string
)
