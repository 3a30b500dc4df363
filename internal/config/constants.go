package config

// Defaults applied when neither environment, file nor flags set a value.
const (
	DefaultIntervalSeconds = 1
	DefaultSensitivity     = 10
	DefaultHashKind        = "phash"
	DefaultLogFile         = "./sepia.log"
)
