package config

// DefaultRegions are scanned when no region list is configured
var DefaultRegions = []string{
	"eu-west-1",
	"eu-central-1",
	"us-east-1",
	"us-west-2",
	"us-west-1",
	"ap-southeast-1",
	"ap-southeast-2",
	"ap-northeast-1",
	"sa-east-1",
}

// Config represents the settings of one run
type Config struct {
	// Regions are scanned in order
	Regions []string `mapstructure:"regions" validate:"required,min=1,dive,required"`

	// Profile selects a shared AWS config profile; empty uses the default chain
	Profile string `mapstructure:"profile"`

	// Verbose prints the title of empty reports
	Verbose bool `mapstructure:"verbose"`

	// NoDefault excludes default VPCs from the vpc report
	NoDefault bool `mapstructure:"nodefault"`

	// Output is one of table, json, yaml
	Output string `mapstructure:"output" validate:"oneof=table json yaml"`

	// LogLevel is one of debug, info, warn, error
	LogLevel string `mapstructure:"log-level" validate:"oneof=debug info warn error"`

	// FailFast stops the run at the first failed API call
	FailFast bool `mapstructure:"fail-fast"`

	// File is the config file that was read, empty when none was found
	File string `mapstructure:"-"`
}
