package main

import (
	// Embedded zone database so the default Asia/Kolkata zone resolves on
	// hosts without tzdata.
	_ "time/tzdata"

	"github.com/teemow/calbot/cmd"
)

// version will be set by goreleaser during build
var version = "dev"

func main() {
	// Set the version from build-time variable
	cmd.SetVersion(version)

	// Execute the root command
	cmd.Execute()
}
