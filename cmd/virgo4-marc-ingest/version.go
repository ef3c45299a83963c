package main

// set at build time with -ldflags "-X main.buildVersion=..."
var buildVersion = "unknown"

// Version returns the service build version
func Version() string {
	return buildVersion
}

//
// end of file
//
