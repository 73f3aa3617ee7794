// Command s7cli is a command-line client for the s7 protocol engine:
// one-shot reads/writes, CPU introspection and control, and a long-running
// serve mode exposing the HTTP API and MQTT tag publisher together.
package main

import (
	"github.com/alecthomas/kong"
)

const (
	programName = "s7cli"
	programDesc = "Siemens S7 PLC communication client"
)

func main() {
	ctx := kong.Parse(&cli,
		kong.Name(programName),
		kong.Description(programDesc),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
			Summary: true,
		}))

	err := ctx.Run(&context{})
	ctx.FatalIfErrorf(err)
}
