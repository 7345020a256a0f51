// Command ayra serves the Ayra landing site and plays its scripted chats.
package main

import (
	"os"

	"github.com/ayrahq/ayra/internal/cli"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cli.SetVersion(version, commit, date)
	os.Exit(cli.Execute())
}
