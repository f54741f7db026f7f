package main

import (
	"os"

	"github.com/mna/mainer"

	"vxc/internal/clicmd"
)

var (
	// placeholder values, replaced on build
	version   = "{v}" // must be N.N[.N]
	buildDate = "{d}" // must be YYYY-mm-DD
)

func main() {
	c := clicmd.Cmd{BuildVersion: version, BuildDate: buildDate}
	os.Exit(int(c.Main(os.Args, mainer.CurrentStdio())))
}
