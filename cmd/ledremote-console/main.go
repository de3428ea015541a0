package main

import (
	"github.com/larsks/ledremote/internal/cli"
	"github.com/larsks/ledremote/internal/console"
	_ "github.com/larsks/ledremote/internal/logsetup"
)

func main() {
	cli.StandardMain(
		func() cli.Configurable { return console.NewConfig() },
		console.NewHandler(),
	)
}
