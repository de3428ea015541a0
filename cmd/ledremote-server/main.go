package main

import (
	"github.com/larsks/ledremote/internal/cli"
	_ "github.com/larsks/ledremote/internal/logsetup"
	"github.com/larsks/ledremote/internal/server"
)

func main() {
	cli.StandardMain(
		func() cli.Configurable { return server.NewConfig() },
		server.NewHandler(),
	)
}
