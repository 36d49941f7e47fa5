package main

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	app := cli.NewApp()

	app.Name = "shoutoutd"
	app.Usage = "lightning-powered public shoutout wall"
	app.Version = fmt.Sprintf("%s (%s)", version, commit)
	app.Commands = []*cli.Command{
		serveCommand,
		createAppCommand,
	}
	app.DefaultCommand = "serve"

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
