package main

import (
	"context"
	"io"
	"log"
	"os"

	"github.com/urfave/cli/v3"
)

const (
	configKey  = "config"
	verboseKey = "verbose"
)

func commonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  configKey,
			Usage: "YAML file with demo and benchmark settings",
		},
		&cli.BoolFlag{
			Name:  verboseKey,
			Usage: "Log runtime warnings and recovered failures to stderr",
		},
	}
}

func main() {
	cmd := &cli.Command{
		Name:  "hooks",
		Usage: "Drive components built on the hooks runtime",
		Commands: []*cli.Command{
			counterCommand(),
			usersCommand(),
			benchCommand(),
		},
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func runtimeLogger(cmd *cli.Command) *log.Logger {
	if cmd.Bool(verboseKey) {
		return log.New(os.Stderr, "", log.LstdFlags)
	}
	return log.New(io.Discard, "", 0)
}
