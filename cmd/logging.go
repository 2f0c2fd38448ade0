package cmd

import (
	"github.com/achilleasa/vmath/log"
	"github.com/urfave/cli"
)

var logger = log.New("vmath")

func setupLogging(ctx *cli.Context) error {
	level := log.Notice
	if ctx.GlobalBool("v") {
		level = log.Verbosity(1)
	}
	if ctx.GlobalBool("vv") {
		level = log.Verbosity(2)
	}
	if name := ctx.GlobalString("log-level"); name != "" {
		var err error
		if level, err = log.ParseLevel(name); err != nil {
			return err
		}
	}

	log.SetLevel(level)
	return nil
}
