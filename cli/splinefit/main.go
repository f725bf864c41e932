// Package main is the splinefit command itself.
package main

import (
	"log"
	"os"

	"go.viam.com/splinefit/cli"
)

func main() {
	app := cli.NewApp(os.Stdout, os.Stderr)
	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
