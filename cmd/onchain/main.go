package main

import (
	"os"

	"github.com/skillhq/onchain/internal/app"
)

func main() {
	runner := app.NewRunner()
	os.Exit(runner.Run(os.Args[1:]))
}
