package main

import (
	"os"

	"github.com/zeus1292/investorlens/cmd/investorlens"
)

func main() {
	if err := investorlens.Execute(); err != nil {
		os.Exit(1)
	}
}
