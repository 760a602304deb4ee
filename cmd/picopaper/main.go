package main

import (
	"github.com/DevOats/picoPaper/pkg/cli/sh"
	"github.com/DevOats/picoPaper/pkg/env"
)

//go-build: CGO_ENABLED=0

func init() {
	env.SetupFlags()
}

func main() {
	sh.Main()
}
