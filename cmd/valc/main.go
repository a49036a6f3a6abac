package main

import (
	"github.com/funvibe/valang/pkg/cli"
)

func main() {
	cli.Run()
}
