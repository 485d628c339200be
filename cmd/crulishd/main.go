package main

import (
	"github.com/tankoni/Crulish-sub003/internal/cli"
)

func main() {
	cli.Execute()
}
