package main

import (
	"github.com/UnderAOverE/nsync/pkg/cli"
)

func main() {
	cli.Execute()
}
