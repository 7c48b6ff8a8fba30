package main

import "github.com/mcoot/rajamantri/internal/cli"

func main() {
	cli.Execute()
}
