package main

import "github.com/pfrederiksen/elex-datasource/internal/cli"

func main() {
	cli.Execute()
}
