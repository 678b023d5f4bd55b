package main

import "github.com/garnizeh/eduverify/internal/cli"

func main() {
	cli.Execute()
}
