package main

import "kscore-go/internal/cli"

func main() {
	cli.Execute()
}
