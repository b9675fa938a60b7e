package main

import "github.com/Conceptual-Machines/metrome-api/internal/cli"

func main() {
	cli.Execute()
}
