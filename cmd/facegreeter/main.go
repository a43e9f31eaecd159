package main

import "facegreeter/internal/cli"

func main() {
	cli.Execute()
}
