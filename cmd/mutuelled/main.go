package main

import "github.com/mutuelle-network/mutuelle/internal/cli"

func main() {
	cli.Execute()
}
