package main

import "astroaspects/internal/cli"

func main() {
	cli.Execute()
}
