package main

import "example.com/riserite/internal/cli"

func main() {
	cli.Execute()
}
