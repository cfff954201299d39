package main

import "github.com/oshokin/door-guard/cmd/door-guard/cmd"

func main() {
	cmd.Execute()
}
