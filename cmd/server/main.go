package main

import "anoa.com/campushub/cmd/server/cmd"

func main() {
	cmd.Execute()
}
