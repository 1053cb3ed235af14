package main

import "safescan/cmd/safescan/cmd"

func main() {
	cmd.Execute()
}
