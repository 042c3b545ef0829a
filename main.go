package main

import "reeledit/cmd"

func main() {
	cmd.Execute()
}
