package main

import "soclisten/cmd"

func main() {
	cmd.Execute()
}
