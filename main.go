package main

import "proxydash/cmd"

func main() {
	cmd.Execute()
}
