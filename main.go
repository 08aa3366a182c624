package main

import "strumboli/cmd"

func main() {
	cmd.Execute()
}
