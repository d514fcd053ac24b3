package main

import "yatube/cmd/cli/command"

func main() {
	command.Execute()
}
