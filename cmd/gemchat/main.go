package main

import "github.com/gemchat/gemchat/cmd/gemchat/commands"

func main() {
	commands.Execute()
}
