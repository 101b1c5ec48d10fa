package main

import (
	"github.com/9mada4/VoiceChatBot/cmd"
)

func main() {
	cmd.Execute()
}
