// Command tarschat is a terminal client for the EvolveNXT AI chat assistant.
package main

import "github.com/evolvenxt/tarschat/internal/commands"

func main() {
	commands.Execute()
}
