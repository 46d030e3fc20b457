package main

import "beatmap-manager/cmd"

func main() {
	cmd.Execute()
}
