package main

import "github.com/tcsenpai/TG-Manager/cmd"

func main() {
	cmd.Execute()
}
