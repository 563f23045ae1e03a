package main

import "github.com/deviprasad97/swiftFetch/cmd"

func main() {
	cmd.Execute()
}
