package main

import "github.com/tshields86/git-sense/cmd"

func main() {
	cmd.Execute()
}
