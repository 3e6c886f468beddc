package main

import "github.com/vavi-recipes/vavi/cmd"

func main() {
	cmd.Execute()
}
