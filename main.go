package main

import "github.com/lepinkainen/bookdash/cmd"

var execute = cmd.Execute

func main() {
	execute()
}
