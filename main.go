package main

import "github.com/gaurav-prasanna/letterpipe/cmd"

func main() {
	cmd.Execute()
}
