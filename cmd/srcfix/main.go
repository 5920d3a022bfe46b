package main

import "srcfix/cmd/srcfix/cmd"

func main() {
	cmd.Execute()
}
