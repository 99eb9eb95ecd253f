package main

import "github.com/photovault/photovault/cmd"

func main() {
	cmd.Execute()
}
