package main

import "github.com/esalab/esa/cmd"

func main() {
	cmd.Execute()
}
