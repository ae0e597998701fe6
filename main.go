package main

import "github.com/RamXX/rollup/cmd"

func main() {
	cmd.Execute()
}
