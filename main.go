package main

import "github.com/pabean-labs/bc20-explorer/cmd"

func main() {
	cmd.Execute()
}
