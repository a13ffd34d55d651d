package main

import "github.com/jrsteele09/trekker-client/cmd/trekker/cmd"

func main() {
	cmd.Execute()
}
