package main

import "github.com/Bitlatte/postpress/cmd"

func main() {
	cmd.Execute()
}
