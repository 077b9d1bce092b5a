package main

import "library-web/cmd"

func main() {
	cmd.Execute()
}
