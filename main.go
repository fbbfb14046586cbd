package main

import (
	"os"

	"bookgenre/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
