package main

import (
	"os"

	"github.com/thenoetrevino/tandem/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
