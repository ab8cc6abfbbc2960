package main

import (
	"os"

	jarcmder "github.com/fretwork/jar/cmd/jar"
)

func main() {
	cmd := jarcmder.NewJarCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
