package main

import (
	"chirp/internal/cmd"
)

func main() {
	cmd.Run()
}
