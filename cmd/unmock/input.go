package main

import (
	"io"
	"os"
)

// readInput reads the file named by args[0], or stdin when args is empty or "-".
func readInput(in io.Reader, args []string) ([]byte, string, error) {
	if len(args) == 0 || args[0] == "-" {
		b, err := io.ReadAll(in)
		return b, "", err
	}
	b, err := os.ReadFile(args[0])
	return b, args[0], err
}
