// Package main is the entry point for the unmock command line tool.
package main

func main() {
	Execute()
}
