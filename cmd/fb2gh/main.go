// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-02-02
// Last Modified: 2026-10-19

// Package main is the entry point for the fb2gh CLI.
package main

import "github.com/similigh/fb2gh/cmd/fb2gh/commands"

func main() {
	commands.Execute()
}
