/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/ptyxes/recipebook/cmd"

func main() {
	cmd.Execute()
}
