/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/tristendillon/forge/cmd"

func main() {
	cmd.Execute()
}
