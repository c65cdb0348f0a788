/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/tristendillon/checklist/cmd"

func main() {
	cmd.Execute()
}
