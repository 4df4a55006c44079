/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>

*/
package main

import "github.com/thiagoraheem/Gestao-de-Compras-sub006/cmd"

func main() {
	cmd.Execute()
}
