package main

import "github.com/mpolasek/faceshot/cmd"

func main() {
	cmd.Execute()
}
