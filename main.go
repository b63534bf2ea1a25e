package main

import "github.com/mvngu/signalstock/cmd"

func main() {
	cmd.Execute()
}
