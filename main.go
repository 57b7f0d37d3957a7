package main

import "github.com/wzreports/zeugnis/cmd"

func main() {
	cmd.Execute()
}
