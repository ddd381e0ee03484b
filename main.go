package main

import "github.com/KaramelBytes/bigtable-cli/cmd"

func main() {
	cmd.Execute()
}
