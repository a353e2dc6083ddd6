package main

import "github.com/KaramelBytes/ingestor/cmd"

func main() {
	cmd.Execute()
}
