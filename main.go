package main

import "github.com/nextlevelbuilder/topicbot/cmd"

func main() {
	cmd.Execute()
}
