package main

import "care-tasks.com/care-tasks/cmd"

func main() {
	cmd.Execute()
}
