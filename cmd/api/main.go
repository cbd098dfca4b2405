package main

import "github.com/spec-kit/event-service/cmd/api/cmd"

func main() {
	cmd.Execute()
}
