package main

import (
	"os"

	"github.com/taskops/jira-overdue-mover/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
