package main

import "github.com/pfrederiksen/thu-timetable/internal/cli"

func main() {
	cli.Execute()
}
