package main

import "github.com/clinic-records/apiserver/cmd"

func main() {
	cmd.Execute()
}
