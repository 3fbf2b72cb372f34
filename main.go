package main

import "github.com/ValentinKolb/oneshot/cmd"

func main() {
	cmd.Execute()
}
