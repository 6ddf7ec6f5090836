package main

import "device-core/cmd/device-emulator/cmd"

func main() {
	cmd.Execute()
}
