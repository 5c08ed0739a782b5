package main

import "liyu1981.xyz/vessel-resource-service/cmd/simulate/cmd"

func main() {
	cmd.Execute()
}
