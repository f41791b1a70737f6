package main

import (
	"github.com/knd27/kn-whatsapp-gateway/cmd"
)

func main() {
	cmd.Execute()
}
