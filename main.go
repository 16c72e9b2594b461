package main

import "github.com/enesfarukkeskin/Yapay-Zeka-Destekli-Report-Agent/cmd"

func main() {
	cmd.Execute()
}
