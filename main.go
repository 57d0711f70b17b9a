package main

import "github.com/nekruzvatanshoev/jeepsales/pkg/cmd"

func main() {
	cmd.Execute()
}
