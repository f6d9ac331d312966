package main

import (
	"github.com/LeeLiangmin/compile-rust-tool/cmd"
)

func main() {
	cmd.Execute()
}
