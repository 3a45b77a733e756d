package main

import "github.com/JacobDiB/NutriLink/cmd/nutrilink"

func main() {
	nutrilink.Execute()
}
