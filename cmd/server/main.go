package main

import "policygen/internal/app/server"

func main() {
	server.Run()
}
