package main

import "agrocommunity_backend/internal/app"

func main() {
	app.Run()
}
