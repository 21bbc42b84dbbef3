package main

import (
	"github.com/wavely/account-service/config"
	"github.com/wavely/account-service/internal/api"
)

func main() {
	cfg := config.LoadConfig()
	api.StartServer(cfg)
}
