package main

import (
	"cohera/internal/server"
	"cohera/internal/util"
	"cohera/pkg/logger"
	"cohera/pkg/logger/console"

	_ "github.com/lib/pq"
)

func main() {
	util.LoadEnv()

	logger.Init(console.New(console.Params{
		Debug: util.GetEnvBool("DEBUG", false),
	}))

	server.Init()
}
