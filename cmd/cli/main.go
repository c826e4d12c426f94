package main

import (
	"context"
	"log"
	"os"

	"github.com/fine2025/petdiary/internal/app"
	"github.com/fine2025/petdiary/internal/buildinfo"
	"github.com/fine2025/petdiary/internal/config"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()
	a, err := app.NewApp(ctx, cfg)

	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	a.Run(ctx)

}
