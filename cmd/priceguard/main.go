package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/priceguard/internal/clock"
	"github.com/smallbiznis/priceguard/internal/config"
	"github.com/smallbiznis/priceguard/internal/migration"
	"github.com/smallbiznis/priceguard/internal/observability"
	"github.com/smallbiznis/priceguard/internal/scheduler"
	"github.com/smallbiznis/priceguard/internal/server"
	"github.com/smallbiznis/priceguard/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,
		server.Module,
		scheduler.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
