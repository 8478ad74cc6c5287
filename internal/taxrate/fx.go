package taxrate

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/taxrate/internal/taxrate/service"
	"go.uber.org/fx"
)

var Module = fx.Module("taxrate.service",
	fx.Provide(NewSnowflake),
	fx.Provide(service.NewService),
)

func NewSnowflake() (*snowflake.Node, error) {
	return snowflake.NewNode(1)
}
