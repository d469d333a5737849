package persistence

import (
	"github.com/zhulik/pal"

	"chirp/internal/core"
)

func Provide() pal.ServiceDef {
	return pal.Provide[core.SessionStore](&Store{})
}
