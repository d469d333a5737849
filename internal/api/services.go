package api

import (
	"github.com/zhulik/pal"

	"chirp/internal/core"
)

func Provide() pal.ServiceDef {
	return pal.ProvideList(
		pal.Provide[core.AuthAPI](&AuthClient{}),
		pal.Provide[core.SocialAPI](&Client{}),
	)
}
