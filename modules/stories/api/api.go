package api

import (
	"github.com/narrativelabs/storyforge/common"
	"github.com/narrativelabs/storyforge/modules/stories/api/httphandler"
	"github.com/narrativelabs/storyforge/modules/stories/usecase"
)

func NewHTTPHandler(network common.Network, usecase *usecase.Usecase) *httphandler.HttpHandler {
	return httphandler.New(network, usecase)
}
