package usecase

import (
	"github.com/narrativelabs/storyforge/modules/stories/datagateway"
	"github.com/narrativelabs/storyforge/modules/stories/generator"
	"github.com/narrativelabs/storyforge/modules/stories/session"
)

type Usecase struct {
	storiesDg datagateway.StoriesDataGateway
	generator generator.Contract
	wallet    session.Contract
}

func New(storiesDg datagateway.StoriesDataGateway, generator generator.Contract, wallet session.Contract) *Usecase {
	return &Usecase{
		storiesDg: storiesDg,
		generator: generator,
		wallet:    wallet,
	}
}

// ConnectedWallet returns the lower-case address of the active wallet
// session, or false when no wallet is connected.
func (u *Usecase) ConnectedWallet() (string, bool) {
	return u.wallet.Address()
}
