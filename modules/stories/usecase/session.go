package usecase

import (
	"context"

	"github.com/cockroachdb/errors"
)

type WalletStatus struct {
	Connected bool
	Address   string
	Network   string
}

// ConnectWallet requests wallet access through the session and returns the
// connected address.
func (u *Usecase) ConnectWallet(ctx context.Context) (string, error) {
	address, err := u.wallet.Connect(ctx)
	if err != nil {
		return "", errors.WithStack(err)
	}
	return address, nil
}

// DisconnectWallet clears the wallet session. Read-only operations keep
// working.
func (u *Usecase) DisconnectWallet() {
	u.wallet.Disconnect()
}

func (u *Usecase) WalletStatus() WalletStatus {
	address, connected := u.wallet.Address()
	return WalletStatus{
		Connected: connected,
		Address:   address,
		Network:   u.wallet.Network().String(),
	}
}
