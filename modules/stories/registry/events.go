package registry

import (
	"math/big"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/core/types"
)

// StoryMinted is emitted by the registry when a new story token is assigned.
type StoryMinted struct {
	TokenId      *big.Int
	Title        string
	InitialStory string
	Raw          types.Log
}

// StoryEvolved is emitted when an owner appends a new chapter on chain.
type StoryEvolved struct {
	TokenId    *big.Int
	NewContent string
	Proof      []byte
	Raw        types.Log
}

func (r *Registry) ParseStoryMinted(log types.Log) (*StoryMinted, error) {
	event := new(StoryMinted)
	if err := r.contract.UnpackLog(event, "StoryMinted", log); err != nil {
		return nil, errors.Wrap(err, "failed to unpack StoryMinted log")
	}
	event.Raw = log
	return event, nil
}

func (r *Registry) ParseStoryEvolved(log types.Log) (*StoryEvolved, error) {
	event := new(StoryEvolved)
	if err := r.contract.UnpackLog(event, "StoryEvolved", log); err != nil {
		return nil, errors.Wrap(err, "failed to unpack StoryEvolved log")
	}
	event.Raw = log
	return event, nil
}
