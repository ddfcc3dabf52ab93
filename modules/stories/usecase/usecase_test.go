package usecase

import (
	"context"
	"math/big"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/narrativelabs/storyforge/common"
	"github.com/narrativelabs/storyforge/common/errs"
	"github.com/narrativelabs/storyforge/modules/stories/datagateway"
	"github.com/narrativelabs/storyforge/modules/stories/internal/entity"
	"github.com/narrativelabs/storyforge/modules/stories/registry"
	"github.com/stretchr/testify/require"
)

const (
	testOwner  = "0xab8483f64d9c6d1ecf9b849ae677dd3315835cb2"
	otherOwner = "0x5b38da6a701c568545dcfcb03fcb875f56beddc4"
)

type memStoriesDg struct {
	mu               sync.Mutex
	nextId           int64
	stories          map[int64]*entity.Story
	updateTokenIdErr error
}

var _ datagateway.StoriesDataGateway = (*memStoriesDg)(nil)

func newMemStoriesDg() *memStoriesDg {
	return &memStoriesDg{stories: make(map[int64]*entity.Story)}
}

func (dg *memStoriesDg) GetStoryById(_ context.Context, id int64) (*entity.Story, error) {
	dg.mu.Lock()
	defer dg.mu.Unlock()
	story, ok := dg.stories[id]
	if !ok {
		return nil, errors.WithStack(errs.NotFound)
	}
	clone := *story
	return &clone, nil
}

func (dg *memStoriesDg) GetStories(context.Context) ([]*entity.Story, error) {
	dg.mu.Lock()
	defer dg.mu.Unlock()
	stories := make([]*entity.Story, 0, len(dg.stories))
	for _, story := range dg.stories {
		clone := *story
		stories = append(stories, &clone)
	}
	sort.Slice(stories, func(i, j int) bool {
		return stories[i].Id < stories[j].Id
	})
	return stories, nil
}

func (dg *memStoriesDg) CreateStory(_ context.Context, params datagateway.CreateStoryParams) (*entity.Story, error) {
	dg.mu.Lock()
	defer dg.mu.Unlock()
	dg.nextId++
	now := time.Now()
	story := &entity.Story{
		Id:             dg.nextId,
		TokenId:        params.TokenId,
		Title:          params.Title,
		CurrentChapter: params.CurrentChapter,
		Owner:          params.Owner,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	dg.stories[story.Id] = story
	clone := *story
	return &clone, nil
}

func (dg *memStoriesDg) UpdateStoryTokenId(_ context.Context, id int64, tokenId string) (*entity.Story, error) {
	dg.mu.Lock()
	defer dg.mu.Unlock()
	if dg.updateTokenIdErr != nil {
		return nil, dg.updateTokenIdErr
	}
	story, ok := dg.stories[id]
	if !ok {
		return nil, errors.WithStack(errs.NotFound)
	}
	story.TokenId = tokenId
	clone := *story
	return &clone, nil
}

func (dg *memStoriesDg) UpdateStoryChapter(_ context.Context, id int64, chapter string) (*entity.Story, error) {
	dg.mu.Lock()
	defer dg.mu.Unlock()
	story, ok := dg.stories[id]
	if !ok {
		return nil, errors.WithStack(errs.NotFound)
	}
	story.CurrentChapter = chapter
	story.UpdatedAt = time.Now()
	clone := *story
	return &clone, nil
}

type fakeGenerator struct {
	prompts []string
	text    string
	err     error
}

func (g *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.prompts = append(g.prompts, prompt)
	if g.err != nil {
		return "", g.err
	}
	return g.text, nil
}

type fakeRegistry struct {
	mintTitles    []string
	mintChapters  []string
	evolvedTokens []*big.Int
	evolvedTexts  []string
	mintErr       error
	evolveErr     error

	mintedTokenId    *big.Int
	mintedTokenIdErr error

	content string
	owner   ethcommon.Address
	proof   []byte
	valid   bool
}

var _ registry.Contract = (*fakeRegistry)(nil)

func (r *fakeRegistry) Address() ethcommon.Address {
	return ethcommon.HexToAddress("0x9fE46736679d2D9a65F0992F2272dE9f3c7fa6e0")
}

func (r *fakeRegistry) Mint(_ context.Context, title, initialStory string) (*types.Transaction, error) {
	if r.mintErr != nil {
		return nil, r.mintErr
	}
	r.mintTitles = append(r.mintTitles, title)
	r.mintChapters = append(r.mintChapters, initialStory)
	return types.NewTx(&types.LegacyTx{Nonce: uint64(len(r.mintTitles))}), nil
}

func (r *fakeRegistry) EvolveStory(_ context.Context, tokenId *big.Int, newContent string) (*types.Transaction, error) {
	if r.evolveErr != nil {
		return nil, r.evolveErr
	}
	r.evolvedTokens = append(r.evolvedTokens, tokenId)
	r.evolvedTexts = append(r.evolvedTexts, newContent)
	return types.NewTx(&types.LegacyTx{Nonce: uint64(len(r.evolvedTokens))}), nil
}

func (r *fakeRegistry) GetStoryContent(context.Context, *big.Int) (string, error) {
	return r.content, nil
}

func (r *fakeRegistry) OwnerOf(context.Context, *big.Int) (ethcommon.Address, error) {
	return r.owner, nil
}

func (r *fakeRegistry) Verify(context.Context, *big.Int, []byte) (bool, error) {
	return r.valid, nil
}

func (r *fakeRegistry) GetProof(context.Context, *big.Int) ([]byte, error) {
	return r.proof, nil
}

func (r *fakeRegistry) MintedTokenId(*types.Receipt) (*big.Int, error) {
	if r.mintedTokenIdErr != nil {
		return nil, r.mintedTokenIdErr
	}
	return r.mintedTokenId, nil
}

type fakeWallet struct {
	address   string
	connected bool
	registry  *fakeRegistry
	submitErr error
	submitted []string
}

func (w *fakeWallet) Connect(context.Context) (string, error) {
	w.connected = true
	return w.address, nil
}

func (w *fakeWallet) Disconnect() {
	w.connected = false
}

func (w *fakeWallet) Address() (string, bool) {
	if !w.connected {
		return "", false
	}
	return w.address, true
}

func (w *fakeWallet) Registry() (registry.Contract, bool) {
	if !w.connected {
		return nil, false
	}
	return w.registry, true
}

func (w *fakeWallet) Reader() registry.Contract {
	return w.registry
}

func (w *fakeWallet) Network() common.Network {
	return common.NetworkSepolia
}

func (w *fakeWallet) SubmitAndAwait(_ context.Context, tx *types.Transaction, description string) (*types.Receipt, error) {
	w.submitted = append(w.submitted, description)
	if w.submitErr != nil {
		return nil, w.submitErr
	}
	return &types.Receipt{Status: types.ReceiptStatusSuccessful, TxHash: tx.Hash()}, nil
}

func newTestUsecase(connected bool) (*Usecase, *memStoriesDg, *fakeGenerator, *fakeRegistry, *fakeWallet) {
	dg := newMemStoriesDg()
	gen := &fakeGenerator{text: "Once upon a time, the gears began to bloom."}
	reg := &fakeRegistry{
		mintedTokenId: big.NewInt(42),
		owner:         ethcommon.HexToAddress(testOwner),
		proof:         []byte{0x01},
		valid:         true,
	}
	wallet := &fakeWallet{address: testOwner, connected: connected, registry: reg}
	return New(dg, gen, wallet), dg, gen, reg, wallet
}

func seedMintedStory(t *testing.T, dg *memStoriesDg, owner string) *entity.Story {
	t.Helper()
	story, err := dg.CreateStory(context.Background(), datagateway.CreateStoryParams{
		Title:          "The Clockwork Garden",
		CurrentChapter: "The gears began to bloom.",
		TokenId:        "42",
		Owner:          owner,
	})
	require.NoError(t, err)
	return story
}

func TestCreateStory(t *testing.T) {
	u, dg, gen, reg, wallet := newTestUsecase(true)

	story, err := u.CreateStory(context.Background(), "The Clockwork Garden", "A garden of brass flowers")
	require.NoError(t, err)
	require.Equal(t, "42", story.TokenId)
	require.True(t, story.IsMinted())
	require.Equal(t, testOwner, story.Owner)
	require.Equal(t, gen.text, story.CurrentChapter)

	require.Equal(t, []string{"A garden of brass flowers"}, gen.prompts)
	require.Equal(t, []string{"The Clockwork Garden"}, reg.mintTitles)
	require.Equal(t, []string{gen.text}, reg.mintChapters)
	require.Equal(t, []string{"mint story"}, wallet.submitted)

	stored, err := dg.GetStoryById(context.Background(), story.Id)
	require.NoError(t, err)
	require.Equal(t, "42", stored.TokenId)
}

func TestCreateStoryWalletRequired(t *testing.T) {
	u, _, gen, _, _ := newTestUsecase(false)

	_, err := u.CreateStory(context.Background(), "The Clockwork Garden", "A garden of brass flowers")
	require.ErrorIs(t, err, errs.WalletRequired)
	require.Empty(t, gen.prompts)
}

func TestCreateStoryChainRejectedKeepsPlaceholder(t *testing.T) {
	u, dg, _, _, wallet := newTestUsecase(true)
	wallet.submitErr = errors.Wrap(errs.ChainRejected, "transaction reverted")

	story, err := u.CreateStory(context.Background(), "The Clockwork Garden", "A garden of brass flowers")
	require.ErrorIs(t, err, errs.ChainRejected)
	require.NotNil(t, story)
	require.False(t, story.IsMinted())

	stored, err := dg.GetStoryById(context.Background(), story.Id)
	require.NoError(t, err)
	require.False(t, stored.IsMinted())
}

func TestCreateStoryTokenWriteBackFailure(t *testing.T) {
	u, dg, _, _, _ := newTestUsecase(true)
	dg.updateTokenIdErr = errors.New("connection reset by peer")

	_, err := u.CreateStory(context.Background(), "The Clockwork Garden", "A garden of brass flowers")
	require.ErrorIs(t, err, errs.LedgerInconsistency)
	require.Contains(t, err.Error(), "42")
}

func TestEvolveStory(t *testing.T) {
	u, dg, gen, reg, wallet := newTestUsecase(true)
	seeded := seedMintedStory(t, dg, testOwner)
	gen.text = "The brass flowers turned toward the moon."

	story, err := u.EvolveStory(context.Background(), seeded.Id)
	require.NoError(t, err)
	require.Equal(t, gen.text, story.CurrentChapter)

	require.Equal(t, []string{"Continue this story: The gears began to bloom."}, gen.prompts)
	require.Len(t, reg.evolvedTokens, 1)
	require.Equal(t, int64(42), reg.evolvedTokens[0].Int64())
	require.Equal(t, []string{gen.text}, reg.evolvedTexts)
	require.Equal(t, []string{"evolve story"}, wallet.submitted)
}

func TestEvolveStoryNotFound(t *testing.T) {
	u, _, _, _, _ := newTestUsecase(true)

	_, err := u.EvolveStory(context.Background(), 99)
	require.ErrorIs(t, err, errs.NotFound)
}

func TestEvolveStoryNotOwner(t *testing.T) {
	u, dg, gen, _, _ := newTestUsecase(true)
	seeded := seedMintedStory(t, dg, otherOwner)

	_, err := u.EvolveStory(context.Background(), seeded.Id)
	require.ErrorIs(t, err, errs.NotAuthorized)
	require.Empty(t, gen.prompts)
}

func TestEvolveStoryOwnerCaseInsensitive(t *testing.T) {
	u, dg, _, _, _ := newTestUsecase(true)
	seeded := seedMintedStory(t, dg, ethcommon.HexToAddress(testOwner).Hex())

	_, err := u.EvolveStory(context.Background(), seeded.Id)
	require.NoError(t, err)
}

func TestEvolveStoryNotMinted(t *testing.T) {
	u, dg, _, _, _ := newTestUsecase(true)
	story, err := dg.CreateStory(context.Background(), datagateway.CreateStoryParams{
		Title:          "Unminted",
		CurrentChapter: "Draft chapter.",
		TokenId:        entity.NewTokenIdPlaceholder(time.Now()),
		Owner:          testOwner,
	})
	require.NoError(t, err)

	_, err = u.EvolveStory(context.Background(), story.Id)
	require.ErrorIs(t, err, errs.InvalidArgument)
}

func TestEvolveStoryChainRejectedKeepsChapter(t *testing.T) {
	u, dg, gen, _, wallet := newTestUsecase(true)
	seeded := seedMintedStory(t, dg, testOwner)
	gen.text = "A chapter that never lands on chain."
	wallet.submitErr = errors.Wrap(errs.ChainRejected, "transaction reverted")

	_, err := u.EvolveStory(context.Background(), seeded.Id)
	require.ErrorIs(t, err, errs.ChainRejected)

	stored, err := dg.GetStoryById(context.Background(), seeded.Id)
	require.NoError(t, err)
	require.Equal(t, seeded.CurrentChapter, stored.CurrentChapter)
}

func TestCreateStoryGenerationFailureCreatesNoRow(t *testing.T) {
	u, dg, gen, reg, _ := newTestUsecase(true)
	gen.err = errors.Wrap(errs.GenerationError, "provider call failed")

	_, err := u.CreateStory(context.Background(), "The Clockwork Garden", "A garden of brass flowers")
	require.ErrorIs(t, err, errs.GenerationError)

	stories, err := dg.GetStories(context.Background())
	require.NoError(t, err)
	require.Empty(t, stories)
	require.Empty(t, reg.mintTitles)
}

func TestEvolveStoryGenerationFailureKeepsChapter(t *testing.T) {
	u, dg, gen, reg, _ := newTestUsecase(true)
	seeded := seedMintedStory(t, dg, testOwner)
	gen.err = errors.Wrap(errs.GenerationError, "provider call failed")

	_, err := u.EvolveStory(context.Background(), seeded.Id)
	require.ErrorIs(t, err, errs.GenerationError)

	stored, err := dg.GetStoryById(context.Background(), seeded.Id)
	require.NoError(t, err)
	require.Equal(t, seeded.CurrentChapter, stored.CurrentChapter)
	require.Empty(t, reg.evolvedTokens)
}

func TestEvolveStoryRevertOnSubmission(t *testing.T) {
	u, dg, _, reg, wallet := newTestUsecase(true)
	seeded := seedMintedStory(t, dg, testOwner)
	reg.evolveErr = errors.Wrap(errs.ChainRejected, "evolveStory rejected by contract: execution reverted: Not the story owner")

	_, err := u.EvolveStory(context.Background(), seeded.Id)
	require.ErrorIs(t, err, errs.ChainRejected)
	require.Empty(t, wallet.submitted)

	stored, err := dg.GetStoryById(context.Background(), seeded.Id)
	require.NoError(t, err)
	require.Equal(t, seeded.CurrentChapter, stored.CurrentChapter)
}

func TestVerifyStory(t *testing.T) {
	u, dg, _, _, _ := newTestUsecase(false)
	seeded := seedMintedStory(t, dg, testOwner)

	result, err := u.VerifyStory(context.Background(), seeded.Id)
	require.NoError(t, err)
	require.True(t, result.Valid)
	require.Equal(t, testOwner, result.OnChainOwner)
	require.Equal(t, seeded.Id, result.Story.Id)
}

func TestVerifyStoryNotMinted(t *testing.T) {
	u, dg, _, _, _ := newTestUsecase(false)
	story, err := dg.CreateStory(context.Background(), datagateway.CreateStoryParams{
		Title:          "Unminted",
		CurrentChapter: "Draft chapter.",
		TokenId:        entity.NewTokenIdPlaceholder(time.Now()),
		Owner:          testOwner,
	})
	require.NoError(t, err)

	_, err = u.VerifyStory(context.Background(), story.Id)
	require.ErrorIs(t, err, errs.InvalidArgument)
}

func TestUpdateTokenId(t *testing.T) {
	u, dg, _, _, _ := newTestUsecase(true)
	story, err := dg.CreateStory(context.Background(), datagateway.CreateStoryParams{
		Title:          "Recovered",
		CurrentChapter: "A chapter minted but never recorded.",
		TokenId:        entity.NewTokenIdPlaceholder(time.Now()),
		Owner:          testOwner,
	})
	require.NoError(t, err)

	updated, err := u.UpdateTokenId(context.Background(), story.Id, "42")
	require.NoError(t, err)
	require.Equal(t, "42", updated.TokenId)
	require.True(t, updated.IsMinted())
}

func TestUpdateTokenIdOwnerMismatch(t *testing.T) {
	u, dg, _, reg, _ := newTestUsecase(true)
	story := seedMintedStory(t, dg, testOwner)
	reg.owner = ethcommon.HexToAddress(otherOwner)

	_, err := u.UpdateTokenId(context.Background(), story.Id, "42")
	require.ErrorIs(t, err, errs.NotAuthorized)
}

func TestWalletStatus(t *testing.T) {
	u, _, _, _, _ := newTestUsecase(false)

	status := u.WalletStatus()
	require.False(t, status.Connected)
	require.Empty(t, status.Address)
	require.Equal(t, "sepolia", status.Network)

	address, err := u.ConnectWallet(context.Background())
	require.NoError(t, err)
	require.Equal(t, testOwner, address)

	status = u.WalletStatus()
	require.True(t, status.Connected)
	require.Equal(t, testOwner, status.Address)

	u.DisconnectWallet()
	status = u.WalletStatus()
	require.False(t, status.Connected)
}

func TestGetStoriesOrdered(t *testing.T) {
	u, dg, _, _, _ := newTestUsecase(false)
	first := seedMintedStory(t, dg, testOwner)
	second := seedMintedStory(t, dg, otherOwner)

	stories, err := u.GetStories(context.Background())
	require.NoError(t, err)
	require.Len(t, stories, 2)
	require.Equal(t, first.Id, stories[0].Id)
	require.Equal(t, second.Id, stories[1].Id)
}
