package common

import "math/big"

type Network string

const (
	NetworkMainnet Network = "mainnet"
	NetworkSepolia Network = "sepolia"
)

var supportedNetworks = map[Network]struct{}{
	NetworkMainnet: {},
	NetworkSepolia: {},
}

var chainIds = map[Network]uint64{
	NetworkMainnet: 1,
	NetworkSepolia: 11155111,
}

var explorerURLs = map[Network]string{
	NetworkMainnet: "https://etherscan.io",
	NetworkSepolia: "https://sepolia.etherscan.io",
}

// ChainParams describes a chain to a wallet provider that does not know it
// yet, mirroring the wallet_addEthereumChain parameter set.
type ChainParams struct {
	ChainId         *big.Int
	ChainName       string
	CurrencyName    string
	CurrencySymbol  string
	CurrencyDecimal uint8
	RpcURL          string
	ExplorerURL     string
}

var chainParams = map[Network]ChainParams{
	NetworkMainnet: {
		ChainId:         new(big.Int).SetUint64(chainIds[NetworkMainnet]),
		ChainName:       "Ethereum Mainnet",
		CurrencyName:    "Ether",
		CurrencySymbol:  "ETH",
		CurrencyDecimal: 18,
		RpcURL:          "https://eth-mainnet.g.alchemy.com/v2/",
		ExplorerURL:     explorerURLs[NetworkMainnet],
	},
	NetworkSepolia: {
		ChainId:         new(big.Int).SetUint64(chainIds[NetworkSepolia]),
		ChainName:       "Sepolia",
		CurrencyName:    "SepoliaETH",
		CurrencySymbol:  "ETH",
		CurrencyDecimal: 18,
		RpcURL:          "https://eth-sepolia.g.alchemy.com/v2/",
		ExplorerURL:     explorerURLs[NetworkSepolia],
	},
}

func (n Network) IsSupported() bool {
	_, ok := supportedNetworks[n]
	return ok
}

func (n Network) ChainId() *big.Int {
	return new(big.Int).SetUint64(chainIds[n])
}

func (n Network) ChainParams() ChainParams {
	return chainParams[n]
}

func (n Network) ExplorerURL() string {
	return explorerURLs[n]
}

// ExplorerTxURL returns a human-readable explorer link for the given
// transaction hash.
func (n Network) ExplorerTxURL(txHash string) string {
	return explorerURLs[n] + "/tx/" + txHash
}

func (n Network) String() string {
	return string(n)
}
