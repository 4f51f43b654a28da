// Package chain generates and validates wallet addresses and simulates
// the on-chain primitives the blockchain service relies on.
package chain

import (
	"errors"
	"regexp"

	"tcw1/internal/models"
	"tcw1/internal/utils"
	"tcw1/internal/validation"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

var ErrUnsupportedWalletType = errors.New("unsupported wallet type")

var btcAddressRegex = regexp.MustCompile(`^[13][a-km-zA-HJ-NP-Z1-9]{25,34}$`)

const (
	btcAddressBodyLength = 33
	ethDerivationPath    = "m/44'/60'/0'/0/0"
)

// Address is a generated receiving address. Private keys are never retained.
type Address struct {
	Address        string
	PublicKey      string
	DerivationPath string
}

// GenerateAddress creates a new address for BTC, ETH or USDT (ERC-20).
func GenerateAddress(walletType string) (*Address, error) {
	switch walletType {
	case models.WalletTypeBTC:
		body, err := utils.RandomBase58(btcAddressBodyLength)
		if err != nil {
			return nil, err
		}
		return &Address{Address: "1" + body}, nil
	case models.WalletTypeETH, models.WalletTypeUSDT:
		key, err := crypto.GenerateKey()
		if err != nil {
			return nil, err
		}
		return &Address{
			Address:        crypto.PubkeyToAddress(key.PublicKey).Hex(),
			PublicKey:      hexutil.Encode(crypto.FromECDSAPub(&key.PublicKey)),
			DerivationPath: ethDerivationPath,
		}, nil
	default:
		return nil, ErrUnsupportedWalletType
	}
}

// ValidateAddress checks an address against the format of its wallet type.
// PAYPAL wallets are identified by the account email.
func ValidateAddress(walletType, address string) bool {
	switch walletType {
	case models.WalletTypeBTC:
		return len(address) >= 26 && len(address) <= 35 && btcAddressRegex.MatchString(address)
	case models.WalletTypeETH, models.WalletTypeUSDT:
		return common.IsHexAddress(address)
	case models.WalletTypePayPal:
		return validation.IsEmail(address)
	default:
		return false
	}
}

// SimulateTransactionHash returns a random 32 byte hash in 0x-prefixed hex.
func SimulateTransactionHash() (string, error) {
	h, err := utils.RandomHex(32)
	if err != nil {
		return "", err
	}
	return "0x" + h, nil
}

const (
	minSimulatedBlock = 15_000_000
	maxSimulatedBlock = 16_000_000
)

// SimulateBlockNumber picks a block height in [15000000, 16000000).
func SimulateBlockNumber() (uint64, error) {
	n, err := utils.RandomInt(minSimulatedBlock, maxSimulatedBlock)
	if err != nil {
		return 0, err
	}
	return uint64(n), nil
}
