package models

import "time"

const (
	CurrencyBTC  = "BTC"
	CurrencyETH  = "ETH"
	CurrencyUSDT = "USDT"
	CurrencyUSD  = "USD"
)

// CryptoCurrencies lists the assets that can be priced and traded.
var CryptoCurrencies = []string{CurrencyBTC, CurrencyETH, CurrencyUSDT}

func IsCryptoCurrency(currency string) bool {
	for _, c := range CryptoCurrencies {
		if c == currency {
			return true
		}
	}
	return false
}

const (
	TxTypeSend    = "send"
	TxTypeReceive = "receive"
	TxTypeTrade   = "trade"

	TxStatusPending   = "pending"
	TxStatusConfirmed = "confirmed"
	TxStatusFailed    = "failed"

	NetworkMainnet = "mainnet"
	NetworkTestnet = "testnet"

	// RequiredTxConfirmations is the depth at which a transaction counts as final.
	RequiredTxConfirmations = 12
)

// BlockchainTransaction is a simulated on-chain transfer or trade.
type BlockchainTransaction struct {
	ID              uint       `gorm:"primarykey" json:"id"`
	UserID          uint       `gorm:"index;not null" json:"userId,omitempty"`
	TransactionHash string     `gorm:"uniqueIndex;not null" json:"transactionHash"`
	BlockNumber     *uint64    `json:"blockNumber,omitempty"`
	FromAddress     string     `gorm:"not null" json:"fromAddress"`
	ToAddress       string     `gorm:"not null" json:"toAddress"`
	Amount          float64    `gorm:"type:numeric(30,10);not null" json:"amount"`
	Currency        string     `gorm:"index;not null" json:"currency"`
	Type            string     `gorm:"index;not null" json:"type"`
	Status          string     `gorm:"index;default:'pending'" json:"status"`
	Confirmations   int        `gorm:"default:0" json:"confirmations"`
	GasUsed         *uint64    `json:"gasUsed,omitempty"`
	GasFee          *float64   `json:"gasFee,omitempty"`
	Network         string     `gorm:"default:'mainnet'" json:"network"`
	Verified        bool       `gorm:"index;default:false" json:"verified"`
	Metadata        JSON       `json:"metadata,omitempty"`
	ConfirmedAt     *time.Time `json:"confirmedAt,omitempty"`
	CreatedAt       time.Time  `gorm:"index" json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// TradePair returns the "FROM/TO" pair recorded on a trade, if any.
func (t *BlockchainTransaction) TradePair() string {
	if t.Metadata == nil {
		return ""
	}
	pair, _ := t.Metadata["tradePair"].(string)
	return pair
}

// TradePrice returns the recorded from/to price ratio, if any.
func (t *BlockchainTransaction) TradePrice() float64 {
	if t.Metadata == nil {
		return 0
	}
	price, _ := t.Metadata["tradePrice"].(float64)
	return price
}
